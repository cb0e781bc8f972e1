package sfrest

import (
	"context"
	"encoding/json"
)

// SalesforceClient defines the interface for Salesforce API operations
type SalesforceClient interface {
	// Login authenticates with the username-password flow
	Login(ctx context.Context, username, password string) (*AccessToken, error)

	// LoginURL builds the authorize URL of the authorization-code flow
	LoginURL(redirectURL, state string, reauthorize bool) string

	// AuthorizeConfirm exchanges an authorization code for an access token
	AuthorizeConfirm(ctx context.Context, code, redirectURL string) (*AccessToken, error)

	// RefreshToken renews the current access token
	RefreshToken(ctx context.Context) (*AccessToken, error)

	GetRecord(ctx context.Context, objectType, id string, fields ...string) (Record, error)
	Search(ctx context.Context, soql string) ([]Record, error)
	CreateRecord(ctx context.Context, objectType string, data interface{}) (string, error)
	UpdateRecord(ctx context.Context, objectType, id string, data interface{}) error
	DeleteRecord(ctx context.Context, objectType, id string) error

	// Request performs an authenticated call relative to /services/data/{version}
	Request(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error)
}

var _ SalesforceClient = (*Salesforce)(nil)

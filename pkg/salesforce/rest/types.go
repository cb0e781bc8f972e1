package sfrest

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TokenResponse is the body returned by /services/oauth2/token.
//
// Every key is optional. Absent string keys decode to "", which is what the
// token generator stores; there is no error path for a missing key.
type TokenResponse struct {
	// ID is the identity URL of the user, default "".
	ID string `json:"id"`
	// IssuedAt is either a JSON integer (epoch seconds) or a string of epoch
	// milliseconds, depending on the grant. See IssuedAt.
	IssuedAt IssuedAt `json:"issued_at"`
	// InstanceURL is the org's API base URL, default "".
	InstanceURL string `json:"instance_url"`
	// Signature is the HMAC of id and issued_at, default "".
	Signature string `json:"signature"`
	// AccessToken is the bearer credential, default "".
	AccessToken string `json:"access_token"`
	// RefreshToken is only issued for grants that allow refreshing, default "".
	RefreshToken string `json:"refresh_token"`
	// Scope is a space-delimited list, default "".
	Scope     string `json:"scope"`
	TokenType string `json:"token_type"`
}

// IssuedAt keeps the raw issued_at value so that the caller decides how to
// interpret it.
type IssuedAt struct {
	raw json.RawMessage
}

// IssuedAtSeconds builds an integer issued_at value.
func IssuedAtSeconds(sec int64) IssuedAt {
	return IssuedAt{raw: json.RawMessage(strconv.FormatInt(sec, 10))}
}

// IssuedAtMillis builds a string issued_at value, the form Salesforce sends.
func IssuedAtMillis(ms int64) IssuedAt {
	return IssuedAt{raw: json.RawMessage(strconv.Quote(strconv.FormatInt(ms, 10)))}
}

func (i *IssuedAt) UnmarshalJSON(data []byte) error {
	i.raw = append(i.raw[:0], data...)
	return nil
}

func (i IssuedAt) MarshalJSON() ([]byte, error) {
	if len(i.raw) == 0 {
		return []byte("null"), nil
	}
	return i.raw, nil
}

// Seconds returns the value when it is a bare JSON integer.
func (i IssuedAt) Seconds() (int64, bool) {
	v, err := strconv.ParseInt(string(bytes.TrimSpace(i.raw)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Millis returns the value when it is an integer or a string holding one.
func (i IssuedAt) Millis() (int64, bool) {
	raw := bytes.TrimSpace(i.raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		raw = []byte(s)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Record is a single sobject as returned by the data API.
type Record map[string]interface{}

// queryResponse is one page of a SOQL query result
type queryResponse struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	NextRecordsURL string   `json:"nextRecordsUrl"`
	Records        []Record `json:"records"`
}

// createResponse is returned by POST sobjects/{type}
type createResponse struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []interface{} `json:"errors"`
}

package sfrest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

func sobjectPath(objectType string, id ...string) string {
	parts := []string{"sobjects", url.PathEscape(objectType)}
	for _, p := range id {
		parts = append(parts, url.PathEscape(p))
	}
	return strings.Join(parts, "/")
}

// GetRecord fetches a single record. When fields are given only those are
// returned.
func (s *Salesforce) GetRecord(ctx context.Context, objectType, id string, fields ...string) (Record, error) {
	path := sobjectPath(objectType, id)
	if len(fields) > 0 {
		path += "?fields=" + strings.Join(fields, ",")
	}

	s.logger.Debug("Getting record",
		zap.String("object_type", objectType),
		zap.String("id", id),
		zap.Strings("fields", fields))

	var record Record
	if err := s.authorizedRequest(ctx, http.MethodGet, s.dataURL(path), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// CreateRecord creates a record and returns the id Salesforce assigned to it.
// data is encoded as JSON.
func (s *Salesforce) CreateRecord(ctx context.Context, objectType string, data interface{}) (string, error) {
	var resp createResponse
	if err := s.authorizedRequest(ctx, http.MethodPost, s.dataURL(sobjectPath(objectType)), data, &resp); err != nil {
		return "", err
	}

	s.logger.Info("Created record",
		zap.String("object_type", objectType),
		zap.String("id", resp.ID))

	return resp.ID, nil
}

// UpdateRecord patches the given fields of a record. A nil error means
// Salesforce accepted the update.
func (s *Salesforce) UpdateRecord(ctx context.Context, objectType, id string, data interface{}) error {
	if err := s.authorizedRequest(ctx, http.MethodPatch, s.dataURL(sobjectPath(objectType, id)), data, nil); err != nil {
		return err
	}

	s.logger.Info("Updated record",
		zap.String("object_type", objectType),
		zap.String("id", id))

	return nil
}

// DeleteRecord deletes a record. A nil error means the record is gone.
func (s *Salesforce) DeleteRecord(ctx context.Context, objectType, id string) error {
	if err := s.authorizedRequest(ctx, http.MethodDelete, s.dataURL(sobjectPath(objectType, id)), nil, nil); err != nil {
		return err
	}

	s.logger.Info("Deleted record",
		zap.String("object_type", objectType),
		zap.String("id", id))

	return nil
}

// Request performs an authenticated call against any data API resource.
// path is relative to /services/data/{version}. The raw response body is
// returned; it is nil for 204 responses.
func (s *Salesforce) Request(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.authorizedRequest(ctx, method, s.dataURL(path), body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

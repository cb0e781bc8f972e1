// Package tokenstore persists serialized Salesforce access tokens so that a
// session survives process restarts. Every store satisfies sfrest.TokenStore.
package tokenstore

import "errors"

// ErrNotFound is returned by Fetch when no token has been saved yet.
var ErrNotFound = errors.New("access token not found")

// DefaultName is the key tokens are saved under when none is configured.
const DefaultName = "default"

// schemaSQL creates the table shared by the SQLite and Postgres stores.
const schemaSQL = `CREATE TABLE IF NOT EXISTS access_tokens (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

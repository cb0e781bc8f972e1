package sfrest

import (
	"encoding/json"
	"time"
)

// tokenLifetime is one hour minus a five minute safety margin.
const tokenLifetime = time.Hour - 5*time.Minute

// TimestampLayout is the layout of dateIssued and dateExpires in the
// persisted form. Timestamps are written in UTC.
const TimestampLayout = "2006-01-02 15:04:05"

var timeNow = time.Now

// AccessToken is the bearer credential of an authenticated session together
// with the metadata needed to refresh and address it.
type AccessToken struct {
	ID           string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	Scopes       []string
	RefreshToken string
	Signature    string
	AccessToken  string
	APIBaseURL   string
}

// Refresh applies a refresh_token grant response. issued_at is read as epoch
// milliseconds and falls back to the current time when absent. Only IssuedAt,
// ExpiresAt, Signature and AccessToken change.
func (t *AccessToken) Refresh(resp TokenResponse) *AccessToken {
	if ms, ok := resp.IssuedAt.Millis(); ok {
		t.IssuedAt = time.UnixMilli(ms).UTC()
	} else {
		t.IssuedAt = timeNow().UTC()
	}
	t.ExpiresAt = t.IssuedAt.Add(tokenLifetime)
	t.Signature = resp.Signature
	t.AccessToken = resp.AccessToken
	return t
}

// NeedsRefresh reports whether the token has expired.
func (t *AccessToken) NeedsRefresh() bool {
	return t.NeedsRefreshAt(timeNow())
}

// NeedsRefreshAt reports whether now is after the expiry time.
func (t *AccessToken) NeedsRefreshAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *AccessToken) String() string {
	b, err := json.Marshal(t)
	if err != nil {
		return ""
	}
	return string(b)
}

// persistedToken is the stored shape of an AccessToken. Any key may be
// missing: strings default to "", scope to [] and timestamps to the zero
// time.
type persistedToken struct {
	ID           string   `json:"id"`
	DateIssued   string   `json:"dateIssued"`
	DateExpires  string   `json:"dateExpires"`
	Scope        []string `json:"scope"`
	RefreshToken string   `json:"refreshToken"`
	Signature    string   `json:"signature"`
	AccessToken  string   `json:"accessToken"`
	APIURL       string   `json:"apiUrl"`
}

func (t AccessToken) MarshalJSON() ([]byte, error) {
	scope := t.Scopes
	if scope == nil {
		scope = []string{}
	}
	return json.Marshal(persistedToken{
		ID:           t.ID,
		DateIssued:   formatTimestamp(t.IssuedAt),
		DateExpires:  formatTimestamp(t.ExpiresAt),
		Scope:        scope,
		RefreshToken: t.RefreshToken,
		Signature:    t.Signature,
		AccessToken:  t.AccessToken,
		APIURL:       t.APIBaseURL,
	})
}

// UnmarshalJSON restores a token from its persisted form. The stored expiry is
// taken as-is and never recomputed from the issue time.
func (t *AccessToken) UnmarshalJSON(data []byte) error {
	var p persistedToken
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Scope == nil {
		p.Scope = []string{}
	}
	*t = AccessToken{
		ID:           p.ID,
		IssuedAt:     parseTimestamp(p.DateIssued),
		ExpiresAt:    parseTimestamp(p.DateExpires),
		Scopes:       p.Scope,
		RefreshToken: p.RefreshToken,
		Signature:    p.Signature,
		AccessToken:  p.AccessToken,
		APIBaseURL:   p.APIURL,
	}
	return nil
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return ts
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T, loginURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SF_LOGIN_URL", loginURL)
	t.Setenv("SF_CLIENT_ID", "client_id")
	t.Setenv("SF_CLIENT_SECRET", "client_secret")
	t.Setenv("SF_API_VERSION", "v37.0")
	t.Setenv("SF_TOKEN_STORE", "file")
	t.Setenv("SF_TOKEN_PATH", dir)
	t.Setenv("SF_LOG_LEVEL", "silent")
	t.Setenv("SF_USERNAME", "")
	t.Setenv("SF_PASSWORD", "")
	return dir
}

// resetFlags restores every flag of cmd and its children to its default,
// since the command tree is shared between tests.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAuthorizeURL(t *testing.T) {
	setTestEnv(t, "https://login.example.com")

	out, err := execute(t, "authorize-url", "--redirect-uri", "https://app.example.com/cb", "--state", "xyz")
	require.NoError(t, err)
	assert.Equal(t,
		"https://login.example.com/services/oauth2/authorize?client_id=client_id&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb&response_type=code&grant_type=authorization_code&state=xyz\n",
		out)
}

func TestQueryWithoutSession(t *testing.T) {
	setTestEnv(t, "https://login.example.com")

	_, err := execute(t, "query", "SELECT Id FROM Lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sfrest login")
}

func TestLoginThenQuery(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/oauth2/token":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "me@example.com", r.PostForm.Get("username"))
			fmt.Fprintf(w, `{
				"id": "https://login.example.com/id/00D/005",
				"issued_at": %d,
				"instance_url": %q,
				"signature": "sig",
				"access_token": "token-abc",
				"refresh_token": "refresh-abc",
				"scope": "api refresh_token"
			}`, time.Now().Unix(), srv.URL)
		case "/services/data/v37.0/query/":
			assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
			assert.Equal(t, "SELECT Id FROM Lead", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"totalSize":1,"done":true,"records":[{"Id":"00Q1"}]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := setTestEnv(t, srv.URL)

	out, err := execute(t, "login", "--username", "me@example.com", "--password", "secret")
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, srv.URL, summary["api_base_url"])
	assert.Equal(t, true, summary["can_refresh"])
	assert.NotContains(t, out, "token-abc")

	saved, err := os.ReadFile(filepath.Join(dir, "sf-key"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"accessToken":"token-abc"`)

	out, err = execute(t, "query", "SELECT Id FROM Lead")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Id":"00Q1"}]`, out)
}

func TestLoginRequiresCredentials(t *testing.T) {
	setTestEnv(t, "https://login.example.com")

	_, err := execute(t, "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username and password are required")
}

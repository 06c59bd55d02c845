package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfuaa/internal/config"
	"cfuaa/internal/uaa"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	loadedConfig = nil
	configPath, logLevel, logFormat, outputFormat = "cfuaa.yaml", "", "", "table"
	t.Cleanup(func() { loadedConfig = nil })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfuaa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFakeCF(t *testing.T) *httptest.Server {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "client-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/Users/", func(w http.ResponseWriter, r *http.Request) {
		res := uaa.SearchResults[uaa.UserID]{}
		if r.URL.Query().Get("filter") == `userName eq "alice"` {
			res.TotalResults = 1
			res.Resources = []uaa.UserID{{ID: "u-1"}}
		}
		writeJSON(w, res)
	})
	orgs := uaa.Resources[uaa.Organization]{
		TotalResults: 2, TotalPages: 1,
		Resources: []uaa.Resource[uaa.Organization]{
			{Entity: uaa.Organization{Name: "org1", Status: "active"}},
			{Entity: uaa.Organization{Name: "org2", Status: "active"}},
		},
	}
	mux.HandleFunc("/api/v2/users/u-1/organizations", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, orgs) })
	mux.HandleFunc("/api/v2/organizations", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, orgs) })

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func validConfig(t *testing.T, cf *httptest.Server) string {
	t.Helper()
	return writeConfig(t, `
uaa:
  clientId: cfuaa
  clientSecret: secret
  uaaServerEndpoint: `+cf.URL+`
  loginServerEndpoint: `+cf.URL+`/login
  apiServerEndpoint: `+cf.URL+`/api
server:
  publicUrl: https://host.example.com/
`)
}

func TestLookupCommand(t *testing.T) {
	cf := newFakeCF(t)
	path := validConfig(t, cf)

	out, err := runCLI(t, "lookup", "alice", "--config", path, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Name        string   `json:"name"`
		Authorities []string `json:"authorities"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, []string{"authenticated", "org1", "org2"}, got.Authorities)
}

func TestLookupCommand_NotFound(t *testing.T) {
	cf := newFakeCF(t)
	path := validConfig(t, cf)

	_, err := runCLI(t, "lookup", "mallory", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCodeNotFound, getExitCode(err))
}

func TestOrgsCommand(t *testing.T) {
	cf := newFakeCF(t)
	path := validConfig(t, cf)

	out, err := runCLI(t, "orgs", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "org1")
	assert.Contains(t, out, "org2")
}

func TestOrgsCommand_ProviderDown(t *testing.T) {
	cf := newFakeCF(t)
	path := validConfig(t, cf)
	cf.Close()

	_, err := runCLI(t, "orgs", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthService, getExitCode(err))
}

func TestLogoutURLCommand(t *testing.T) {
	cf := newFakeCF(t)
	path := validConfig(t, cf)

	out, err := runCLI(t, "logout-url", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, cf.URL+"/login/logout.do?redirect="+url.QueryEscape("https://host.example.com/")+"\n", out)
}

func TestCheckConfigCommand(t *testing.T) {
	cf := newFakeCF(t)

	out, err := runCLI(t, "check-config", "--config", validConfig(t, cf))
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	bad := writeConfig(t, "uaa:\n  uaaServerEndpoint: uaa.example.com\n")
	t.Setenv(config.EnvClientID, "")
	t.Setenv(config.EnvClientSecret, "")
	out, err = runCLI(t, "check-config", "--config", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfig, getExitCode(err))
	assert.Contains(t, out, "uaa.uaaServerEndpoint")
	assert.Contains(t, out, "uaa.clientSecret")
}

func TestMalformedConfigIsConfigError(t *testing.T) {
	_, err := runCLI(t, "check-config", "--config", writeConfig(t, "uaa: [not, a, mapping"))
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfig, getExitCode(err))
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, err := runCLI(t, "check-config", "--log-level", "chatty")
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfig, getExitCode(err))
}

package uaa

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_NonOKStatusIsAuthServiceError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"forbidden", http.StatusForbidden},
		{"unauthorized", http.StatusUnauthorized},
		{"created is not ok", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider(t)
			// A JSON body that would decode fine must still be ignored.
			fp.raw("/userinfo", tt.status, `{"user_id":"leaked"}`)

			var out UserProfile
			err := NewClient().GetJSON(context.Background(), fp.URL+"/userinfo", bearer("tok"), nil, &out)

			require.Error(t, err)
			var ae *AuthServiceError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.status, ae.StatusCode)
			assert.Equal(t, "userinfo", ae.Op)
			assert.True(t, errors.Is(err, ErrAuthService))
			assert.Empty(t, out.UserID, "body must not be parsed on error status")
		})
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	fp := newFakeProvider(t)
	fp.raw("/userinfo", http.StatusOK, `{not json`)

	var out UserProfile
	err := NewClient().GetJSON(context.Background(), fp.URL+"/userinfo", nil, nil, &out)

	var ae *AuthServiceError
	require.True(t, errors.As(err, &ae))
	assert.Zero(t, ae.StatusCode)
	assert.Error(t, ae.Err)
}

func TestClient_TransportError(t *testing.T) {
	fp := newFakeProvider(t)
	endpoint := fp.URL + "/userinfo"
	fp.Close()

	err := NewClient().GetJSON(context.Background(), endpoint, nil, nil, &UserProfile{})

	assert.True(t, IsAuthServiceError(err))
	assert.Zero(t, StatusCode(err))
}

func TestClient_Timeout(t *testing.T) {
	fp := newFakeProvider(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	fp.handle("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	start := time.Now()
	err := NewClient(WithTimeout(50*time.Millisecond)).GetJSON(context.Background(), fp.URL+"/userinfo", nil, nil, &UserProfile{})

	assert.True(t, IsAuthServiceError(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_PostFormHeaders(t *testing.T) {
	fp := newFakeProvider(t)
	fp.json("/oauth/token", http.StatusOK, map[string]any{"access_token": "x"})

	creds := testCredentials()
	var out tokenResponse
	err := NewClient().PostForm(context.Background(), fp.URL+"/oauth/token", &creds,
		url.Values{"grant_type": {"client_credentials"}}, &out)
	require.NoError(t, err)

	req := fp.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, []string{"client_credentials"}, req.Form["grant_type"])

	r := &http.Request{Header: req.Header}
	user, pass, ok := r.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "cfuaa-client", user)
	assert.Equal(t, "cfuaa-secret", pass)
}

func TestClient_GetJSONHeadersAndQuery(t *testing.T) {
	fp := newFakeProvider(t)
	fp.json("/v2/organizations", http.StatusOK, Resources[Organization]{})

	err := NewClient().GetJSON(context.Background(), fp.URL+"/v2/organizations?order-direction=asc",
		bearer("user-token"), url.Values{"q": {"name:org1"}}, &Resources[Organization]{})
	require.NoError(t, err)

	req := fp.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "Bearer user-token", req.Header.Get("Authorization"))
	assert.Equal(t, []string{"asc"}, req.Query["order-direction"])
	assert.Equal(t, []string{"name:org1"}, req.Query["q"])
}

func TestClient_NoCredentialsNoAuthorization(t *testing.T) {
	fp := newFakeProvider(t)
	fp.json("/userinfo", http.StatusOK, UserProfile{})

	require.NoError(t, NewClient().GetJSON(context.Background(), fp.URL+"/userinfo", nil, nil, &UserProfile{}))
	assert.Empty(t, fp.last().Header.Get("Authorization"))
}

func TestOperationFor(t *testing.T) {
	tests := map[string]string{
		"https://uaa.example.com/oauth/token":                   "token",
		"https://login.example.com/oauth/token":                 "token",
		"https://uaa.example.com/userinfo":                      "userinfo",
		"https://uaa.example.com/Users/":                        "users",
		"https://api.example.com/v2/organizations":              "organizations",
		"https://api.example.com/v2/users/abc-123/organizations": "user_organizations",
		"https://api.example.com/v2/info":                       "other",
	}
	for endpoint, want := range tests {
		assert.Equal(t, want, operationFor(endpoint), endpoint)
	}
}

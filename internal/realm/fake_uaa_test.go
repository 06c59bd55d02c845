package realm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"cfuaa/internal/config"
	"cfuaa/internal/uaa"
)

// fakeCF serves the UAA, login server and cloud controller endpoints the
// realm uses, all from one httptest server.
type fakeCF struct {
	*httptest.Server

	mu          sync.Mutex
	tokenForms  []url.Values
	profile     uaa.UserProfile
	userOrgs    map[string]uaa.Resources[uaa.Organization]
	ownOrgs     uaa.Resources[uaa.Organization]
	users       map[string]string
	tokenStatus int
}

func newFakeCF(t *testing.T) *fakeCF {
	t.Helper()
	f := &fakeCF{
		profile: uaa.UserProfile{
			UserID:     "u-alice",
			UserName:   "alice",
			Email:      "alice@example.com",
			GivenName:  "Alice",
			FamilyName: "Liddell",
		},
		userOrgs:    make(map[string]uaa.Resources[uaa.Organization]),
		users:       map[string]string{"alice": "u-alice"},
		tokenStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", f.token)
	mux.HandleFunc("/login/oauth/token", f.token)
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, f.profile)
	})
	mux.HandleFunc("/Users/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var res uaa.SearchResults[uaa.UserID]
		for name, id := range f.users {
			if r.URL.Query().Get("filter") == `userName eq "`+name+`"` {
				res.Resources = append(res.Resources, uaa.UserID{ID: id})
			}
		}
		res.TotalResults = len(res.Resources)
		writeJSON(w, res)
	})
	mux.HandleFunc("/api/v2/organizations", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, f.ownOrgs)
	})
	mux.HandleFunc("/api/v2/users/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for id, orgs := range f.userOrgs {
			if r.URL.Path == "/api/v2/users/"+id+"/organizations" {
				writeJSON(w, orgs)
				return
			}
		}
		http.NotFound(w, r)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCF) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenForms = append(f.tokenForms, r.PostForm)
	if f.tokenStatus != http.StatusOK {
		w.WriteHeader(f.tokenStatus)
		return
	}
	writeJSON(w, map[string]any{
		"access_token": "token-for-" + r.PostForm.Get("grant_type"),
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func (f *fakeCF) lastTokenForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokenForms) == 0 {
		return nil
	}
	return f.tokenForms[len(f.tokenForms)-1]
}

func (f *fakeCF) setUserOrgs(userID string, orgs ...uaa.Resource[uaa.Organization]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userOrgs[userID] = uaa.Resources[uaa.Organization]{
		TotalResults: len(orgs),
		TotalPages:   1,
		Resources:    orgs,
	}
}

func (f *fakeCF) uaaConfig() config.UAAConfig {
	return config.UAAConfig{
		ClientID:            "cfuaa",
		ClientSecret:        "secret",
		UAAServerEndpoint:   f.URL,
		LoginServerEndpoint: f.URL + "/login",
		APIServerEndpoint:   f.URL + "/api",
	}
}

func activeOrg(name string) uaa.Resource[uaa.Organization] {
	return uaa.Resource[uaa.Organization]{Entity: uaa.Organization{Name: name, Status: uaa.OrganizationActive}}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package uaa

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recordedRequest is what the fake provider saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Form   map[string][]string
	Header http.Header
}

// fakeProvider is an httptest server that plays UAA, the login server and
// the cloud controller at once.
type fakeProvider struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{routes: make(map[string]http.HandlerFunc)}
	fp.Server = httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(fp.Close)
	return fp
}

func (fp *fakeProvider) handle(path string, h http.HandlerFunc) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.routes[path] = h
}

func (fp *fakeProvider) json(path string, status int, body any) {
	fp.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

func (fp *fakeProvider) raw(path string, status int, body string) {
	fp.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (fp *fakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	fp.mu.Lock()
	fp.requests = append(fp.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Form:   r.PostForm,
		Header: r.Header.Clone(),
	})
	h, ok := fp.routes[r.URL.Path]
	fp.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (fp *fakeProvider) last() recordedRequest {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if len(fp.requests) == 0 {
		return recordedRequest{}
	}
	return fp.requests[len(fp.requests)-1]
}

func (fp *fakeProvider) count() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.requests)
}

func (fp *fakeProvider) endpoints() Endpoints {
	return Endpoints{UAA: fp.URL, Login: fp.URL + "/login", API: fp.URL + "/api"}
}

func testCredentials() ClientCredentials {
	return ClientCredentials{ClientID: "cfuaa-client", ClientSecret: NewSecret("cfuaa-secret")}
}

func bearer(value string) *AccessToken {
	return &AccessToken{Kind: UserToken, Value: NewSecret(value), TokenType: "bearer"}
}

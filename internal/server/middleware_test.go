package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiter(t *testing.T) {
	l := newIPLimiter(0.001, 2, nil)
	defer l.Stop()

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"), "buckets are per IP")
}

func TestIPLimiter_Sweep(t *testing.T) {
	l := newIPLimiter(1, 1, nil)
	defer l.Stop()

	l.allow("a")
	l.sweep(time.Now().Add(10 * time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.buckets)
}

func TestIPLimiter_RotatedForwardedForIsStillLimited(t *testing.T) {
	tests := []struct {
		name    string
		trusted []netip.Prefix
	}{
		{"no trusted proxies", nil},
		{"peer not a trusted proxy", []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newIPLimiter(0.001, 1, tc.trusted)
			defer l.Stop()
			h := l.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			limited := 0
			for i := 0; i < 50; i++ {
				req := httptest.NewRequest(http.MethodGet, "/securityRealm/finishLogin", nil)
				req.RemoteAddr = "198.51.100.7:4000"
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, req)
				if rr.Code == http.StatusTooManyRequests {
					limited++
				}
			}
			assert.Equal(t, 49, limited)
		})
	}
}

func TestIPLimiter_TrustedProxyForwardsClients(t *testing.T) {
	l := newIPLimiter(0.001, 1, []netip.Prefix{netip.MustParsePrefix("10.0.0.1/32")})
	defer l.Stop()
	h := l.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/securityRealm/finishLogin", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"), "distinct clients behind the proxy get their own bucket")
}

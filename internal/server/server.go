package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"cfuaa/internal/config"
	"cfuaa/internal/metrics"
	"cfuaa/internal/oauth"
	"cfuaa/internal/principal"
	"cfuaa/internal/realm"
	"cfuaa/internal/session"
	"cfuaa/internal/uaa"
	"cfuaa/pkg/logging"
)

const (
	// SessionCookieName holds the browser's session id.
	SessionCookieName = "cfuaa_session"

	// loginTTL bounds how long a browser may take at the login server.
	loginTTL = 10 * time.Minute

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server hosts the realm's login endpoints.
type Server struct {
	cfg      config.ServerConfig
	realm    *realm.Realm
	profiles *MemoryProfiles

	logins     *session.Store[*oauth.Session[*realm.Login]]
	principals *session.Store[*principal.Principal]
	limiter    *ipLimiter
	registry   *prometheus.Registry

	handler http.Handler
}

// Option configures a Server.
type Option func(*options)

type options struct {
	httpClient *http.Client
	registry   *prometheus.Registry
}

// WithHTTPClient sets the client used to reach UAA and the cloud controller.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithRegistry exposes reg on /metrics instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// New builds the realm from cfg and wires the routes. Configuration
// problems are returned as a *config.ConfigurationErrorCollection.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = metrics.NewRegistry()
	}

	ttl := cfg.Server.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	trusted, err := parseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg.Server,
		profiles:   NewMemoryProfiles(),
		logins:     session.New[*oauth.Session[*realm.Login]]("login", loginTTL),
		principals: session.New[*principal.Principal]("principal", ttl),
		registry:   o.registry,
	}

	r, err := realm.New(cfg.UAA, cfg.Server.PublicURL, s.logins,
		realm.WithProfileStore(s.profiles),
		realm.WithHTTPClient(o.httpClient),
	)
	if err != nil {
		s.stopStores()
		return nil, err
	}
	s.realm = r

	if rl := cfg.Server.CallbackRateLimit; rl.PerSecond > 0 && rl.Burst > 0 {
		s.limiter = newIPLimiter(rl.PerSecond, rl.Burst, trusted)
	}

	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Realm returns the realm the server authenticates with.
func (s *Server) Realm() *realm.Realm {
	return s.realm
}

// Profiles returns the profile store updated on every login.
func (s *Server) Profiles() *MemoryProfiles {
	return s.profiles
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(instrument)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler(s.registry)).Methods(http.MethodGet)

	sr := router.PathPrefix("/securityRealm").Subrouter()
	sr.HandleFunc("/commenceLogin", s.handleCommenceLogin).Methods(http.MethodGet, http.MethodPost)

	finish := http.Handler(http.HandlerFunc(s.handleFinishLogin))
	if s.limiter != nil {
		finish = s.limiter.middleware(finish)
	}
	sr.Handle("/finishLogin", finish).Methods(http.MethodGet)

	router.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/whoami", s.handleWhoAmI).Methods(http.MethodGet)

	return securityHeaders(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.stopStores()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	logging.Info("Server", "Listening on %s, public URL %s", ln.Addr(), s.realm.PublicURL())
	notifySystemd(daemon.SdNotifyReady)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down")
	notifySystemd(daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) stopStores() {
	s.logins.Stop()
	s.principals.Stop()
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "systemd notification %q failed: %v", state, err)
		return
	}
	if sent {
		logging.Debug("Server", "Notified systemd: %s", state)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommenceLogin(w http.ResponseWriter, r *http.Request) {
	id := s.ensureSession(w, r)

	authorizeURL, err := s.realm.CommenceLogin(id, r.FormValue("from"), r.Referer())
	if err != nil {
		logging.Error("Server", err, "Could not start login")
		http.Error(w, "could not start login", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

func (s *Server) handleFinishLogin(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	login, err := s.realm.FinishLogin(r.Context(), id, oauth.CallbackFromQuery(r.URL.Query()))
	if err != nil {
		var verr *oauth.ValidationError
		switch {
		case errors.As(err, &verr):
			http.Error(w, verr.Error(), verr.Status)
		case uaa.IsAuthServiceError(err):
			http.Error(w, "login server unavailable", http.StatusBadGateway)
		default:
			http.Error(w, "login could not be completed", http.StatusInternalServerError)
		}
		return
	}

	// A fresh id after login keeps a pre-login id from being reused.
	s.principals.Delete(id)
	newID := s.newSession(w)
	s.principals.Put(newID, login.Principal)
	http.Redirect(w, r, login.RedirectTo, http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := sessionID(r); id != "" {
		s.principals.Delete(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.realm.LogoutURL(), http.StatusFound)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principals.Get(sessionID(r))
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id := sessionID(r); id != "" {
		return id
	}
	return s.newSession(w)
}

func (s *Server) newSession(w http.ResponseWriter) string {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) secureCookies() bool {
	return strings.HasPrefix(s.cfg.PublicURL, "https://")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

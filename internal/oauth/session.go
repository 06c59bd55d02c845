package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"cfuaa/pkg/logging"
	pkgstrings "cfuaa/pkg/strings"
)

// nonceBytes is the amount of randomness in the state parameter.
const nonceBytes = 16

// DefaultScopes are requested when Config.Scopes is empty.
var DefaultScopes = []string{"openid", "oauth.approvals", "scim.me", "cloud_controller.read"}

// Config describes the authorization request.
type Config struct {
	LoginServerURL string
	RedirectURL    string
	ClientID       string
	Scopes         []string
}

func (c Config) validate() error {
	var missing []string
	if c.LoginServerURL == "" {
		missing = append(missing, "login server URL")
	}
	if c.RedirectURL == "" {
		missing = append(missing, "redirect URL")
	}
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("oauth session config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Phase is where a Session is in the flow.
type Phase int

const (
	Created Phase = iota
	AwaitingCallback
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "created"
	case AwaitingCallback:
		return "awaiting_callback"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the data a Session carries between commence and finish.
type State struct {
	Nonce          string
	LoginServerURL string
	RedirectURL    string
	ClientID       string
	Scopes         []string
	CreatedAt      time.Time
}

// Completion turns an authorization code into the session result. state
// carries the redirect URL that must be repeated in the code exchange.
type Completion[T any] func(ctx context.Context, code string, state State) (T, error)

// Session is one authorization attempt. It is single-use.
type Session[T any] struct {
	mu       sync.Mutex
	state    State
	phase    Phase
	complete Completion[T]
}

// NewSession creates a session with a fresh nonce.
func NewSession[T any](cfg Config, complete Completion[T]) (*Session[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if complete == nil {
		return nil, errors.New("oauth session: completion is required")
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("generating state nonce: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Session[T]{
		state: State{
			Nonce:          nonce,
			LoginServerURL: cfg.LoginServerURL,
			RedirectURL:    cfg.RedirectURL,
			ClientID:       cfg.ClientID,
			Scopes:         append([]string(nil), scopes...),
			CreatedAt:      time.Now(),
		},
		phase:    Created,
		complete: complete,
	}, nil
}

// State returns a copy of the session state.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Scopes = append([]string(nil), s.state.Scopes...)
	return st
}

// Phase returns the current phase.
func (s *Session[T]) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// AuthorizeURL is the login server URL the browser is sent to.
func (s *Session[T]) AuthorizeURL() string {
	cfg := oauth2.Config{
		ClientID: s.state.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL: strings.TrimSuffix(s.state.LoginServerURL, "/") + "/oauth/authorize",
		},
		RedirectURL: s.state.RedirectURL,
		Scopes:      s.state.Scopes,
	}
	return cfg.AuthCodeURL(s.state.Nonce)
}

// Store holds sessions keyed by the caller's session id.
// Take must remove the session it returns.
type Store[T any] interface {
	Put(sessionID string, s *Session[T])
	Take(sessionID string) (*Session[T], bool)
}

// Commence parks s under sessionID and returns the authorization URL.
// A session that was already commenced cannot be commenced again.
func Commence[T any](store Store[T], sessionID string, s *Session[T]) (string, error) {
	if sessionID == "" {
		return "", errors.New("oauth: empty session id")
	}

	s.mu.Lock()
	if s.phase != Created {
		phase := s.phase
		s.mu.Unlock()
		return "", fmt.Errorf("oauth: session already %s", phase)
	}
	s.phase = AwaitingCallback
	s.mu.Unlock()

	store.Put(sessionID, s)
	logging.Debug("OAuth", "Commenced login for session %s", logging.TruncateSessionID(sessionID))
	return s.AuthorizeURL(), nil
}

// Callback holds the query parameters of the redirect back from the login
// server.
type Callback struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// CallbackFromQuery reads a Callback from the redirect's query string.
func CallbackFromQuery(q url.Values) Callback {
	return Callback{
		State:            q.Get("state"),
		Code:             q.Get("code"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// Finish removes the session for sessionID from store, validates cb against
// it and runs the completion. Rejected callbacks return a *ValidationError;
// completion failures are returned unchanged.
func Finish[T any](ctx context.Context, store Store[T], sessionID string, cb Callback) (T, error) {
	var zero T

	s, ok := store.Take(sessionID)
	if !ok || s == nil {
		logging.Warn("OAuth", "Callback for session %s without a login in progress", logging.TruncateSessionID(sessionID))
		return zero, newValidationError(ReasonNoSession)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != AwaitingCallback {
		logging.Warn("OAuth", "Callback for session %s in phase %s, not awaiting a callback", logging.TruncateSessionID(sessionID), s.phase)
		return zero, newValidationError(ReasonNoSession)
	}

	if subtle.ConstantTimeCompare([]byte(cb.State), []byte(s.state.Nonce)) != 1 {
		s.phase = Failed
		logging.Warn("OAuth", "State mismatch for session %s", logging.TruncateSessionID(sessionID))
		return zero, newValidationError(ReasonInvalidState)
	}

	if cb.Error != "" {
		s.phase = Failed
		verr := newValidationError(ReasonProviderError)
		verr.ProviderError = pkgstrings.SingleLine(cb.Error, pkgstrings.DefaultParamMaxLen)
		verr.Description = pkgstrings.SingleLine(cb.ErrorDescription, pkgstrings.DefaultParamMaxLen)
		logging.Warn("OAuth", "Login server returned error %q for session %s", verr.ProviderError, logging.TruncateSessionID(sessionID))
		return zero, verr
	}

	if cb.Code == "" {
		s.phase = Failed
		logging.Warn("OAuth", "Callback for session %s carried no authorization code", logging.TruncateSessionID(sessionID))
		return zero, newValidationError(ReasonMissingCode)
	}

	result, err := s.complete(ctx, cb.Code, s.state)
	if err != nil {
		s.phase = Failed
		return zero, err
	}
	s.phase = Completed
	return result, nil
}

func generateNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

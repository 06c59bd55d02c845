package realm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cfuaa/internal/config"
	"cfuaa/internal/metrics"
	"cfuaa/internal/oauth"
	"cfuaa/internal/principal"
	"cfuaa/internal/uaa"
	"cfuaa/pkg/logging"
)

// FinishLoginPath is where the login server redirects back to.
const FinishLoginPath = "/securityRealm/finishLogin"

// Login is the result of a completed browser login.
type Login struct {
	Principal  *principal.Principal
	RedirectTo string
}

// ProfileUpdate is written to the host's user profile after each login.
type ProfileUpdate struct {
	Email    string
	FullName string
}

// ProfileStore persists user profile details on behalf of the host.
type ProfileStore interface {
	UpdateProfile(ctx context.Context, principalName string, update ProfileUpdate) error
}

// LoginStore holds logins in progress keyed by browser session id.
type LoginStore = oauth.Store[*Login]

// Realm authenticates users against UAA.
type Realm struct {
	publicURL string
	scopes    []string
	endpoints uaa.Endpoints
	creds     uaa.ClientCredentials

	tokens   *uaa.TokenService
	resolver *uaa.Resolver
	logins   LoginStore
	profiles ProfileStore

	httpClient *http.Client
}

// Option configures a Realm.
type Option func(*Realm)

// WithProfileStore sets where profile details are written after login.
func WithProfileStore(ps ProfileStore) Option {
	return func(r *Realm) { r.profiles = ps }
}

// WithHTTPClient replaces the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Realm) { r.httpClient = hc }
}

// New validates cfg and publicURL and builds a Realm. Configuration problems
// are returned as a *config.ConfigurationErrorCollection.
func New(cfg config.UAAConfig, publicURL string, logins LoginStore, opts ...Option) (*Realm, error) {
	var errs config.ConfigurationErrorCollection
	if err := cfg.Validate(); err != nil {
		var coll *config.ConfigurationErrorCollection
		if errors.As(err, &coll) {
			errs.Errors = append(errs.Errors, coll.Errors...)
		}
	}
	if err := config.ValidateEndpoint("server.publicUrl", publicURL); err != nil {
		errs.Add(err)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	if logins == nil {
		return nil, errors.New("realm: login store is required")
	}

	r := &Realm{
		publicURL: publicURL,
		scopes:    cfg.Scopes,
		endpoints: uaa.EndpointsFromConfig(cfg),
		creds: uaa.ClientCredentials{
			ClientID:     cfg.ClientID,
			ClientSecret: uaa.NewSecret(cfg.ClientSecret),
		},
		logins: logins,
	}
	for _, opt := range opts {
		opt(r)
	}

	client := uaa.NewClient(uaa.WithTimeout(cfg.HTTPTimeout), uaa.WithHTTPClient(r.httpClient))
	r.tokens = uaa.NewTokenService(client, r.endpoints, r.creds)
	r.resolver = uaa.NewResolver(client, r.endpoints)

	logging.Info("Realm", "UAA realm ready: client=%s uaa=%s login=%s api=%s",
		cfg.ClientID, r.endpoints.UAA, r.endpoints.Login, r.endpoints.API)
	return r, nil
}

// PublicURL is the host's root URL.
func (r *Realm) PublicURL() string {
	return r.publicURL
}

// RedirectURL is the callback URL registered with the login server.
func (r *Realm) RedirectURL() string {
	return strings.TrimSuffix(r.publicURL, "/") + FinishLoginPath
}

// CommenceLogin starts a login for sessionID and returns the URL to redirect
// the browser to. from and referer choose where the browser lands after
// the login finishes.
func (r *Realm) CommenceLogin(sessionID, from, referer string) (string, error) {
	redirectTo := r.RedirectTarget(from, referer)

	s, err := oauth.NewSession(oauth.Config{
		LoginServerURL: r.endpoints.Login,
		RedirectURL:    r.RedirectURL(),
		ClientID:       r.creds.ClientID,
		Scopes:         r.scopes,
	}, func(ctx context.Context, code string, state oauth.State) (*Login, error) {
		p, err := r.completeLogin(ctx, code, state.RedirectURL)
		if err != nil {
			return nil, err
		}
		return &Login{Principal: p, RedirectTo: redirectTo}, nil
	})
	if err != nil {
		return "", err
	}

	authorizeURL, err := oauth.Commence(r.logins, sessionID, s)
	if err != nil {
		return "", err
	}
	metrics.LoginsStarted.Inc()
	return authorizeURL, nil
}

// FinishLogin validates the login server's callback for sessionID and
// completes the login. Rejected callbacks return an *oauth.ValidationError.
func (r *Realm) FinishLogin(ctx context.Context, sessionID string, cb oauth.Callback) (*Login, error) {
	login, err := oauth.Finish(ctx, r.logins, sessionID, cb)
	if err != nil {
		var verr *oauth.ValidationError
		if errors.As(err, &verr) {
			metrics.LoginsFinished.WithLabelValues(string(verr.Reason)).Inc()
		} else {
			metrics.LoginsFinished.WithLabelValues(metrics.OutcomeCompletionError).Inc()
			logging.Error("Realm", err, "Login for session %s could not be completed", logging.TruncateSessionID(sessionID))
		}
		return nil, err
	}

	metrics.LoginsFinished.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logging.Info("Realm", "User %s logged in with %d organizations",
		login.Principal.Name, len(login.Principal.Organizations()))
	return login, nil
}

func (r *Realm) completeLogin(ctx context.Context, code, redirectURL string) (*principal.Principal, error) {
	tok, err := r.tokens.AuthorizationCodeGrant(ctx, code, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	profile, err := r.resolver.FetchUserProfile(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("fetching user profile: %w", err)
	}
	if profile.UserID != "" {
		tok.UserID = profile.UserID
	}
	if profile.UserName != "" {
		tok.UserName = profile.UserName
	}
	if tok.UserID == "" {
		return nil, errors.New("login server did not identify the user")
	}

	orgs, err := r.resolver.UserOrganizations(ctx, tok.UserID, tok)
	if err != nil {
		return nil, fmt.Errorf("listing organizations of %s: %w", tok.UserName, err)
	}

	p := principal.Build(profile, orgs.Names)

	if r.profiles != nil {
		update := ProfileUpdate{Email: profile.Email, FullName: profile.FullName()}
		if err := r.profiles.UpdateProfile(ctx, p.Name, update); err != nil {
			logging.Warn("Realm", "Updating profile of %s failed: %v", p.Name, err)
		}
	}
	return p, nil
}

// RedirectTarget picks where the browser goes after login: from, else
// referer, else the public URL. Targets on another origin are replaced by
// the public URL.
func (r *Realm) RedirectTarget(from, referer string) string {
	for _, candidate := range []string{from, referer} {
		if candidate == "" {
			continue
		}
		if target, ok := r.sameOrigin(candidate); ok {
			return target
		}
		logging.Debug("Realm", "Ignoring off-site redirect target %q", candidate)
		return r.publicURL
	}
	return r.publicURL
}

func (r *Realm) sameOrigin(target string) (string, bool) {
	base, err := url.Parse(r.publicURL)
	if err != nil {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		// Relative paths only; "//host" is protocol-relative and off-site.
		if u.Host != "" || !strings.HasPrefix(u.Path, "/") {
			return "", false
		}
		return base.ResolveReference(u).String(), true
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}
	return u.String(), true
}

// LoadUserByUsername looks a user up with the client's own token and maps
// their organizations. Unknown or ambiguous names return an error matching
// uaa.ErrUserNotFound.
func (r *Realm) LoadUserByUsername(ctx context.Context, userName string) (*principal.Principal, error) {
	tok, err := r.tokens.ClientCredentialsGrant(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining client token: %w", err)
	}

	userID, err := r.resolver.ResolveUserID(ctx, userName, tok)
	if err != nil {
		return nil, err
	}

	orgs, err := r.resolver.UserOrganizations(ctx, userID, tok)
	if err != nil {
		return nil, fmt.Errorf("listing organizations of %s: %w", userName, err)
	}

	p := principal.ForUser(userName, orgs.Names)
	p.UserID = userID
	return p, nil
}

// LoadGroupByName returns the details of the group called name.
func (r *Realm) LoadGroupByName(name string) principal.Group {
	return principal.NewGroup(name)
}

// ServiceAuthorities lists the organizations visible to the client itself.
func (r *Realm) ServiceAuthorities(ctx context.Context) (*uaa.Organizations, error) {
	tok, err := r.tokens.ClientCredentialsGrant(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining client token: %w", err)
	}
	return r.resolver.OwnOrganizations(ctx, tok)
}

// LogoutURL ends the UAA session and comes back to the public URL.
func (r *Realm) LogoutURL() string {
	return r.endpoints.LogoutURL() + "?redirect=" + url.QueryEscape(r.publicURL)
}

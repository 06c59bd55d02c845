package uaa

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// TokenKind distinguishes tokens issued to the client itself from tokens
// issued on behalf of a user.
type TokenKind int

const (
	ClientToken TokenKind = iota
	UserToken
)

func (k TokenKind) String() string {
	switch k {
	case ClientToken:
		return "client"
	case UserToken:
		return "user"
	default:
		return "unknown"
	}
}

// ClientCredentials identify this application to UAA.
type ClientCredentials struct {
	ClientID     string
	ClientSecret Secret
}

// AccessToken is a bearer credential returned by the token endpoint.
// UserID and UserName are only set for UserToken.
type AccessToken struct {
	Kind      TokenKind
	Value     Secret
	TokenType string
	ExpiresIn int
	ExpiresAt time.Time
	Scope     string
	JTI       string

	UserID   string
	UserName string
}

// Scopes splits the space-delimited scope string.
func (t *AccessToken) Scopes() []string {
	return strings.Fields(t.Scope)
}

// Expired reports whether the token has passed its expiry at now.
// Tokens without an expiry never expire.
func (t *AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// OAuth2Token converts t for use with golang.org/x/oauth2 helpers.
func (t *AccessToken) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.Value.Reveal(),
		TokenType:   t.TokenType,
		Expiry:      t.ExpiresAt,
	}
}

// tokenResponse is the token endpoint's JSON body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	JTI         string `json:"jti"`
	UserID      string `json:"user_id,omitempty"`
	UserName    string `json:"user_name,omitempty"`
}

func (r *tokenResponse) toAccessToken(kind TokenKind, now time.Time) *AccessToken {
	tok := &AccessToken{
		Kind:      kind,
		Value:     NewSecret(r.AccessToken),
		TokenType: r.TokenType,
		ExpiresIn: r.ExpiresIn,
		Scope:     r.Scope,
		JTI:       r.JTI,
	}
	if r.ExpiresIn > 0 {
		tok.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	if kind == UserToken {
		tok.UserID = r.UserID
		tok.UserName = r.UserName
	}
	return tok
}

package uaa

import (
	"context"
	"errors"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"cfuaa/pkg/logging"
)

const (
	grantClientCredentials = "client_credentials"
	grantAuthorizationCode = "authorization_code"
)

// TokenService obtains access tokens from UAA. Tokens are never cached;
// concurrent client-credentials requests share one in-flight call.
type TokenService struct {
	client    *Client
	endpoints Endpoints
	creds     ClientCredentials
	now       func() time.Time

	group singleflight.Group
}

// NewTokenService creates a TokenService.
func NewTokenService(client *Client, endpoints Endpoints, creds ClientCredentials) *TokenService {
	return &TokenService{
		client:    client,
		endpoints: endpoints,
		creds:     creds,
		now:       time.Now,
	}
}

// ClientCredentialsGrant obtains a token for this client from
// {uaa}/oauth/token. The shared request is detached from any single caller's
// cancellation and bounded by the client timeout; each caller still returns
// as soon as its own ctx is done.
func (s *TokenService) ClientCredentialsGrant(ctx context.Context) (*AccessToken, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(grantClientCredentials, func() (any, error) {
		form := url.Values{
			"client_id":     {s.creds.ClientID},
			"grant_type":    {grantClientCredentials},
			"response_type": {"token"},
		}
		return s.requestToken(detached, s.endpoints.uaaURL("/oauth/token"), form, ClientToken)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logging.Debug("UAA", "client credentials grant shared with a concurrent caller")
		}
		// Each caller gets its own copy.
		tok := *res.Val.(*AccessToken)
		return &tok, nil
	}
}

// AuthorizationCodeGrant exchanges an authorization code at
// {login}/oauth/token. redirectURI must equal the one sent to the authorize
// endpoint.
func (s *TokenService) AuthorizationCodeGrant(ctx context.Context, code, redirectURI string) (*AccessToken, error) {
	form := url.Values{
		"client_id":    {s.creds.ClientID},
		"redirect_uri": {redirectURI},
		"grant_type":   {grantAuthorizationCode},
		"code":         {code},
	}
	tok, err := s.requestToken(ctx, s.endpoints.loginURL("/oauth/token"), form, UserToken)
	if err != nil {
		return nil, err
	}

	if tok.UserID == "" || tok.UserName == "" {
		id, name := peekUserClaims(tok.Value.Reveal())
		if tok.UserID == "" {
			tok.UserID = id
		}
		if tok.UserName == "" {
			tok.UserName = name
		}
	}
	logging.Debug("UAA", "authorization code exchanged for user %q", tok.UserName)
	return tok, nil
}

func (s *TokenService) requestToken(ctx context.Context, endpoint string, form url.Values, kind TokenKind) (*AccessToken, error) {
	var resp tokenResponse
	if err := s.client.PostForm(ctx, endpoint, &s.creds, form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &AuthServiceError{
			Op:       operationFor(endpoint),
			Endpoint: endpoint,
			Err:      errors.New("response did not contain an access token"),
		}
	}
	return resp.toAccessToken(kind, s.now()), nil
}

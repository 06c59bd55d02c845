package uaa

import (
	"strings"

	"cfuaa/internal/config"
)

// Endpoints are the base URLs of the Cloud Foundry services.
//
//	UAA   - client-credentials token, /Users, /userinfo
//	Login - /oauth/authorize, authorization-code token, /logout.do
//	API   - cloud controller /v2 resources
type Endpoints struct {
	UAA   string
	Login string
	API   string
}

// EndpointsFromConfig copies the endpoints out of cfg.
func EndpointsFromConfig(cfg config.UAAConfig) Endpoints {
	return Endpoints{
		UAA:   cfg.UAAServerEndpoint,
		Login: cfg.LoginServerEndpoint,
		API:   cfg.APIServerEndpoint,
	}
}

// Validate requires every endpoint to be an absolute http or https URL.
func (e Endpoints) Validate() error {
	var errs config.ConfigurationErrorCollection
	for _, ep := range []struct{ field, value string }{
		{"uaa.uaaServerEndpoint", e.UAA},
		{"uaa.loginServerEndpoint", e.Login},
		{"uaa.apiServerEndpoint", e.API},
	} {
		if err := config.ValidateEndpoint(ep.field, ep.value); err != nil {
			errs.Add(err)
		}
	}
	return errs.ErrOrNil()
}

func join(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}

func (e Endpoints) uaaURL(path string) string   { return join(e.UAA, path) }
func (e Endpoints) loginURL(path string) string { return join(e.Login, path) }
func (e Endpoints) apiURL(path string) string   { return join(e.API, path) }

// AuthorizeURL is the login server's authorization endpoint.
func (e Endpoints) AuthorizeURL() string { return e.loginURL("/oauth/authorize") }

// LogoutURL is the login server's logout endpoint without parameters.
func (e Endpoints) LogoutURL() string { return e.loginURL("/logout.do") }

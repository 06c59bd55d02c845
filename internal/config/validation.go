package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"cfuaa/pkg/logging"
)

// Validate checks the UAA client registration: non-empty client id and secret
// and three absolute http(s) endpoints. All problems are reported together.
func (c UAAConfig) Validate() error {
	var errs ConfigurationErrorCollection

	if strings.TrimSpace(c.ClientID) == "" {
		errs.Add(NewConfigurationError("uaa.clientId", "must not be empty",
			"register an OAuth client in UAA and set uaa.clientId or "+EnvClientID))
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		errs.Add(NewConfigurationError("uaa.clientSecret", "must not be empty",
			"set "+EnvClientSecret+" in the environment"))
	}

	endpoints := []struct{ field, value string }{
		{"uaa.uaaServerEndpoint", c.UAAServerEndpoint},
		{"uaa.loginServerEndpoint", c.LoginServerEndpoint},
		{"uaa.apiServerEndpoint", c.APIServerEndpoint},
	}
	for _, ep := range endpoints {
		if err := ValidateEndpoint(ep.field, ep.value); err != nil {
			errs.Add(err)
		}
	}

	if c.HTTPTimeout < 0 {
		errs.Add(NewConfigurationError("uaa.httpTimeout", "must not be negative"))
	}

	return errs.ErrOrNil()
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	var errs ConfigurationErrorCollection

	if err := c.UAA.Validate(); err != nil {
		if coll, ok := err.(*ConfigurationErrorCollection); ok {
			errs.Errors = append(errs.Errors, coll.Errors...)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs.Add(NewConfigurationError("server.port", fmt.Sprintf("%d is not a valid port", c.Server.Port)))
	}
	if err := ValidateEndpoint("server.publicUrl", c.Server.PublicURL); err != nil {
		errs.Add(err)
	}
	if c.Server.CallbackRateLimit.PerSecond < 0 || c.Server.CallbackRateLimit.Burst < 0 {
		errs.Add(NewConfigurationError("server.callbackRateLimit", "perSecond and burst must not be negative"))
	}
	for i, proxy := range c.Server.TrustedProxies {
		if _, err := ParsePrefix(proxy); err != nil {
			errs.Add(NewConfigurationError(fmt.Sprintf("server.trustedProxies[%d]", i), err.Error(),
				"use an IP address like 10.0.0.1 or a CIDR like 10.0.0.0/8"))
		}
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add(NewConfigurationError("logging.level", err.Error(), "use one of debug, info, warn, error"))
	}
	switch c.Logging.Format {
	case "", string(logging.FormatText), string(logging.FormatJSON):
	default:
		errs.Add(NewConfigurationError("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format), "use text or json"))
	}

	return errs.ErrOrNil()
}

// ValidateEndpoint requires an absolute URL with an http or https scheme and a host.
func ValidateEndpoint(field, value string) *ConfigurationError {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return NewConfigurationError(field, "must start with http: or https: protocol")
	}
	u, err := url.Parse(value)
	if err != nil {
		return NewConfigurationError(field, fmt.Sprintf("is not a valid URL: %v", err))
	}
	if u.Host == "" {
		return NewConfigurationError(field, "must include a host")
	}
	return nil
}

// ParsePrefix accepts a CIDR or a bare IP address, which becomes a
// single-address prefix.
func ParsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%q is not a valid CIDR", s)
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%q is not a valid IP address", s)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

package config

import "time"

// Config is the top-level configuration structure for cfuaa.
type Config struct {
	UAA     UAAConfig     `yaml:"uaa"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// UAAConfig holds the OAuth client registration and the Cloud Foundry
// endpoints the realm talks to.
type UAAConfig struct {
	ClientID            string        `yaml:"clientId"`
	ClientSecret        string        `yaml:"clientSecret"`
	UAAServerEndpoint   string        `yaml:"uaaServerEndpoint"`   // token (client credentials), /Users, /userinfo
	LoginServerEndpoint string        `yaml:"loginServerEndpoint"` // /oauth/authorize, token (authorization code), /logout.do
	APIServerEndpoint   string        `yaml:"apiServerEndpoint"`   // cloud controller /v2/...
	HTTPTimeout         time.Duration `yaml:"httpTimeout,omitempty"`
	Scopes              []string      `yaml:"scopes,omitempty"`
}

// ServerConfig configures the HTTP host that exposes the login endpoints.
type ServerConfig struct {
	Host              string          `yaml:"host,omitempty"`
	Port              int             `yaml:"port,omitempty"`
	PublicURL         string          `yaml:"publicUrl,omitempty"` // root URL users reach the host on, used for redirects
	SessionTTL        time.Duration   `yaml:"sessionTTL,omitempty"`
	CallbackRateLimit RateLimitConfig `yaml:"callbackRateLimit,omitempty"`
	// TrustedProxies lists reverse proxy addresses (IPs or CIDRs) whose
	// X-Forwarded-For header is honored. Empty means the socket peer is used.
	TrustedProxies []string `yaml:"trustedProxies,omitempty"`
}

// RateLimitConfig is a per-client-IP token bucket.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"perSecond,omitempty"`
	Burst     int     `yaml:"burst,omitempty"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

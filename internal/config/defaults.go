package config

import (
	"time"

	"cfuaa/internal/oauth"
)

const (
	// DefaultHTTPTimeout bounds every round trip to UAA and the cloud controller.
	DefaultHTTPTimeout = 5 * time.Second

	// DefaultSessionTTL is how long an idle browser session (and any in-flight login) is kept.
	DefaultSessionTTL = 30 * time.Minute

	DefaultHost      = "localhost"
	DefaultPort      = 8080
	DefaultPublicURL = "http://localhost:8080/"

	DefaultCallbackRatePerSecond = 5
	DefaultCallbackBurst         = 10
)

// DefaultScopes are requested on every authorization request.
var DefaultScopes = oauth.DefaultScopes

// GetDefaultConfig returns the configuration used when no file is present.
// The UAA client registration has no defaults and must always be supplied.
func GetDefaultConfig() Config {
	return Config{
		UAA: UAAConfig{
			HTTPTimeout: DefaultHTTPTimeout,
			Scopes:      append([]string(nil), DefaultScopes...),
		},
		Server: ServerConfig{
			Host:       DefaultHost,
			Port:       DefaultPort,
			PublicURL:  DefaultPublicURL,
			SessionTTL: DefaultSessionTTL,
			CallbackRateLimit: RateLimitConfig{
				PerSecond: DefaultCallbackRatePerSecond,
				Burst:     DefaultCallbackBurst,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

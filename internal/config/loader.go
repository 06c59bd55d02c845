package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cfuaa/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values. Secrets are expected to
// arrive this way rather than being written into config files.
const (
	EnvClientID     = "CFUAA_CLIENT_ID"
	EnvClientSecret = "CFUAA_CLIENT_SECRET"
	EnvUAAURL       = "CFUAA_UAA_URL"
	EnvLoginURL     = "CFUAA_LOGIN_URL"
	EnvAPIURL       = "CFUAA_API_URL"
	EnvPublicURL    = "CFUAA_PUBLIC_URL"
)

// LoadConfig reads the YAML file at path on top of the defaults and then
// applies environment overrides. An empty path, or a path that does not
// exist, yields the defaults plus environment. The result is not validated.
func LoadConfig(path string) (Config, error) {
	cfg := GetDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Info("Config", "No config file found at %s, using defaults", path)
		case err != nil:
			return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			logging.Info("Config", "Loaded configuration from %s", path)
		}
	}

	ApplyEnv(&cfg, os.Getenv)
	applyZeroDefaults(&cfg)
	return cfg, nil
}

// ApplyEnv overrides configuration values from the environment.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.UAA.ClientID, EnvClientID)
	set(&cfg.UAA.ClientSecret, EnvClientSecret)
	set(&cfg.UAA.UAAServerEndpoint, EnvUAAURL)
	set(&cfg.UAA.LoginServerEndpoint, EnvLoginURL)
	set(&cfg.UAA.APIServerEndpoint, EnvAPIURL)
	set(&cfg.Server.PublicURL, EnvPublicURL)
}

// applyZeroDefaults restores defaults for values a config file explicitly zeroed.
func applyZeroDefaults(cfg *Config) {
	def := GetDefaultConfig()
	if cfg.UAA.HTTPTimeout <= 0 {
		cfg.UAA.HTTPTimeout = def.UAA.HTTPTimeout
	}
	if len(cfg.UAA.Scopes) == 0 {
		cfg.UAA.Scopes = def.UAA.Scopes
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = def.Server.SessionTTL
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = def.Server.PublicURL
	}
}

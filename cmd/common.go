package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"cfuaa/internal/config"
	"cfuaa/internal/formatting"
	"cfuaa/internal/oauth"
	"cfuaa/internal/realm"
	"cfuaa/internal/session"
)

// loadedConfig caches the configuration for the lifetime of one command.
var loadedConfig *config.Config

// loadConfig reads --config plus environment overrides once per process.
func loadConfig() (config.Config, error) {
	if loadedConfig != nil {
		return *loadedConfig, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, config.NewConfigurationError("config", err.Error(),
			"check the YAML syntax of "+configPath)
	}
	loadedConfig = &cfg
	return cfg, nil
}

// newRealm builds a realm for one-shot commands. The returned stop func
// releases the login store.
func newRealm(cfg config.Config) (*realm.Realm, func(), error) {
	logins := session.New[*oauth.Session[*realm.Login]]("login", time.Minute)
	r, err := realm.New(cfg.UAA, cfg.Server.PublicURL, logins)
	if err != nil {
		logins.Stop()
		return nil, nil, err
	}
	return r, logins.Stop, nil
}

func newPrinter(cmd *cobra.Command) (*formatting.Printer, error) {
	format, err := formatting.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return formatting.NewPrinter(cmd.OutOrStdout(), format), nil
}

package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"cfuaa/internal/config"
	"cfuaa/internal/uaa"
	"cfuaa/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeConfig indicates invalid or unreadable configuration.
	ExitCodeConfig = 2
	// ExitCodeAuthService indicates UAA or the cloud controller failed or refused a request.
	ExitCodeAuthService = 3
	// ExitCodeNotFound indicates a user name that did not resolve to exactly one user.
	ExitCodeNotFound = 4
)

var (
	configPath   string
	logLevel     string
	logFormat    string
	outputFormat string
)

// rootCmd represents the base command for the cfuaa application.
var rootCmd = &cobra.Command{
	Use:   "cfuaa",
	Short: "Log users in against Cloud Foundry UAA",
	Long: `cfuaa authenticates browser users against a Cloud Foundry UAA server and
maps their organization memberships to authorities.

It can run a small login host (serve) or query UAA and the cloud controller
directly with the configured client credentials (lookup, orgs).`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cfuaa version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to an exit code for scripting.
func getExitCode(err error) int {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfig
	}
	if errors.Is(err, uaa.ErrUserNotFound) {
		return ExitCodeNotFound
	}
	if errors.Is(err, uaa.ErrAuthService) {
		return ExitCodeAuthService
	}
	return ExitCodeError
}

// initLogging configures the logger from the flags, falling back to the
// config file's logging section when the flags are not set.
func initLogging(cmd *cobra.Command, args []string) error {
	level, format := logLevel, logFormat
	if level == "" || format == "" {
		if cfg, err := loadConfig(); err == nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			if format == "" {
				format = cfg.Logging.Format
			}
		}
	}

	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return config.NewConfigurationError("logging.level", err.Error(), "use one of debug, info, warn, error")
	}
	switch logging.Format(format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return config.NewConfigurationError("logging.format", "unknown format "+format, "use text or json")
	}
	logging.Init(lvl, logging.Format(format), cmd.ErrOrStderr())
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cfuaa.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newOrgsCmd())
	rootCmd.AddCommand(newLogoutURLCmd())
	rootCmd.AddCommand(newCheckConfigCmd())
}

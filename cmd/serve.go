package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cfuaa/internal/server"
	"cfuaa/pkg/logging"
)

// newServeCmd creates the command that runs the login host.
func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the login host",
		Long: `Starts an HTTP server exposing the UAA login endpoints:

  /securityRealm/commenceLogin  redirect the browser to the UAA login server
  /securityRealm/finishLogin    OAuth callback
  /logout                       end the session and log out of UAA
  /whoami                       the logged-in principal as JSON
  /metrics, /healthz            operations

The server stops gracefully on SIGINT or SIGTERM and notifies systemd when
started as a notify service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.Info("Bootstrap", "Starting cfuaa %s", GetVersion())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout-url",
		Short: "Print the UAA logout URL for the configured public URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r, stop, err := newRealm(cfg)
			if err != nil {
				return err
			}
			defer stop()

			fmt.Fprintln(cmd.OutOrStdout(), r.LogoutURL())
			return nil
		},
	}
}

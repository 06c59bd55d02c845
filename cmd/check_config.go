package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cfuaa/internal/config"
)

// newCheckConfigCmd creates the command that validates the configuration
// without contacting UAA.
func newCheckConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			err = cfg.Validate()
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			}

			var coll *config.ConfigurationErrorCollection
			if errors.As(err, &coll) {
				printer, perr := newPrinter(cmd)
				if perr != nil {
					return perr
				}
				if perr := printer.ConfigErrors(coll.Errors); perr != nil {
					return perr
				}
			}
			return err
		},
	}
}

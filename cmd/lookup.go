package cmd

import (
	"github.com/spf13/cobra"
)

// newLookupCmd creates the command that resolves a user and their organizations.
func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup USERNAME",
		Short: "Look up a UAA user and the authorities they would be granted",
		Long: `Resolves USERNAME to a UAA user id with the client's own credentials and
lists the active organizations the user belongs to.

Exits with code 4 when the name does not match exactly one user.`,
		Args: cobra.ExactArgs(1),
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

			printer, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			p, err := r.LoadUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printer.Principal(p)
		},
	}
}

package cmd

import (
	"github.com/spf13/cobra"
)

// newOrgsCmd creates the command that lists the client's own organizations.
func newOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List the active organizations visible to the client",
		Long: `Obtains a client-credentials token and lists the active organizations the
cloud controller returns for it. Only the first page of results is read.`,
		Args: cobra.NoArgs,
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

			orgs, err := r.ServiceAuthorities(cmd.Context())
			if err != nil {
				return err
			}
			return printer.Organizations(orgs)
		},
	}
}

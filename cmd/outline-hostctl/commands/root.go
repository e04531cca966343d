// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/zuohuadong/outline-server/cmd/outline-hostctl/handlers"
)

// Root returns the root command for the outline-hostctl CLI.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:   "outline-hostctl",
		Short: "Watch, describe and delete Outline proxy servers",
		Long: `outline-hostctl follows proxy servers while they install themselves.

Providers: digitalocean, gcp, hetzner.

Credentials are read from the file given with --config and from the
environment (DIGITALOCEAN_TOKEN, HCLOUD_TOKEN, GOOGLE_CLOUD_PROJECT,
GOOGLE_APPLICATION_CREDENTIALS).`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			handlers.SetLogVerbosity(opts.Verbosity)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to credentials file")
	cmd.PersistentFlags().IntVarP(&opts.Verbosity, "verbose", "v", 0, "Log verbosity (1 for debug)")

	cmd.AddCommand(Watch(opts))
	cmd.AddCommand(Describe(opts))
	cmd.AddCommand(Delete(opts))
	cmd.AddCommand(Version())

	return cmd
}

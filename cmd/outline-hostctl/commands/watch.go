package commands

import (
	"github.com/spf13/cobra"

	"github.com/zuohuadong/outline-server/cmd/outline-hostctl/handlers"
)

// Watch returns the watch command.
func Watch(opts *handlers.Options) *cobra.Command {
	wopts := handlers.WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <provider> <ref>...",
		Short: "Wait for servers to finish installing",
		Long: `Watch follows the installation of one or more servers and prints the
management API URL and certificate fingerprint of each.

References are droplet IDs on digitalocean, zone/name on gcp and server IDs
on hetzner. Several servers are watched in parallel.

Example:
  outline-hostctl watch digitalocean 123456 123457
  outline-hostctl watch gcp us-central1-b/outline --probe`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wopts.Options = *opts
			return handlers.Watch(cmd.Context(), args[0], args[1:], wopts)
		},
	}

	cmd.Flags().StringVar(&wopts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching")
	cmd.Flags().BoolVar(&wopts.Probe, "probe", false, "Call the management API of installed servers over the pinned certificate")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/zuohuadong/outline-server/cmd/outline-hostctl/handlers"
)

// Delete returns the delete command.
//
// Ancillary resources (reserved or static addresses) are released before the
// instance itself.
func Delete(opts *handlers.Options) *cobra.Command {
	var staticAddress string

	cmd := &cobra.Command{
		Use:   "delete <provider> <ref>",
		Short: "Delete a server and its ancillary resources",
		Long: `Delete releases the addresses reserved for a server, then deletes the
instance. A server that is already gone counts as deleted.

Example:
  outline-hostctl delete hetzner 4711
  outline-hostctl delete gcp us-central1-b/outline --static-address outline-ip

WARNING: This operation is irreversible.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := *opts
			o.StaticAddress = staticAddress
			return handlers.Delete(cmd.Context(), args[0], args[1], o)
		},
	}

	cmd.Flags().StringVar(&staticAddress, "static-address", "", "Name of the reserved static address (gcp)")

	return cmd
}

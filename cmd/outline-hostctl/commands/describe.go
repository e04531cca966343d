package commands

import (
	"github.com/spf13/cobra"

	"github.com/zuohuadong/outline-server/cmd/outline-hostctl/handlers"
)

// Describe returns the describe command.
func Describe(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <provider> <ref>",
		Short: "Print region, address, price and transfer allowance of a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Describe(cmd.Context(), args[0], args[1], *opts)
		},
	}
}

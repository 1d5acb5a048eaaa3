// Command corsicad is a small testbed server and checker for corsica
// policy files. Its serve subcommand mounts each resource of a policy
// file on an HTTP mux behind the corresponding CORS middleware; its
// check subcommand evaluates a policy file against a given request
// origin without starting a server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "corsicad",
		Short:        "CORS origin-policy server and checker",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newCheckCmd())
	return root
}

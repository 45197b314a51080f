// Package cli wires the gateway's cobra commands: serve and snapshot
// inspect.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "a2a402 payment gateway",
	Long:  "gateway runs the a2a402 agent-payment gateway: an A2A JSON-RPC surface and an x402 REST surface over a shared pay-per-request task engine.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

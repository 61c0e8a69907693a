package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "oddstream-agent",
	Short: "OddStream trading agent",
	Long: `OddStream trading agent for a sharded ledger where every user and every
market lives on its own microchain.

The agent claims a user chain on startup, registers it with the registry
chain, and routes order batches to the chains that own their markets.
Batches bound for one chain carry strictly increasing nonces; batches bound
for distinct chains are dispatched concurrently.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}

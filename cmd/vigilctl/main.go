// Command vigilctl is an administrative front-end over the operator
// manager, for bootstrapping and managing operators without going through
// the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigilctl",
	Short: "vigilctl manages vigil operators",
	Long: `vigilctl is a thin administrative client over the operator manager.
It connects directly to the configured database — no running API server
is required.`,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createOperatorCmd)
	rootCmd.AddCommand(deleteOperatorCmd)
	rootCmd.AddCommand(getOperatorCmd)
	rootCmd.AddCommand(editOperatorCmd)
	rootCmd.AddCommand(listOperatorsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

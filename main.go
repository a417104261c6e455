package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "analyze-transactions",
	Short: "Collect customer banking transactions and compute category spend shares",
	Long: `analyze-transactions enumerates banking customers from a Cognito user
pool, pulls their transactions through the Salt Edge partners API (or a
local fixture file), and reduces them to a per-customer distribution of
spending across categories.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(sandboxCmd)
}

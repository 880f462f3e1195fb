// Command opsctl is the maintenance tool of the dashboard: it seeds
// operator accounts and checks participant policy files before they are
// deployed.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "opsctl",
	Short:        "Maintenance commands for the tour operations dashboard",
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()
	rootCmd.AddCommand(operatorCmd())
	rootCmd.AddCommand(policiesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command storefront runs the storefront API and its maintenance tasks.
//
//	storefront serve
//	storefront route:list
//	storefront migrate
//	storefront migrate:rollback
//	storefront migrate:status
//	storefront seed --admin-email admin@shop.test --admin-password ********
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register migrations and seeders.
	_ "github.com/jcorner/storefront/database/migrations"
	_ "github.com/jcorner/storefront/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server and tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}

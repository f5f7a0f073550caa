package main

import (
	"github.com/spf13/cobra"

	"github.com/jcorner/storefront/database/seeders"
	"github.com/jcorner/storefront/pkg/app"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context(), cmd.OutOrStdout())
	},
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.MigrateRollback(cmd.Context(), cmd.OutOrStdout())
	},
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.MigrateStatus(cmd.Context(), cmd.OutOrStdout())
	},
}

var seedFlags struct {
	only     []string
	email    string
	password string
	mobile   string
	first    string
	last     string
	demo     bool
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the admin account and, optionally, demo products",
	RunE: func(cmd *cobra.Command, args []string) error {
		only := seedFlags.only
		if len(only) == 0 {
			only = []string{"admin"}
			if seedFlags.demo {
				only = append(only, "demo-products")
			}
		}
		opts := map[string]string{
			seeders.OptAdminEmail:     seedFlags.email,
			seeders.OptAdminPassword:  seedFlags.password,
			seeders.OptAdminMobile:    seedFlags.mobile,
			seeders.OptAdminFirstName: seedFlags.first,
			seeders.OptAdminLastName:  seedFlags.last,
		}
		return app.Seed(cmd.Context(), cmd.OutOrStdout(), opts, only...)
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringSliceVar(&seedFlags.only, "only", nil, "run only these seeders (admin, demo-products)")
	f.StringVar(&seedFlags.email, "admin-email", "", "admin account email")
	f.StringVar(&seedFlags.password, "admin-password", "", "admin account password (8+ characters)")
	f.StringVar(&seedFlags.mobile, "admin-mobile", "", "admin mobile number (11 digits)")
	f.StringVar(&seedFlags.first, "admin-first-name", "", "admin first name")
	f.StringVar(&seedFlags.last, "admin-last-name", "", "admin last name")
	f.BoolVar(&seedFlags.demo, "demo", false, "also create demo products")
}

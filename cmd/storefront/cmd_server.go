package main

import (
	"github.com/spf13/cobra"

	"github.com/jcorner/storefront/config"
	"github.com/jcorner/storefront/pkg/app"
)

var servePort string

// storefront serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			config.Set("APP_PORT", servePort)
		}
		return app.Serve(cmd.Context())
	},
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:     "route:list",
	Aliases: []string{"routes"},
	Short:   "List every API route",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RouteList(cmd.OutOrStdout())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides APP_PORT)")
}

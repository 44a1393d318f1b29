// Command rigparts runs the storefront server and its operational tasks.
//
//	rigparts serve              # HTTP + gRPC + live feed + queue workers
//	rigparts migrate            # run pending migrations
//	rigparts migrate:rollback
//	rigparts migrate:status
//	rigparts seed               # demo catalog and admin account
//	rigparts queue:work         # standalone queue workers (QUEUE_DRIVER=redis)
//	rigparts schedule:run       # sends scheduled campaigns when due
//	rigparts route:list
//	rigparts campaign:send 12   # send a campaign synchronously
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/rigparts/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "rigparts",
	Short:         "Heavy-duty truck parts storefront",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(scheduleRunCmd)
	rootCmd.AddCommand(campaignSendCmd)
}

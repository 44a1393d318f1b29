package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/database/seeders"
	"github.com/shashiranjanraj/rigparts/pkg/database"
	"github.com/shashiranjanraj/rigparts/pkg/migration"
)

// bootDB loads config and opens the database connection. Database commands
// need nothing else, so they skip server.Boot.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// rigparts migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running migrations…")
		_, err := migration.New(database.DB).Run(cmd.Context())
		return err
	},
}

// rigparts migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Rolling back last batch…")
		_, err := migration.New(database.DB).Rollback(cmd.Context())
		return err
	},
}

// rigparts migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		rows, err := migration.New(database.DB).Status(cmd.Context())
		if err != nil {
			return err
		}
		migration.PrintStatus(os.Stdout, rows)
		return nil
	},
}

// rigparts seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB)
	},
}

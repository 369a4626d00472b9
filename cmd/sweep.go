/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/folioworks/identity/config"
	"github.com/folioworks/identity/internal/db"
	"github.com/folioworks/identity/internal/store"
	"github.com/spf13/cobra"
)

// sweepCmd destroys sessions past their expiry. Intended to run from cron.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired user sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.Close()

		sessions := store.NewSessionRepository(dbConn)
		removed, err := sessions.DeleteExpired(cmd.Context(), time.Now())
		if err != nil {
			return fmt.Errorf("sweep expired sessions: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

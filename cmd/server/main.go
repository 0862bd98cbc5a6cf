package main

import (
	"fmt"
	"os"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/config"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/database"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Schedule planner API server",
	Long: `planner serves the schedule planner REST API: tasks with travel time
estimates, user accounts, and weather, place search and news lookups.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.New(cfg)

		if _, err := openDatabase(cfg, log); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

// openDatabase connects and brings the schema up to date.
func openDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

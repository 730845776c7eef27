package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/card-workbench/internal/catalog/postgres"
	"github.com/Rrens/card-workbench/internal/config"
)

var steps int

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres card catalog schema",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if it exists
		_ = godotenv.Load()
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, source, err := catalogTarget()
		if err != nil {
			return err
		}
		return postgres.RunMigrations(dsn, source)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if steps < 1 {
			return fmt.Errorf("steps must be positive, got %d", steps)
		}
		dsn, source, err := catalogTarget()
		if err != nil {
			return err
		}
		return postgres.RollbackMigrations(dsn, source, steps)
	},
}

func catalogTarget() (dsn, source string, err error) {
	cfg, err := config.Load()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Catalog.Driver != "postgres" {
		return "", "", fmt.Errorf("migrations only manage the postgres catalog, driver is %q", cfg.Catalog.Driver)
	}

	log.Info().
		Str("host", cfg.Catalog.Host).
		Int("port", cfg.Catalog.Port).
		Str("source", cfg.Catalog.MigrationsPath).
		Msg("Connecting to catalog database")

	return postgres.DSN(cfg.Catalog.Connection()), cfg.Catalog.MigrationsPath, nil
}

func init() {
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(upCmd, downCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/leadrelay/backend/internal/config"
	"github.com/leadrelay/backend/internal/logging"
	"github.com/leadrelay/backend/internal/repository"
)

var (
	configPath   string
	migrationDir string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the lead API",
	Long: `Applies pending *.up.sql files from the migrations directory in name order
and records each one in schema_migrations.

Commands:
  (default)   apply pending migrations
  down        roll back the most recently applied migration
  reset       drop every table and recreate it from the consolidated schema
  fresh       drop every table and apply all migrations in order`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrator) error {
			return m.up(cmd.Context())
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recently applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrator) error {
			return m.down(cmd.Context())
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all tables and apply the consolidated schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrator) error {
			if err := m.dropAll(cmd.Context()); err != nil {
				return err
			}
			return m.consolidated(cmd.Context())
		})
	},
}

var freshCmd = &cobra.Command{
	Use:   "fresh",
	Short: "Drop all tables and apply every migration in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrator) error {
			if err := m.dropAll(cmd.Context()); err != nil {
				return err
			}
			return m.up(cmd.Context())
		})
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default $CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&migrationDir, "dir", "", "migrations directory (default ./migrations or ../migrations)")
	rootCmd.AddCommand(downCmd, resetCmd, freshCmd)
}

func main() {
	config.LoadDotEnv(".env", "../.env")
	logging.Setup(os.Getenv("LOG_LEVEL"))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withMigrator connects to the configured database and runs fn.
func withMigrator(ctx context.Context, fn func(*migrator) error) error {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need the postgres store, configured driver is %q", cfg.Database.Driver)
	}

	pool, err := repository.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	dir := migrationDir
	if dir == "" {
		dir = findMigrationDir()
	}
	return fn(newMigrator(pool, dir))
}

var _ execer = (*pgxpool.Pool)(nil)

package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	if err := newRootCommand(logger).Execute(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	var source string

	open := func() (*migrate.Migrate, error) {
		postgresURL := os.Getenv("POSTGRES_URL")
		if postgresURL == "" {
			return nil, errors.New("POSTGRES_URL environment variable is required")
		}
		return migrate.New(source, postgresURL)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the orders schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultSource := os.Getenv("MIGRATIONS_PATH")
	if defaultSource == "" {
		defaultSource = "file://migrations"
	}
	root.PersistentFlags().StringVar(&source, "source", defaultSource, "migration source URL")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer func() { _, _ = m.Close() }()

			if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
				logger.Info("no pending migrations")
				return nil
			} else if err != nil {
				return err
			}
			logger.Info("migrations applied successfully")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer func() { _, _ = m.Close() }()

			if err := m.Steps(-1); errors.Is(err, migrate.ErrNoChange) {
				logger.Info("no migrations to rollback")
				return nil
			} else if err != nil {
				return err
			}
			logger.Info("migration rolled back successfully")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer func() { _, _ = m.Close() }()

			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info("no migrations applied yet")
				return nil
			}
			if err != nil {
				return err
			}
			logger.Info("current migration version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
			return nil
		},
	})

	return root
}

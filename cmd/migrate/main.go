// Command migrate applies or rolls back the jobly schema outside the API process.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobly/internal/config"
	"github.com/justsurfingit/jobly/internal/database"
	"github.com/justsurfingit/jobly/internal/logging"
)

// connectFunc opens the database the commands run against.
type connectFunc func(ctx context.Context) (*gorm.DB, error)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// The commands below decide what to apply.
	cfg.DBAutoMigrate = false

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	connect := func(ctx context.Context) (*gorm.DB, error) {
		return database.Connect(ctx, cfg, logger)
	}
	return newRootCommand(connect, logger).Execute()
}

func newRootCommand(connect connectFunc, logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the jobly database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUpCommand(connect, logger))
	root.AddCommand(newDownCommand(connect, logger))
	return root
}

func newUpCommand(connect connectFunc, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), connect, logger, func(ctx context.Context, m *database.Migrator) error {
				return m.Up(ctx, database.Migrations)
			})
		},
	}
}

func newDownCommand(connect connectFunc, logger *zap.Logger) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every applied migration",
		Long: `Roll back every applied migration, newest first.

This drops the jobly tables and all of their rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to drop the schema without --yes")
			}
			return withMigrator(cmd.Context(), connect, logger, func(ctx context.Context, m *database.Migrator) error {
				return m.Down(ctx, database.Migrations)
			})
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm that all jobly data may be dropped")
	return cmd
}

func withMigrator(ctx context.Context, connect connectFunc, logger *zap.Logger, fn func(context.Context, *database.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	return fn(ctx, database.NewMigrator(db, logger))
}

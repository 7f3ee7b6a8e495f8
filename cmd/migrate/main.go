package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/markdave123-py/themis/internal/config"
	db "github.com/markdave123-py/themis/internal/core/database"
	"github.com/markdave123-py/themis/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var migrationsDir string

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the database schema",
		Long: `Run every migration in the given direction.

Migrations are applied in file name order for up and in reverse for down.
Without --migrations-dir the migrations built into the binary are used.

Examples:
  migrate up
  migrate down --migrations-dir ./internal/core/database/migrations`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory of .sql migrations (default: embedded)")

	for _, d := range []db.Direction{db.Up, db.Down} {
		direction := d
		root.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: fmt.Sprintf("Run all %s migrations", direction),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrations(cmd.Context(), direction, migrationsDir)
			},
		})
	}

	return root
}

func runMigrations(ctx context.Context, direction db.Direction, dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Debug)
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	client, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer client.Close()

	m, err := db.NewMigrator(client.DB(), dir)
	if err != nil {
		return err
	}
	if err := m.Run(ctx, direction); err != nil {
		return err
	}

	log.Info().Str("direction", string(direction)).Msg("migrations finished")
	return nil
}

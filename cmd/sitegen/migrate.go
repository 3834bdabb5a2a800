package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sitegen/internal/cache"
	"sitegen/internal/config"
	"sitegen/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := "up"
		if len(args) == 1 {
			action = args[0]
		}

		cfg, closeLog, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx := cmd.Context()
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		before, err := database.Version(ctx, db)
		if err != nil {
			return err
		}

		switch action {
		case "down":
			if err := database.Rollback(ctx, db); err != nil {
				return err
			}
		case "up":
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
		}

		version, err := database.Version(ctx, db)
		if err != nil {
			return err
		}
		slog.Info("migration state", "action", action, "from", before, "version", version)

		if version != before {
			if _, err := clearPreviews(ctx, cfg); err != nil {
				slog.Warn("preview cache not cleared", "error", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
		return nil
	},
}

// clearPreviews drops every cached preview. After a schema change cached
// pages may belong to rows that no longer exist or read differently.
func clearPreviews(ctx context.Context, cfg *config.Config) (int, error) {
	if !cfg.ValkeyEnabled() {
		return 0, nil
	}
	client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return 0, fmt.Errorf("connect valkey: %w", err)
	}
	defer client.Close()
	return cache.NewPageCache(client, cfg.PreviewCacheTTL).InvalidateAll(ctx), nil
}

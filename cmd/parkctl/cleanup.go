package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/skypark/bookings/internal/repo/postgres"
	"github.com/skypark/bookings/pkg/config"
	"github.com/skypark/bookings/pkg/database"
	"github.com/skypark/bookings/pkg/logger"
)

// expirer is a table that can drop its expired rows.
type expirer interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

func newCleanupCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired webhook events and rate limit windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Configure(cfg.Log.Level, "text")

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := database.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			tables := []struct {
				name string
				repo expirer
			}{
				{"webhook_events", postgres.NewWebhookEventRepo(pool)},
				{"rate_limits", postgres.NewRateLimitRepo(pool)},
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Table", "Deleted"})
			var failed error
			for _, tb := range tables {
				n, err := tb.repo.CleanupExpired(ctx)
				if err != nil {
					logger.Error("cleanup failed", "table", tb.name, "error", err)
					failed = err
					t.AppendRow(table.Row{tb.name, "error"})
					continue
				}
				t.AppendRow(table.Row{tb.name, n})
			}
			t.Render()
			return failed
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	return cmd
}

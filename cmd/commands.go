package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shenikar/mine_safety_dashboard/internal/analytics"
	"github.com/shenikar/mine_safety_dashboard/internal/handler/web"
	"github.com/spf13/cobra"
)

const minWatchInterval = 30

func newSnapshotCmd() *cobra.Command {
	var (
		outputFile string
		interval   int
		watchMode  bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a static HTML page with the dashboard and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, "text")
			if err != nil {
				return err
			}
			defer a.close()

			// Enforce minimum interval
			if interval < minWatchInterval {
				interval = minWatchInterval
			}
			refresh := time.Duration(0)
			if watchMode {
				refresh = time.Duration(interval) * time.Second
			}

			snapshotter, err := web.NewSnapshotter(a.dashboardService(nil), a.log, refresh)
			if err != nil {
				return err
			}

			if err := writeSnapshot(ctx, snapshotter, outputFile); err != nil {
				return err
			}
			cmd.Println(fmt.Sprintf("Dashboard snapshot saved to %s", outputFile))

			if !watchMode {
				return nil
			}

			cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", interval))
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := writeSnapshot(ctx, snapshotter, outputFile); err != nil {
						cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "dashboard.html", "Output HTML file path")
	cmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously update the snapshot")
	return cmd
}

// writeSnapshot пишет страницу во временный файл и атомарно заменяет им outputFile
func writeSnapshot(ctx context.Context, snapshotter *web.Snapshotter, outputFile string) error {
	tmp, err := os.CreateTemp(filepath.Dir(outputFile), ".snapshot-*.html")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := snapshotter.Render(ctx, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputFile); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

func newAlertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List active alerts grouped by type",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), "text")
			if err != nil {
				return err
			}
			defer a.close()

			board, err := a.dashboardService(nil).AlertBoard(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch alerts: %w", err)
			}

			if len(board.Groups) == 0 {
				cmd.Println("No active alerts.")
				return nil
			}

			cmd.Println(fmt.Sprintf("Active alerts: %d", board.Total))
			for _, group := range board.Groups {
				cmd.Println("---")
				cmd.Println(fmt.Sprintf("%s (%d)", analytics.GroupTitle(group.Type), len(group.Alerts)))
				for _, alert := range group.Alerts {
					cmd.Println(fmt.Sprintf("  [%s] %s (%s, %s)", analytics.SeverityLabel(alert.Severity), alert.Message, alert.State, alert.Date))
				}
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mangasync/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cumulative synchronization statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStats(func(store *stats.Store) error {
				current, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}

				lastSync := "never"
				if current.LastSyncTime != nil {
					lastSync = current.LastSyncTime.Local().Format(time.RFC1123)
				}
				out := cmd.OutOrStdout()
				headers := []string{"Metric", "Value"}
				aligns := []columnAlignment{alignLeft, alignRight}
				rows := [][]string{
					{"Last successful sync", lastSync},
					{"Entries synced", strconv.FormatInt(current.EntriesSynced, 10)},
					{"Failed syncs", strconv.FormatInt(current.FailedSyncs, 10)},
					{"Total sync runs", strconv.FormatInt(current.TotalSyncs, 10)},
				}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}

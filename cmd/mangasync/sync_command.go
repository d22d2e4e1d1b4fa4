package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mangasync/internal/match"
	"mangasync/internal/services"
	"mangasync/internal/session"
	"mangasync/internal/stats"
	"mangasync/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push accepted matches to the target catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			release, err := stats.AcquireLock(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}

			return ctx.withSession(func(store *session.Store) error {
				runCtx := services.WithComponent(cmd.Context(), "cli")
				records, err := store.ListResults(runCtx, runID)
				if err != nil {
					return err
				}

				results := make([]match.Result, 0, len(records))
				resolvedRun := ""
				for _, record := range records {
					resolvedRun = record.RunID
					if record.SyncState == session.SyncDone {
						continue
					}
					results = append(results, record.Result)
				}

				if resolvedRun != "" {
					runCtx = services.WithRunID(runCtx, resolvedRun)
				}
				engine := syncer.NewEngine(client, syncer.OptionsFromConfig(cfg.Sync), logger)
				outcome := engine.Run(runCtx, results)

				for _, eo := range outcome.Entries {
					switch eo.State {
					case syncer.StateSynced:
						if markErr := store.MarkSynced(runCtx, resolvedRun, eo.EntryID); markErr != nil {
							return markErr
						}
					case syncer.StateFailed:
						reason := ""
						if eo.Err != nil {
							reason = eo.Err.Error()
						}
						if markErr := store.MarkSyncFailed(runCtx, resolvedRun, eo.EntryID, reason); markErr != nil {
							return markErr
						}
					}
				}

				if err := ctx.withStats(func(statsStore *stats.Store) error {
					current, loadErr := statsStore.Load(runCtx)
					if loadErr != nil {
						return loadErr
					}
					return statsStore.Save(runCtx, syncer.ApplyStats(current, outcome, time.Now().UTC()))
				}); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Synced %d, failed %d", outcome.Synced, outcome.Failed)
				if outcome.Cancelled > 0 {
					fmt.Fprintf(out, ", cancelled %d", outcome.Cancelled)
				}
				fmt.Fprintf(out, " of %d eligible entries.\n", outcome.Synced+outcome.Failed+outcome.Cancelled)
				for _, eo := range outcome.Entries {
					if eo.State == syncer.StateFailed && eo.Err != nil {
						fmt.Fprintf(out, "  %s: %v\n", eo.EntryID, eo.Err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to sync (defaults to the latest run)")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangasync/internal/library"
	"mangasync/internal/match"
	"mangasync/internal/services"
	"mangasync/internal/session"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match <export.json>",
		Short: "Match a library export against the catalog and save the run for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			entries, err := library.LoadEntries(args[0])
			if err != nil {
				return fmt.Errorf("load library export: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Export contains no entries; nothing to match.")
				return nil
			}

			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}

			engine := match.NewEngine(client, match.PolicyFromConfig(cfg.Matching), logger)
			runCtx := services.WithComponent(cmd.Context(), "cli")
			results, err := engine.Run(runCtx, entries)
			if err != nil {
				return fmt.Errorf("match run: %w", err)
			}

			return ctx.withSession(func(store *session.Store) error {
				runID, saveErr := store.SaveRun(runCtx, results)
				if saveErr != nil {
					return fmt.Errorf("save match run: %w", saveErr)
				}
				records, listErr := store.ListResults(runCtx, runID)
				if listErr != nil {
					return listErr
				}

				out := cmd.OutOrStdout()
				renderResults(out, records)
				fmt.Fprintf(out, "Run %s: %d entries matched.\n", runID, len(records))
				fmt.Fprintln(out, "Review ambiguous entries with `mangasync results`, then run `mangasync sync`.")
				return nil
			})
		},
	}
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mangasync/internal/session"
)

func newSelectCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "select <entry-id> <candidate-id>",
		Short: "Manually select a candidate for an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid candidate id %q: %w", args[1], err)
			}
			return ctx.withSession(func(store *session.Store) error {
				record, selectErr := store.Select(cmd.Context(), runID, args[0], targetID)
				if selectErr != nil {
					return selectErr
				}
				selected, _ := record.Result.Selected()
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %s now maps to %q (target %d, manual).\n",
					args[0], selected.Candidate.Title, targetID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID (defaults to the latest run)")
	return cmd
}

func newSkipCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "skip <entry-id>",
		Short: "Exclude an entry from synchronization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(store *session.Store) error {
				if _, err := store.Skip(cmd.Context(), runID, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %s skipped; it will not be synced.\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID (defaults to the latest run)")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mangasync/internal/match"
	"mangasync/internal/session"
)

func newScoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "score <fixture.json>",
		Short:       "Replay a scoring fixture and print the confidence breakdown",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := match.LoadFixture(args[0])
			if err != nil {
				return err
			}
			renderBreakdown(cmd.OutOrStdout(), fixture.Replay())
			return nil
		},
	}
}

func newExportFixtureCommand(ctx *commandContext) *cobra.Command {
	var runID, outPath string

	cmd := &cobra.Command{
		Use:   "export-fixture <entry-id> <candidate-id>",
		Short: "Export an entry/candidate pair as a replayable scoring fixture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			targetID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid candidate id %q: %w", args[1], err)
			}

			return ctx.withSession(func(store *session.Store) error {
				record, getErr := store.Get(cmd.Context(), runID, args[0])
				if getErr != nil {
					return getErr
				}
				// Replay must reproduce the stored score, so the fixture
				// carries the weights the run was scored under, not the
				// currently configured ones. Rows saved before weights were
				// recorded fall back to config.
				weights := record.Result.Weights
				if weights == (match.Weights{}) {
					weights = match.PolicyFromConfig(cfg.Matching).Weights
				}

				var fixture match.Fixture
				found := false
				for _, sc := range record.Result.Candidates {
					if sc.Candidate.ID == targetID {
						fixture = match.Fixture{
							Entry:     record.Result.Entry,
							Candidate: sc.Candidate,
							Weights:   weights,
						}
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("entry %q has no candidate with target id %d", args[0], targetID)
				}

				target := outPath
				if target == "" {
					target = fmt.Sprintf("fixture-%s-%d.json", args[0], targetID)
				}
				if err := fixture.WriteFile(target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote fixture to %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (defaults to the latest run)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Destination path for the fixture")
	return cmd
}

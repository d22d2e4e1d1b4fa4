package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangasync/internal/catalog"
	"mangasync/internal/match"
	"mangasync/internal/session"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var minConfidence, maxConfidence float64
	var formats, genres, statuses []string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List the results of a match run with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := match.NewFilters()
			filters.MinConfidence = minConfidence
			filters.MaxConfidence = maxConfidence
			for _, f := range formats {
				filters.Formats = append(filters.Formats, catalog.Format(f))
			}
			filters.Genres = genres
			for _, s := range statuses {
				filters.Statuses = append(filters.Statuses, catalog.PublicationStatus(s))
			}

			return ctx.withSession(func(store *session.Store) error {
				records, err := store.ListResults(cmd.Context(), runID)
				if err != nil {
					return err
				}

				results := make([]match.Result, 0, len(records))
				for _, record := range records {
					results = append(results, record.Result)
				}
				kept := match.Apply(results, filters)

				keptIDs := make(map[string]struct{}, len(kept))
				for _, result := range kept {
					keptIDs[result.Entry.ID] = struct{}{}
				}
				filtered := make([]session.Record, 0, len(kept))
				for _, record := range records {
					if _, ok := keptIDs[record.Result.Entry.ID]; ok {
						filtered = append(filtered, record)
					}
				}

				out := cmd.OutOrStdout()
				if len(filtered) == 0 {
					fmt.Fprintln(out, "No results match the given filters.")
					return nil
				}
				renderResults(out, filtered)
				fmt.Fprintf(out, "%d of %d results shown.\n", len(filtered), len(records))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to list (defaults to the latest run)")
	cmd.Flags().Float64Var(&minConfidence, "min", 0, "Minimum confidence score")
	cmd.Flags().Float64Var(&maxConfidence, "max", 100, "Maximum confidence score")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Only show results whose selected candidate has one of these formats")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "Only show results whose selected candidate has at least one of these genres")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show results whose selected candidate has one of these publication statuses")

	return cmd
}

package match

import (
	"sort"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
)

// Resolve scores every candidate for the entry and classifies the outcome.
//
// The candidate list is ordered by score descending with ties broken by
// candidate ID ascending, so resolution is reproducible for a fixed input.
// Classification: below the floor threshold the entry is unmatched; a best
// and second-best score closer than the closeness margin (both at or above
// the floor) is ambiguous; anything else with a scored leader is matched,
// including leaders below the auto-accept threshold, which the UI
// de-emphasizes via the score itself.
func Resolve(entry library.SourceEntry, candidates []catalog.Candidate, policy Policy) Result {
	policy = policy.normalized()

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, ScoredCandidate{
			Candidate: candidate,
			Score:     Score(entry, candidate, policy.Weights),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score.Value != scored[j].Score.Value {
			return scored[i].Score.Value > scored[j].Score.Value
		}
		return scored[i].Candidate.ID < scored[j].Candidate.ID
	})

	status, selected := classify(scored, policy)
	return Result{
		Entry:      entry,
		Candidates: scored,
		SelectedID: selected,
		Status:     status,
		Weights:    policy.Weights,
	}
}

// classify maps a best-first scored candidate list to a status and selected
// candidate ID. A zero ID means no selection.
func classify(scored []ScoredCandidate, policy Policy) (Status, int64) {
	if len(scored) == 0 || scored[0].Score.Value < policy.FloorThreshold {
		return StatusUnmatched, 0
	}
	best := scored[0].Score.Value
	if len(scored) > 1 {
		second := scored[1].Score.Value
		if second >= policy.FloorThreshold && best-second < policy.ClosenessMargin {
			return StatusAmbiguous, scored[0].Candidate.ID
		}
	}
	return StatusMatched, scored[0].Candidate.ID
}

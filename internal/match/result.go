package match

import (
	"fmt"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
)

// Status classifies a match result for review and sync eligibility.
type Status string

const (
	// StatusMatched means a clear best candidate was selected automatically.
	StatusMatched Status = "matched"
	// StatusAmbiguous means the top two candidates scored too close to
	// auto-resolve; the top one is provisionally selected.
	StatusAmbiguous Status = "ambiguous"
	// StatusUnmatched means no candidate reached the floor threshold.
	StatusUnmatched Status = "unmatched"
	// StatusManual means the user overrode the selected candidate.
	StatusManual Status = "manual"
	// StatusSkipped means the user excluded the entry from sync.
	StatusSkipped Status = "skipped"
)

// ScoredCandidate pairs a catalog candidate with its confidence score.
type ScoredCandidate struct {
	Candidate catalog.Candidate `json:"candidate"`
	Score     MatchScore        `json:"score"`
}

// Result is the resolved outcome for one source entry: the candidate list
// sorted best-first, the selected candidate, and a status tag.
//
// Invariant: SelectedID names exactly one listed candidate whenever Status
// is not unmatched/skipped, and is zero otherwise.
type Result struct {
	Entry      library.SourceEntry `json:"entry"`
	Candidates []ScoredCandidate   `json:"candidates"`
	SelectedID int64               `json:"selected_id,omitempty"`
	Status     Status              `json:"status"`

	// Weights records the signal weights the candidates were scored under,
	// so a fixture exported later replays to the identical score even after
	// the configured weights change.
	Weights Weights `json:"weights"`
}

// Selected returns the currently selected candidate, if any.
func (r Result) Selected() (ScoredCandidate, bool) {
	if r.SelectedID == 0 {
		return ScoredCandidate{}, false
	}
	for _, sc := range r.Candidates {
		if sc.Candidate.ID == r.SelectedID {
			return sc, true
		}
	}
	return ScoredCandidate{}, false
}

// SyncEligible reports whether the result may be submitted to the
// synchronization engine.
func (r Result) SyncEligible() bool {
	switch r.Status {
	case StatusMatched, StatusAmbiguous, StatusManual:
		_, ok := r.Selected()
		return ok
	default:
		return false
	}
}

// Override selects a different candidate by target ID and transitions the
// result to manual. The candidate must be in the scored list; free-form
// selection would break the one-selected invariant.
func (r *Result) Override(targetID int64) error {
	if r.Status == StatusSkipped {
		return fmt.Errorf("entry %q is skipped; unskip before selecting", r.Entry.ID)
	}
	for _, sc := range r.Candidates {
		if sc.Candidate.ID == targetID {
			r.SelectedID = targetID
			r.Status = StatusManual
			return nil
		}
	}
	return fmt.Errorf("entry %q has no candidate with target id %d", r.Entry.ID, targetID)
}

// Skip excludes the entry from sync. The previous selection is cleared so
// the unmatched/skipped invariant holds.
func (r *Result) Skip() {
	r.Status = StatusSkipped
	r.SelectedID = 0
}

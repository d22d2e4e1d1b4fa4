package match

import (
	"math"
	"strings"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
	"mangasync/internal/textutil"
)

// Breakdown records the weighted contribution of each scoring signal on the
// 0-100 confidence scale. The contributions sum to the total score.
type Breakdown struct {
	Title    float64 `json:"title"`
	Format   float64 `json:"format"`
	Progress float64 `json:"progress"`
	Genre    float64 `json:"genre"`
	Year     float64 `json:"year"`
}

// MatchScore is the confidence estimate for one (entry, candidate) pair.
// Scoring is a pure function of its inputs: no clock, no randomness, no
// hidden state, so a fixture replay reproduces the identical value.
type MatchScore struct {
	Value        float64   `json:"value"`
	Breakdown    Breakdown `json:"breakdown"`
	MatchedTitle string    `json:"matched_title,omitempty"`
}

// Display returns the confidence rounded to one decimal for presentation.
// Ordering and threshold comparisons use the unrounded Value.
func (s MatchScore) Display() float64 {
	return math.Round(s.Value*10) / 10
}

// Score computes the weighted confidence that candidate is the correct
// target for entry.
func Score(entry library.SourceEntry, candidate catalog.Candidate, weights Weights) MatchScore {
	titleSim, matchedTitle := titleSimilarity(entry.Title, candidate)
	formatSim := formatAgreement(entry, candidate)
	progressSim := progressPlausibility(entry, candidate)
	genreSim := genreOverlap(entry.Genres, candidate.Genres)
	yearSim := yearProximity(entry.Year, candidate.Year)

	breakdown := Breakdown{
		Title:    titleSim * weights.Title,
		Format:   formatSim * weights.Format,
		Progress: progressSim * weights.Progress,
		Genre:    genreSim * weights.Genre,
		Year:     yearSim * weights.Year,
	}
	total := breakdown.Title + breakdown.Format + breakdown.Progress + breakdown.Genre + breakdown.Year

	return MatchScore{
		Value:        total,
		Breakdown:    breakdown,
		MatchedTitle: matchedTitle,
	}
}

// titleSimilarity returns the best similarity in [0,1] between the entry
// title and any of the candidate's titles, along with the candidate title
// that produced it. The metric blends token overlap (cosine over term
// frequencies) with a rune-level edit-distance ratio; exact equality after
// normalization scores 1.
func titleSimilarity(title string, candidate catalog.Candidate) (float64, string) {
	sourceNorm := textutil.NormalizeTitle(title)
	sourcePrint := textutil.NewFingerprint(sourceNorm)

	best := 0.0
	bestTitle := ""
	for _, candidateTitle := range candidate.AllTitles() {
		candidateNorm := textutil.NormalizeTitle(candidateTitle)
		var sim float64
		if sourceNorm != "" && sourceNorm == candidateNorm {
			sim = 1
		} else {
			tokenSim := textutil.CosineSimilarity(sourcePrint, textutil.NewFingerprint(candidateNorm))
			editSim := textutil.LevenshteinRatio(sourceNorm, candidateNorm)
			sim = 0.6*tokenSim + 0.4*editSim
		}
		if sim > best {
			best = sim
			bestTitle = candidateTitle
		}
	}
	return best, bestTitle
}

// formatAgreement scores how well the candidate's publication format fits
// the entry's observed progress. A one-shot cannot explain dozens of read
// chapters; serialized formats fit any progress. Unknown formats earn
// partial credit rather than a penalty.
func formatAgreement(entry library.SourceEntry, candidate catalog.Candidate) float64 {
	switch candidate.Format {
	case catalog.FormatUnknown:
		return 0.5
	case catalog.FormatOneShot:
		switch {
		case entry.ChaptersRead <= 1:
			return 1
		case entry.ChaptersRead <= 3:
			return 0.5
		default:
			return 0
		}
	default:
		return 1
	}
}

// progressPlausibility penalizes candidates whose known chapter count is
// exceeded by the entry's progress, which signals a wrong match. An unknown
// chapter count is not penalized.
func progressPlausibility(entry library.SourceEntry, candidate catalog.Candidate) float64 {
	if candidate.Status == catalog.PubNotYetReleased && entry.ChaptersRead > 0 {
		return 0
	}
	if candidate.Chapters <= 0 || entry.ChaptersRead <= candidate.Chapters {
		return 1
	}
	overshoot := float64(entry.ChaptersRead-candidate.Chapters) / float64(candidate.Chapters)
	if overshoot >= 1 {
		return 0
	}
	return 1 - overshoot
}

// genreOverlap returns the Jaccard overlap of the two genre sets, or 0.5
// when either side carries no genre information.
func genreOverlap(source, target []string) float64 {
	if len(source) == 0 || len(target) == 0 {
		return 0.5
	}
	sourceSet := make(map[string]struct{}, len(source))
	for _, g := range source {
		sourceSet[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}
	targetSet := make(map[string]struct{}, len(target))
	for _, g := range target {
		targetSet[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}
	intersection := 0
	for g := range sourceSet {
		if _, ok := targetSet[g]; ok {
			intersection++
		}
	}
	union := len(sourceSet) + len(targetSet) - intersection
	if union == 0 {
		return 0.5
	}
	return float64(intersection) / float64(union)
}

// yearProximity rewards release years that agree, with a short falloff.
// Missing years on either side are neutral.
func yearProximity(source, target int) float64 {
	if source <= 0 || target <= 0 {
		return 0.5
	}
	diff := source - target
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1
	case 1:
		return 0.7
	case 2:
		return 0.4
	default:
		return 0
	}
}

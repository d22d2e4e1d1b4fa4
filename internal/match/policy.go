package match

import "mangasync/internal/config"

// Weights distributes the 100-point confidence scale across scoring signals.
type Weights struct {
	Title    float64 `json:"title"`
	Format   float64 `json:"format"`
	Progress float64 `json:"progress"`
	Genre    float64 `json:"genre"`
	Year     float64 `json:"year"`
}

// Policy centralizes matching thresholds and tunables. Thresholds live on
// the same 0-100 scale as confidence scores.
type Policy struct {
	FloorThreshold  float64
	AcceptThreshold float64
	ClosenessMargin float64
	MaxCandidates   int
	Workers         int
	Weights         Weights
}

// DefaultPolicy returns the defaults documented in the sample configuration.
func DefaultPolicy() Policy {
	return Policy{
		FloorThreshold:  40,
		AcceptThreshold: 80,
		ClosenessMargin: 5,
		MaxCandidates:   8,
		Workers:         4,
		Weights: Weights{
			Title:    55,
			Format:   10,
			Progress: 10,
			Genre:    15,
			Year:     10,
		},
	}
}

// PolicyFromConfig builds a Policy from the matching configuration section.
func PolicyFromConfig(m config.Matching) Policy {
	return Policy{
		FloorThreshold:  m.FloorThreshold,
		AcceptThreshold: m.AcceptThreshold,
		ClosenessMargin: m.ClosenessMargin,
		MaxCandidates:   m.MaxCandidates,
		Workers:         m.Workers,
		Weights: Weights{
			Title:    m.TitleWeight,
			Format:   m.FormatWeight,
			Progress: m.ProgressWeight,
			Genre:    m.GenreWeight,
			Year:     m.YearWeight,
		},
	}.normalized()
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.FloorThreshold < 0 || p.FloorThreshold > 100 {
		p.FloorThreshold = d.FloorThreshold
	}
	if p.AcceptThreshold <= 0 || p.AcceptThreshold > 100 || p.AcceptThreshold < p.FloorThreshold {
		p.AcceptThreshold = d.AcceptThreshold
	}
	if p.ClosenessMargin < 0 || p.ClosenessMargin > 100 {
		p.ClosenessMargin = d.ClosenessMargin
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = d.MaxCandidates
	}
	if p.Workers <= 0 {
		p.Workers = d.Workers
	}
	sum := p.Weights.Title + p.Weights.Format + p.Weights.Progress + p.Weights.Genre + p.Weights.Year
	if sum <= 0 {
		p.Weights = d.Weights
	}
	return p
}

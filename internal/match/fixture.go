package match

import (
	"encoding/json"
	"fmt"
	"os"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
)

// Fixture captures everything the scorer consumes for one (entry, candidate)
// pair. Replaying a fixture outside the matching run reproduces the
// identical MatchScore, breakdown included, which is what the score debug
// command relies on.
type Fixture struct {
	Entry     library.SourceEntry `json:"entry"`
	Candidate catalog.Candidate   `json:"candidate"`
	Weights   Weights             `json:"weights"`
}

// Replay recomputes the confidence score from the fixture inputs.
func (f Fixture) Replay() MatchScore {
	return Score(f.Entry, f.Candidate, f.Weights)
}

// WriteFile serializes the fixture as indented JSON.
func (f Fixture) WriteFile(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// LoadFixture reads a fixture previously written with WriteFile.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fixture, nil
}

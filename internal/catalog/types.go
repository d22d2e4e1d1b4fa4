package catalog

// Format enumerates publication formats known to the target catalog.
type Format string

const (
	FormatManga   Format = "manga"
	FormatOneShot Format = "one_shot"
	FormatManhwa  Format = "manhwa"
	FormatManhua  Format = "manhua"
	FormatNovel   Format = "novel"
	FormatUnknown Format = ""
)

// PublicationStatus enumerates a catalog item's release state.
type PublicationStatus string

const (
	PubReleasing      PublicationStatus = "releasing"
	PubFinished       PublicationStatus = "finished"
	PubHiatus         PublicationStatus = "hiatus"
	PubCancelled      PublicationStatus = "cancelled"
	PubNotYetReleased PublicationStatus = "not_yet_released"
	PubUnknown        PublicationStatus = ""
)

// Candidate is one target-catalog item returned by a search. Retrieved fresh
// per matching run.
type Candidate struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	AlternateTitles []string          `json:"alternate_titles,omitempty"`
	Format          Format            `json:"format,omitempty"`
	Status          PublicationStatus `json:"status,omitempty"`
	Genres          []string          `json:"genres,omitempty"`
	Chapters        int               `json:"chapters,omitempty"`
	Volumes         int               `json:"volumes,omitempty"`
	Year            int               `json:"year,omitempty"`
}

// AllTitles returns the canonical title followed by known alternates,
// skipping empties.
func (c Candidate) AllTitles() []string {
	titles := make([]string, 0, 1+len(c.AlternateTitles))
	if c.Title != "" {
		titles = append(titles, c.Title)
	}
	for _, alt := range c.AlternateTitles {
		if alt != "" {
			titles = append(titles, alt)
		}
	}
	return titles
}

// EntryUpdate carries the user state pushed to the target catalog for one
// library entry. Updates are idempotent on the target side: re-sending an
// already-applied update is a no-op.
type EntryUpdate struct {
	Status       string  `json:"status"`
	ChaptersRead int     `json:"progress"`
	VolumesRead  int     `json:"progress_volumes,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

package model

import "time"

// DefaultEvidenceSource is used when the knowledge source does not name itself
const DefaultEvidenceSource = "wikipedia"

// Snippet is a raw search hit returned by an evidence gateway
type Snippet struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet"`
}

// EvidenceItem is a scored snippet retained for a claim
type EvidenceItem struct {
	ID        string    `json:"-" db:"id"`
	ClaimID   string    `json:"-" db:"claim_id"`
	Source    string    `json:"source" db:"source"`
	Title     string    `json:"title" db:"title"`
	URL       string    `json:"url" db:"url"`
	Snippet   string    `json:"snippet" db:"snippet"`
	Score     float64   `json:"score" db:"score"`
	Rank      int       `json:"-" db:"rank"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// NewEvidenceItem attaches a similarity score to a gateway snippet
func NewEvidenceItem(s Snippet, score float64) EvidenceItem {
	source := s.Source
	if source == "" {
		source = DefaultEvidenceSource
	}
	return EvidenceItem{
		Source:  source,
		Title:   s.Title,
		URL:     s.URL,
		Snippet: s.Snippet,
		Score:   score,
	}
}

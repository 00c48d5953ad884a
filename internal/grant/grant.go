package grant

import (
	"strings"
	"time"
)

// Grant represents one grant, scholarship or fellowship listing
type Grant struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Source      string `json:"source,omitempty"`
	Niche       string `json:"niche,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Amount      Amount `json:"amount,omitempty"`
	Eligibility string `json:"eligibility,omitempty"`
	Summary     string `json:"summary,omitempty"`
	TLDR        string `json:"tldr,omitempty"` // One-line summary from the model path
	FoundAt     string `json:"found_at,omitempty"`
	EnrichedAt  string `json:"enriched_at,omitempty"`
}

// Resource is a curated free or low-cost program listed on the resources page
type Resource struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type,omitempty"`
	Coverage    string   `json:"coverage,omitempty"`
	Services    []string `json:"services,omitempty"`
	Eligibility string   `json:"eligibility,omitempty"`
	Link        string   `json:"link"`
	Highlight   bool     `json:"highlight,omitempty"`
}

// Source is a listing page the scraper visits
type Source struct {
	Niche string `json:"niche" yaml:"niche" mapstructure:"niche"`
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	URL   string `json:"url" yaml:"url" mapstructure:"url"`
}

// Rolling is the deadline value used for open-ended application windows
const Rolling = "Rolling"

// Timestamp formats t the way found_at and enriched_at are written
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// New creates a raw grant as discovered on a listing page
func New(src Source, title, link string, foundAt time.Time) *Grant {
	return &Grant{
		Title:   title,
		Link:    link,
		Source:  src.Name,
		Niche:   src.Niche,
		FoundAt: Timestamp(foundAt),
	}
}

// Key returns the dedup identity: normalized title plus source
func (g *Grant) Key() string {
	return strings.ToLower(strings.TrimSpace(g.Title)) + "|" + g.Source
}

// HasAmount reports whether a usable amount is known
func (g *Grant) HasAmount() bool {
	return g.Amount.Present()
}

// IsRolling reports whether the grant accepts applications continuously
func (g *Grant) IsRolling() bool {
	return strings.EqualFold(strings.TrimSpace(g.Deadline), Rolling)
}

// VerifiedDate returns the date portion of EnrichedAt, or "" if unknown
func (g *Grant) VerifiedDate() string {
	if len(g.EnrichedAt) >= 10 {
		return g.EnrichedAt[:10]
	}
	return g.EnrichedAt
}

// Clone returns a copy of the grant that can be mutated independently
func (g *Grant) Clone() *Grant {
	c := *g
	return &c
}

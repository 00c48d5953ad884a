package curate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

// MinTitleLength is the shortest title kept by FilterJunk
const MinTitleLength = 5

// unknownNiche sorts grants without a niche last
const unknownNiche = "ZZZ"

// junkTitles are navigation and heading links that scraping picks up
var junkTitles = map[string]bool{
	"funding opportunities":     true,
	"view awardees":             true,
	"awards and honors":         true,
	"aotf award recipients":     true,
	"start a fundraiser":        true,
	"how to apply":              true,
	"external research funding": true,
	"pte awards":                true,
	"available scholarships":    true,
	"grants":                    true,
	"scholarships":              true,
	"apply now":                 true,
}

// Report counts records through each curation step
type Report struct {
	Enriched int
	Curated  int
	Merged   int
	Junk     int
	Dupes    int
	Final    int
}

// Merge appends curated records to the enriched ones. Curated records
// missing found_at or enriched_at get the given timestamp; values that are
// already set are never overwritten. Enriched records are not modified.
func Merge(enriched, curated []*grant.Grant, timestamp string) []*grant.Grant {
	merged := make([]*grant.Grant, 0, len(enriched)+len(curated))
	merged = append(merged, enriched...)

	for _, g := range curated {
		c := g.Clone()
		if c.FoundAt == "" {
			c.FoundAt = timestamp
		}
		if c.EnrichedAt == "" {
			c.EnrichedAt = timestamp
		}
		merged = append(merged, c)
	}

	return merged
}

// IsJunk reports whether a record is navigation or heading noise rather
// than an actual grant
func IsJunk(g *grant.Grant) bool {
	title := strings.ToLower(strings.TrimSpace(g.Title))
	if junkTitles[title] {
		return true
	}
	if utf8.RuneCountInString(g.Title) < MinTitleLength {
		return true
	}
	link := strings.TrimSpace(g.Link)
	return link == "" || strings.HasPrefix(link, "#")
}

// FilterJunk removes junk records, preserving order
func FilterJunk(grants []*grant.Grant) []*grant.Grant {
	filtered := make([]*grant.Grant, 0, len(grants))
	for _, g := range grants {
		if !IsJunk(g) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// Dedupe keeps the first record for each normalized title and source
func Dedupe(grants []*grant.Grant) []*grant.Grant {
	seen := make(map[string]bool, len(grants))
	unique := make([]*grant.Grant, 0, len(grants))
	for _, g := range grants {
		key := g.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, g)
	}
	return unique
}

// Sort orders grants for display: those with a known amount first, then by
// niche (missing niches last), then by title. Equal records keep their
// relative order. The slice is sorted in place.
func Sort(grants []*grant.Grant) {
	sort.SliceStable(grants, func(i, j int) bool {
		a, b := grants[i], grants[j]
		if ra, rb := amountRank(a), amountRank(b); ra != rb {
			return ra < rb
		}
		if na, nb := nicheKey(a), nicheKey(b); na != nb {
			return na < nb
		}
		return a.Title < b.Title
	})
}

func amountRank(g *grant.Grant) int {
	if g.HasAmount() {
		return 0
	}
	return 1
}

func nicheKey(g *grant.Grant) string {
	if g.Niche == "" {
		return unknownNiche
	}
	return g.Niche
}

// Run merges, filters, dedupes and sorts
func Run(enriched, curated []*grant.Grant, timestamp string) ([]*grant.Grant, Report) {
	r := Report{Enriched: len(enriched), Curated: len(curated)}

	merged := Merge(enriched, curated, timestamp)
	r.Merged = len(merged)

	filtered := FilterJunk(merged)
	r.Junk = len(merged) - len(filtered)

	unique := Dedupe(filtered)
	r.Dupes = len(filtered) - len(unique)

	Sort(unique)
	r.Final = len(unique)

	return unique, r
}

// Package filter narrows a grant list for the list command.
//
// Criteria combine with AND; within Niches any one match is enough:
//   - Niches (case-insensitive exact match)
//   - Query (case-insensitive substring of title, summary, TL;DR, eligibility or source)
//   - HasAmount (a known amount)
//   - RollingOnly (deadline is "Rolling")
//   - MinAmount (numeric amount at least this large)
//   - DeadlineFrom / DeadlineTo (parseable deadline within the range, inclusive)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Niches = []string{"SLP"}
//	f.HasAmount = true
//	matching := f.Apply(grants)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

// Filter represents grant filtering criteria
type Filter struct {
	Niches      []string `json:"niches,omitempty"`
	Query       string   `json:"query,omitempty"`
	HasAmount   bool     `json:"has_amount,omitempty"`
	RollingOnly bool     `json:"rolling_only,omitempty"`
	MinAmount   int      `json:"min_amount,omitempty"`

	// Deadline range filtering; grants without a parseable deadline never match
	DeadlineFrom *time.Time `json:"deadline_from,omitempty"`
	DeadlineTo   *time.Time `json:"deadline_to,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all grants until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Niches: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all grants.
func (f *Filter) IsEmpty() bool {
	return len(f.Niches) == 0 &&
		strings.TrimSpace(f.Query) == "" &&
		!f.HasAmount &&
		!f.RollingOnly &&
		f.MinAmount <= 0 &&
		f.DeadlineFrom == nil &&
		f.DeadlineTo == nil
}

// Matches checks if a grant matches all active filter criteria.
// An empty filter matches all grants.
func (f *Filter) Matches(g *grant.Grant) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Niches) > 0 {
		matched := false
		for _, niche := range f.Niches {
			if strings.EqualFold(g.Niche, niche) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" && !containsQuery(g, q) {
		return false
	}

	if f.HasAmount && !g.HasAmount() {
		return false
	}

	if f.RollingOnly && !g.IsRolling() {
		return false
	}

	if f.MinAmount > 0 {
		n, ok := g.Amount.Int()
		if !ok || n < f.MinAmount {
			return false
		}
	}

	if f.DeadlineFrom != nil || f.DeadlineTo != nil {
		deadline := g.DeadlineTime()
		if deadline.IsZero() {
			return false
		}
		if f.DeadlineFrom != nil && deadline.Before(*f.DeadlineFrom) {
			return false
		}
		if f.DeadlineTo != nil && deadline.After(*f.DeadlineTo) {
			return false
		}
	}

	return true
}

func containsQuery(g *grant.Grant, q string) bool {
	for _, field := range []string{g.Title, g.Summary, g.TLDR, g.Eligibility, g.Source} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply applies the filter to a list of grants and returns only matching grants.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(grants []*grant.Grant) []*grant.Grant {
	if f.IsEmpty() {
		return grants
	}

	filtered := make([]*grant.Grant, 0, len(grants))
	for _, g := range grants {
		if f.Matches(g) {
			filtered = append(filtered, g)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Returns "No active filters" if the filter is empty.
// Format: "Niches: SLP, PT | Query: research | Has amount"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Niches) > 0 {
		parts = append(parts, fmt.Sprintf("Niches: %s", strings.Join(f.Niches, ", ")))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, fmt.Sprintf("Query: %s", q))
	}

	if f.HasAmount {
		parts = append(parts, "Has amount")
	}

	if f.RollingOnly {
		parts = append(parts, "Rolling only")
	}

	if f.MinAmount > 0 {
		parts = append(parts, fmt.Sprintf("Min amount: $%d", f.MinAmount))
	}

	if f.DeadlineFrom != nil {
		parts = append(parts, fmt.Sprintf("Deadline from: %s", f.DeadlineFrom.Format("Jan 2, 2006")))
	}

	if f.DeadlineTo != nil {
		parts = append(parts, fmt.Sprintf("Deadline to: %s", f.DeadlineTo.Format("Jan 2, 2006")))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		Query:       f.Query,
		HasAmount:   f.HasAmount,
		RollingOnly: f.RollingOnly,
		MinAmount:   f.MinAmount,
	}

	if f.DeadlineFrom != nil {
		df := *f.DeadlineFrom
		clone.DeadlineFrom = &df
	}

	if f.DeadlineTo != nil {
		dt := *f.DeadlineTo
		clone.DeadlineTo = &dt
	}

	clone.Niches = make([]string, len(f.Niches))
	copy(clone.Niches, f.Niches)

	return clone
}

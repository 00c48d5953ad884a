package grant

import (
	"strings"
	"time"
)

// deadlineLayouts covers the shapes the extractor emits plus the ISO form the
// model path is asked for
var deadlineLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
}

// ParseDeadline attempts to parse deadline text into a time.Time.
// Returns time.Time{} (zero value) for "Rolling", empty or unparseable text.
func ParseDeadline(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, Rolling) {
		return time.Time{}
	}

	// "Sept 3, 2026" is common on foundation pages
	text = strings.Replace(text, "Sept ", "Sep ", 1)

	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	return time.Time{}
}

// DeadlineTime parses the grant's deadline
func (g *Grant) DeadlineTime() time.Time {
	return ParseDeadline(g.Deadline)
}

// IsClosed checks if the grant's deadline has passed relative to now.
// Returns false if the date cannot be parsed (safer default).
func (g *Grant) IsClosed(now time.Time) bool {
	d := g.DeadlineTime()
	if d.IsZero() {
		return false
	}
	// The deadline day itself is still open
	return d.AddDate(0, 0, 1).Before(now)
}

// IsWithinDays checks if the deadline falls within the next N days.
// Returns true if days <= 0 (feature disabled) or the date is unparseable.
func (g *Grant) IsWithinDays(now time.Time, days int) bool {
	if days <= 0 {
		return true
	}
	d := g.DeadlineTime()
	if d.IsZero() {
		return true
	}
	return !d.Before(now.Truncate(24*time.Hour)) && d.Before(now.AddDate(0, 0, days))
}

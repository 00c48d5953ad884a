package site

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

const (
	// CardSummaryWidth bounds the summary shown on an index card
	CardSummaryWidth = 120

	// DescriptionLength bounds the meta description of a detail page
	DescriptionLength = 155

	ellipsis = "..."
)

// Placeholders for absent fields
const (
	AmountUnknown      = "See details"
	DeadlineUnknown    = "Not specified"
	SummaryUnknown     = "Visit the source for full details."
	EligibilityUnknown = "See the official page for requirements."
	SourceUnknown      = "Unknown"
	VerifiedUnknown    = "Recently"
	ResourceType       = "Resource"
	ResourceEligible   = "See website"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a whole-dollar amount as "$25,000". Free-form amounts
// such as "Up to $5k" are shown unchanged.
func FormatAmount(a grant.Amount) string {
	if !a.Present() {
		return AmountUnknown
	}
	if n, ok := a.Int(); ok {
		return printer.Sprintf("$%d", n)
	}
	return strings.TrimSpace(string(a))
}

// truncateWidth shortens s to at most width display cells, ending in "..."
// when anything was cut
func truncateWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// truncateRunes cuts s to n runes without adding a marker
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

type badge struct {
	Label string
	Class string
}

// deadlineBadge returns nil when the grant has no deadline text
func deadlineBadge(g *grant.Grant, closed bool) *badge {
	switch {
	case strings.TrimSpace(g.Deadline) == "":
		return nil
	case g.IsRolling():
		return &badge{Label: grant.Rolling, Class: "bg-green-100 text-green-800"}
	case closed:
		return &badge{Label: "Closed", Class: "bg-gray-200 text-gray-600"}
	default:
		return &badge{Label: g.Deadline, Class: "bg-yellow-100 text-yellow-800"}
	}
}

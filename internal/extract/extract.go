package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/grantflow/internal/grant"
	"github.com/pfrederiksen/grantflow/internal/logger"
)

// DefaultMaxModelChars is how much normalized text is sent to the model
const DefaultMaxModelChars = 3000

// Fields holds everything extracted from one page. Empty means not found.
type Fields struct {
	Deadline    string
	Amount      grant.Amount
	Eligibility string
	Summary     string
	TLDR        string
}

// Empty reports whether no field was found
func (f Fields) Empty() bool {
	return f.Deadline == "" && !f.Amount.Present() && f.Eligibility == "" &&
		f.Summary == "" && f.TLDR == ""
}

// Found lists the names of the fields that were found, for logging
func (f Fields) Found() []string {
	var found []string
	if f.Deadline != "" {
		found = append(found, "deadline")
	}
	if f.Amount.Present() {
		found = append(found, "amount")
	}
	if f.Eligibility != "" {
		found = append(found, "eligibility")
	}
	if f.Summary != "" {
		found = append(found, "summary")
	}
	if f.TLDR != "" {
		found = append(found, "tldr")
	}
	return found
}

// ModelFields is what a generative model returns for a page
type ModelFields struct {
	Deadline    string
	Amount      grant.Amount
	Eligibility string
	TLDR        string
}

// Model extracts fields from normalized page text
type Model interface {
	Extract(ctx context.Context, text string) (ModelFields, error)
}

// Extractor runs the rule chains and, when configured, the model
type Extractor struct {
	model         Model
	maxModelChars int
}

// Option configures an Extractor
type Option func(*Extractor)

// WithModel enables the model path
func WithModel(m Model) Option {
	return func(e *Extractor) {
		e.model = m
	}
}

// WithMaxModelChars sets how many characters of text the model receives
func WithMaxModelChars(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxModelChars = n
		}
	}
}

// New creates an Extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{maxModelChars: DefaultMaxModelChars}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasModel reports whether the model path is enabled
func (e *Extractor) HasModel() bool {
	return e.model != nil
}

// Extract reads all fields from doc. Boilerplate elements are removed from
// doc first, so the summary never comes from navigation or footers.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document) Fields {
	text := Normalize(doc)

	f := Fields{
		Deadline:    Deadline(text),
		Amount:      Amount(text),
		Eligibility: Eligibility(text),
		Summary:     Summary(doc),
	}

	if e.model != nil {
		e.applyModel(ctx, text, &f)
	}

	return f
}

// applyModel fills fields the rules left empty. Model failures are logged
// and otherwise ignored.
func (e *Extractor) applyModel(ctx context.Context, text string, f *Fields) {
	mf, err := e.model.Extract(ctx, truncateRunes(text, e.maxModelChars))
	if err != nil {
		logger.Warn("Model extraction failed", logger.Fields{
			"chars": len(text),
		}, err)
		return
	}

	if f.Deadline == "" {
		f.Deadline = strings.TrimSpace(mf.Deadline)
	}
	if !f.Amount.Present() && mf.Amount.Present() {
		f.Amount = mf.Amount
	}
	if f.Eligibility == "" {
		f.Eligibility = truncateRunes(strings.TrimSpace(mf.Eligibility), MaxEligibilityRunes)
	}
	f.TLDR = strings.TrimSpace(mf.TLDR)
}

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/grantflow/internal/extract"
	"github.com/pfrederiksen/grantflow/internal/fetch"
	"github.com/pfrederiksen/grantflow/internal/grant"
	"github.com/pfrederiksen/grantflow/internal/logger"
)

// Status is the result of enriching one grant
type Status string

const (
	// StatusEnriched means at least one field was found
	StatusEnriched Status = "enriched"
	// StatusEmpty means the page was read but nothing was found
	StatusEmpty Status = "empty"
	// StatusFailed means the page could not be fetched or parsed
	StatusFailed Status = "failed"
)

// Fetcher retrieves a page
type Fetcher interface {
	Get(ctx context.Context, rawURL string) fetch.Result
}

// Outcome records what happened to one grant
type Outcome struct {
	Title  string
	Link   string
	Status Status
	Found  []string
	Err    error
}

// Summary counts outcomes by status
type Summary struct {
	Total    int
	Enriched int
	Empty    int
	Failed   int
}

// Enricher fetches detail pages and extracts fields from them
type Enricher struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	now       func() time.Time
}

// New creates an Enricher
func New(f Fetcher, x *extract.Extractor) *Enricher {
	return &Enricher{
		fetcher:   f,
		extractor: x,
		now:       time.Now,
	}
}

// Enrich updates grants in place and returns one Outcome per grant, in
// order. It stops early only when ctx is canceled.
func (e *Enricher) Enrich(ctx context.Context, grants []*grant.Grant) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(grants))
	total := len(grants)

	for i, g := range grants {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		logger.Info("Enriching grant", logger.Fields{
			"progress": fmt.Sprintf("%d/%d", i+1, total),
			"title":    truncate(g.Title, 60),
		})

		start := time.Now()
		out := e.EnrichOne(ctx, g)
		logger.RecordTiming("enrich.grant_duration", time.Since(start))
		logger.IncrCounter("enrich." + string(out.Status))

		switch out.Status {
		case StatusFailed:
			logger.Warn("Could not enrich grant", logger.Fields{
				"title": g.Title,
				"link":  g.Link,
			}, out.Err)
		case StatusEmpty:
			logger.Info("No structured data found", logger.Fields{"title": g.Title})
		default:
			logger.Info("Extracted fields", logger.Fields{
				"title": g.Title,
				"found": out.Found,
			})
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// EnrichOne fetches and extracts a single grant. Only fields that were
// found overwrite the grant's existing values.
func (e *Enricher) EnrichOne(ctx context.Context, g *grant.Grant) Outcome {
	out := Outcome{Title: g.Title, Link: g.Link}

	res := e.fetcher.Get(ctx, g.Link)
	if !res.OK() {
		out.Status = StatusFailed
		out.Err = res.Err
		return out
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("parsing HTML: %w", err)
		return out
	}

	fields := e.extractor.Extract(ctx, doc)
	apply(g, fields)
	g.EnrichedAt = grant.Timestamp(e.now())

	out.Found = fields.Found()
	if fields.Empty() {
		out.Status = StatusEmpty
	} else {
		out.Status = StatusEnriched
	}
	return out
}

func apply(g *grant.Grant, f extract.Fields) {
	if f.Deadline != "" {
		g.Deadline = f.Deadline
	}
	if f.Amount.Present() {
		g.Amount = f.Amount
	}
	if f.Eligibility != "" {
		g.Eligibility = f.Eligibility
	}
	if f.Summary != "" {
		g.Summary = f.Summary
	}
	if f.TLDR != "" {
		g.TLDR = f.TLDR
	}
}

// Summarize counts outcomes by status
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusEnriched:
			s.Enriched++
		case StatusEmpty:
			s.Empty++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

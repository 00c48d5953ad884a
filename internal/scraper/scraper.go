package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/grantflow/internal/fetch"
	"github.com/pfrederiksen/grantflow/internal/grant"
	"github.com/pfrederiksen/grantflow/internal/logger"
)

const (
	MinTitleLength = 5
	MaxTitleLength = 100
)

// Keywords mark anchor text as a likely grant title. Matching is case-sensitive.
var Keywords = []string{"Grant", "Scholarship", "Award", "Fellowship", "Fund", "Apply"}

// Fetcher retrieves a page
type Fetcher interface {
	Get(ctx context.Context, rawURL string) fetch.Result
}

// Scraper handles fetching and parsing grant listing pages
type Scraper struct {
	fetcher Fetcher
	now     func() time.Time
}

// Report summarizes a scrape run
type Report struct {
	Sources int
	Failed  int
	Found   int
}

// New creates a new Scraper instance
func New(f Fetcher) *Scraper {
	return &Scraper{
		fetcher: f,
		now:     time.Now,
	}
}

// ScrapeSource fetches one source page and returns its candidate grants
func (s *Scraper) ScrapeSource(ctx context.Context, src grant.Source) ([]*grant.Grant, error) {
	res := s.fetcher.Get(ctx, src.URL)
	if !res.OK() {
		return nil, res.Err
	}

	grants, err := parseListing(bytes.NewReader(res.Body), src, s.now())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name, err)
	}
	return grants, nil
}

// ScrapeAll visits sources in order. A source that fails is logged and
// skipped; only a canceled context stops the run.
func (s *Scraper) ScrapeAll(ctx context.Context, sources []grant.Source) ([]*grant.Grant, Report, error) {
	var report Report
	all := make([]*grant.Grant, 0)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return all, report, err
		}
		report.Sources++

		logger.Info("Scanning source", logger.Fields{
			"niche":  src.Niche,
			"source": src.Name,
			"url":    src.URL,
		})

		start := time.Now()
		grants, err := s.ScrapeSource(ctx, src)
		logger.RecordTiming("scrape.source_duration", time.Since(start))
		if err != nil {
			report.Failed++
			logger.IncrCounter("scrape.sources_failed")
			logger.Warn("Source failed, skipping", logger.Fields{
				"source": src.Name,
				"url":    src.URL,
			}, err)
			continue
		}

		report.Found += len(grants)
		logger.AddCounter("scrape.grants_found", int64(len(grants)))
		logger.Info("Found potential opportunities", logger.Fields{
			"source": src.Name,
			"count":  len(grants),
		})
		all = append(all, grants...)
	}

	return all, report, nil
}

// parseListing extracts candidate grants from a listing page
func parseListing(r io.Reader, src grant.Source, now time.Time) ([]*grant.Grant, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base := baseURL(src.URL)
	grants := make([]*grant.Grant, 0)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := collapseSpace(a.Text())
		if !isCandidate(text) {
			return
		}
		href, _ := a.Attr("href")
		grants = append(grants, grant.New(src, text, resolveHref(base, href), now))
	})

	return grants, nil
}

// isCandidate applies the keyword and length heuristic to anchor text
func isCandidate(text string) bool {
	n := utf8.RuneCountInString(text)
	if n <= MinTitleLength || n >= MaxTitleLength {
		return false
	}
	for _, k := range Keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// baseURL returns scheme://host of the source URL, or nil if it has no host
func baseURL(sourceURL string) *url.URL {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}

// resolveHref prefixes root-relative links with the source host. Other
// hrefs, including page-relative ones and fragments, are kept as written.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || !strings.HasPrefix(href, "/") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return base.Scheme + ":" + href
	}
	return base.Scheme + "://" + base.Host + href
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

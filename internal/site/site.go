package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/grantflow/internal/calendar"
	"github.com/pfrederiksen/grantflow/internal/config"
	"github.com/pfrederiksen/grantflow/internal/grant"
)

// Document paths relative to the output directory
const (
	IndexPath     = "index.html"
	ResourcesPath = "resources.html"
	SitemapPath   = "sitemap.xml"
	RobotsPath    = "robots.txt"
	DeadlinesPath = "deadlines.ics"
	GrantsDir     = "grants"
)

// ErrSlugMismatch is returned when pages and slugs differ in length
var ErrSlugMismatch = errors.New("every grant needs exactly one slug")

//go:embed templates/*.html
var templateFS embed.FS

var templates = map[string]*template.Template{
	IndexPath:     parsePage("index.html"),
	"grant":       parsePage("grant.html"),
	ResourcesPath: parsePage("resources.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// Document is one rendered file
type Document struct {
	Path string
	Body []byte
}

// Page is a curated grant with its assigned slug
type Page struct {
	Grant *grant.Grant
	Slug  string
}

// NewPages pairs grants with the slugs assigned to them, in order
func NewPages(grants []*grant.Grant, slugs []string) ([]Page, error) {
	if len(grants) != len(slugs) {
		return nil, fmt.Errorf("%w: %d grants, %d slugs", ErrSlugMismatch, len(grants), len(slugs))
	}
	pages := make([]Page, len(grants))
	for i, g := range grants {
		pages[i] = Page{Grant: g, Slug: slugs[i]}
	}
	return pages, nil
}

// Renderer builds the site documents
type Renderer struct {
	cfg     *config.Config
	siteURL string
	host    string
	now     time.Time
}

// NewRenderer creates a renderer. now drives the "Closed" badges, the
// footer year and the calendar timestamps.
func NewRenderer(cfg *config.Config, now time.Time) *Renderer {
	siteURL := cfg.SiteURL()
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &Renderer{cfg: cfg, siteURL: siteURL, host: host, now: now}
}

// layout holds what every HTML page shares
type layout struct {
	Brand        string
	Root         string
	Title        string
	Description  string
	OGTitle      string
	OGType       string
	Canonical    string
	Active       string
	Year         int
	HasResources bool
}

type nicheStat struct {
	Niche string
	Meta  config.NicheMeta
	Count int
}

type card struct {
	Slug        string
	Title       string
	TitleLower  string
	Niche       string
	Meta        config.NicheMeta
	Source      string
	Amount      string
	Blurb       string
	Eligibility string
	Link        string
	Badge       *badge
}

type indexData struct {
	layout
	Updated     string
	Total       int
	WithAmounts int
	HasCalendar bool
	Stats       []nicheStat
	Cards       []card
}

type grantData struct {
	layout
	Slug        string
	GrantTitle  string
	Meta        config.NicheMeta
	TLDR        string
	Amount      string
	Deadline    string
	Source      string
	Summary     string
	Eligibility string
	Link        string
	Verified    string
	HasCalendar bool
}

type resourceCard struct {
	Title       string
	Description string
	Type        string
	Coverage    string
	Services    string
	Eligibility string
	Link        string
	Highlight   bool
}

type resourcesData struct {
	layout
	Resources []resourceCard
}

// Render produces every document of the site. Pages are rendered in the
// given order; absent optional fields fall back to placeholders.
func (r *Renderer) Render(pages []Page, resources []grant.Resource) ([]Document, error) {
	hasResources := len(resources) > 0
	docs := make([]Document, 0, 2*len(pages)+5)

	var entries []calendar.Entry
	dated := make(map[string]bool, len(pages))
	for _, p := range pages {
		ev := r.event(p.Slug)
		ics, ok := calendar.GenerateDeadlineICS(p.Grant, ev, r.cfg.Site.Brand, r.now)
		if !ok {
			continue
		}
		dated[p.Slug] = true
		entries = append(entries, calendar.Entry{Grant: p.Grant, Event: ev})
		docs = append(docs, Document{Path: grantPath(p.Slug, ".ics"), Body: []byte(ics)})
	}

	index, err := r.renderIndex(pages, hasResources, len(entries) > 0)
	if err != nil {
		return nil, err
	}
	docs = append(docs, Document{Path: IndexPath, Body: index})

	slugs := make([]string, 0, len(pages))
	for _, p := range pages {
		body, err := r.renderGrant(p, hasResources, dated[p.Slug])
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Path: grantPath(p.Slug, ".html"), Body: body})
		slugs = append(slugs, p.Slug)
	}

	if hasResources {
		body, err := r.renderResources(resources)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Path: ResourcesPath, Body: body})
	}

	if ics := calendar.GenerateDeadlinesICS(entries, r.cfg.Site.Brand, r.cfg.Site.Brand+" deadlines", r.now); ics != "" {
		docs = append(docs, Document{Path: DeadlinesPath, Body: []byte(ics)})
	}

	sitemap, err := buildSitemap(r.siteURL, slugs, hasResources)
	if err != nil {
		return nil, err
	}
	docs = append(docs,
		Document{Path: SitemapPath, Body: sitemap},
		Document{Path: RobotsPath, Body: buildRobots(r.siteURL)},
	)

	return docs, nil
}

func (r *Renderer) event(slug string) calendar.Event {
	return calendar.Event{
		UID:     slug + "@" + r.host,
		PageURL: r.siteURL + "/" + grantPath(slug, ".html"),
	}
}

func (r *Renderer) base(root, active string, hasResources bool) layout {
	return layout{
		Brand:        r.cfg.Site.Brand,
		Root:         root,
		OGType:       "website",
		Active:       active,
		Year:         r.now.Year(),
		HasResources: hasResources,
	}
}

func (r *Renderer) renderIndex(pages []Page, hasResources, hasCalendar bool) ([]byte, error) {
	data := indexData{
		layout:      r.base("", "grants", hasResources),
		Updated:     r.now.Format("January 02, 2006"),
		Total:       len(pages),
		HasCalendar: hasCalendar,
		Cards:       make([]card, 0, len(pages)),
	}
	data.Title = r.cfg.Site.Brand + ": Grants for PT, OT, SLP & Families"
	data.OGTitle = data.Title
	data.Description = "Automated grant discovery for allied health professionals and families. Scholarships, research grants and family funding for PT, OT and SLP."
	data.Canonical = r.siteURL + "/"

	counts := make(map[string]int)
	for _, p := range pages {
		g := p.Grant
		counts[g.Niche]++
		if g.HasAmount() {
			data.WithAmounts++
		}

		blurb := g.TLDR
		if blurb == "" {
			blurb = truncateWidth(g.Summary, CardSummaryWidth)
		}
		data.Cards = append(data.Cards, card{
			Slug:        p.Slug,
			Title:       g.Title,
			TitleLower:  strings.ToLower(g.Title),
			Niche:       g.Niche,
			Meta:        r.cfg.Niche(g.Niche),
			Source:      g.Source,
			Amount:      FormatAmount(g.Amount),
			Blurb:       blurb,
			Eligibility: g.Eligibility,
			Link:        orDefault(g.Link, "#"),
			Badge:       deadlineBadge(g, g.IsClosed(r.now)),
		})
	}

	niches := make([]string, 0, len(counts))
	for n := range counts {
		niches = append(niches, n)
	}
	sort.Strings(niches)
	for _, n := range niches {
		data.Stats = append(data.Stats, nicheStat{Niche: n, Meta: r.cfg.Niche(n), Count: counts[n]})
	}

	return execute(IndexPath, data)
}

func (r *Renderer) renderGrant(p Page, hasResources, hasCalendar bool) ([]byte, error) {
	g := p.Grant
	meta := r.cfg.Niche(g.Niche)
	summary := orDefault(g.Summary, SummaryUnknown)

	data := grantData{
		layout:      r.base("../", "grants", hasResources),
		Slug:        p.Slug,
		GrantTitle:  g.Title,
		Meta:        meta,
		TLDR:        g.TLDR,
		Amount:      FormatAmount(g.Amount),
		Deadline:    orDefault(g.Deadline, DeadlineUnknown),
		Source:      orDefault(g.Source, SourceUnknown),
		Summary:     summary,
		Eligibility: orDefault(g.Eligibility, EligibilityUnknown),
		Link:        orDefault(g.Link, "#"),
		Verified:    orDefault(g.VerifiedDate(), VerifiedUnknown),
		HasCalendar: hasCalendar,
	}
	data.Title = fmt.Sprintf("%s | %s %s Grants", g.Title, r.cfg.Site.Brand, meta.Label)
	data.OGTitle = g.Title
	data.OGType = "article"
	data.Description = truncateRunes(summary, DescriptionLength)
	data.Canonical = r.siteURL + "/" + grantPath(p.Slug, ".html")

	body, err := execute("grant", data)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", p.Slug, err)
	}
	return body, nil
}

func (r *Renderer) renderResources(resources []grant.Resource) ([]byte, error) {
	data := resourcesData{
		layout:    r.base("", "resources", true),
		Resources: make([]resourceCard, 0, len(resources)),
	}
	data.Title = "Free & Low-Cost Therapy Resources | " + r.cfg.Site.Brand
	data.OGTitle = data.Title
	data.Description = "Free and low-cost speech, occupational and physical therapy programs for families."
	data.Canonical = r.siteURL + "/" + ResourcesPath

	for _, res := range resources {
		data.Resources = append(data.Resources, resourceCard{
			Title:       res.Title,
			Description: res.Description,
			Type:        orDefault(res.Type, ResourceType),
			Coverage:    res.Coverage,
			Services:    strings.Join(res.Services, ", "),
			Eligibility: orDefault(res.Eligibility, ResourceEligible),
			Link:        orDefault(res.Link, "#"),
			Highlight:   res.Highlight,
		})
	}

	return execute(ResourcesPath, data)
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("executing %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

func grantPath(slug, ext string) string {
	return GrantsDir + "/" + slug + ext
}

// Write stores docs under dir. The grants directory is cleared first so
// pages whose slugs changed since the last build do not linger.
func Write(dir string, docs []Document) error {
	if err := os.RemoveAll(filepath.Join(dir, GrantsDir)); err != nil {
		return fmt.Errorf("clearing grant pages: %w", err)
	}

	for _, d := range docs {
		path := filepath.Join(dir, filepath.FromSlash(d.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", d.Path, err)
		}
		if err := os.WriteFile(path, d.Body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", d.Path, err)
		}
	}
	return nil
}

// Package config provides configuration for the GrantFlow pipeline.
//
// Every stage receives an explicit Config instead of reading package globals.
// Default() returns the values the pipeline was originally run with; Load
// layers a YAML file and GRANTFLOW_* environment variables on top of them.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

// Configuration validation errors.
var (
	ErrMissingSiteURL     = errors.New("site.url is required")
	ErrInvalidSiteURL     = errors.New("site.url must be an absolute http(s) URL")
	ErrMissingBrand       = errors.New("site.brand is required")
	ErrMissingOutputDir   = errors.New("site.output_dir is required")
	ErrMissingRawPath     = errors.New("paths.raw is required")
	ErrMissingEnriched    = errors.New("paths.enriched is required")
	ErrInvalidTimeout     = errors.New("fetch timeouts must be positive")
	ErrMissingUserAgent   = errors.New("fetch.user_agent is required")
	ErrInvalidLLMEndpoint = errors.New("llm.endpoint must be an absolute URL when llm.enabled")
	ErrMissingLLMModel    = errors.New("llm.model is required when llm.enabled")
	ErrInvalidLLMChars    = errors.New("llm.max_chars must be at least 1")
	ErrInvalidSource      = errors.New("each source needs niche, name and an absolute url")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Site    SiteConfig           `mapstructure:"site" yaml:"site"`
	Paths   PathsConfig          `mapstructure:"paths" yaml:"paths"`
	Fetch   FetchConfig          `mapstructure:"fetch" yaml:"fetch"`
	LLM     LLMConfig            `mapstructure:"llm" yaml:"llm"`
	Log     LogConfig            `mapstructure:"log" yaml:"log"`
	Sources []grant.Source       `mapstructure:"sources" yaml:"sources"`
	Niches  map[string]NicheMeta `mapstructure:"niches" yaml:"niches"`
}

// SiteConfig controls the rendered site.
type SiteConfig struct {
	URL         string `mapstructure:"url" yaml:"url"`
	Brand       string `mapstructure:"brand" yaml:"brand"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	StableSlugs bool   `mapstructure:"stable_slugs" yaml:"stable_slugs"`
}

// PathsConfig names the pipeline's JSON files.
type PathsConfig struct {
	Raw       string `mapstructure:"raw" yaml:"raw"`
	Enriched  string `mapstructure:"enriched" yaml:"enriched"`
	Family    string `mapstructure:"family" yaml:"family"`
	Resources string `mapstructure:"resources" yaml:"resources"`
}

// FetchConfig controls HTTP fetching.
type FetchConfig struct {
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	ListingTimeout time.Duration `mapstructure:"listing_timeout" yaml:"listing_timeout"`
	DetailTimeout  time.Duration `mapstructure:"detail_timeout" yaml:"detail_timeout"`
	RespectRobots  bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
}

// LLMConfig controls the optional local-model extraction path.
type LLMConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxChars int           `mapstructure:"max_chars" yaml:"max_chars"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// NicheMeta describes how a niche is labeled and colored on the site.
type NicheMeta struct {
	Label string `mapstructure:"label" yaml:"label"`
	Emoji string `mapstructure:"emoji" yaml:"emoji"`
	Color string `mapstructure:"color" yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			URL:       "https://grantflow.vercel.app",
			Brand:     "GrantFlow",
			OutputDir: "site",
		},
		Paths: PathsConfig{
			Raw:       "data/grants_data.json",
			Enriched:  "data/grants_enriched.json",
			Family:    "data/family_grants.json",
			Resources: "data/free_resources.json",
		},
		Fetch: FetchConfig{
			UserAgent:      "Mozilla/5.0 (compatible; grantflow/1.0; +https://grantflow.vercel.app)",
			ListingTimeout: 10 * time.Second,
			DetailTimeout:  15 * time.Second,
		},
		LLM: LLMConfig{
			Endpoint: "http://localhost:11434",
			Model:    "qwen2.5:14b",
			Timeout:  40 * time.Second,
			MaxChars: 3000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Sources: DefaultSources(),
		Niches:  DefaultNiches(),
	}
}

// DefaultSources returns the listing pages scraped when no sources are configured.
func DefaultSources() []grant.Source {
	return []grant.Source{
		{Niche: "SLP", Name: "ASHFoundation", URL: "https://www.ashfoundation.org/apply/"},
		{Niche: "PT", Name: "Foundation4PT", URL: "https://foundation4pt.org/scholarships/"},
		{Niche: "OT", Name: "AOTF", URL: "https://www.aotf.org/Scholarships/Available-Scholarships"},
		{Niche: "Family", Name: "UHCCF", URL: "https://www.uhccf.org/apply-for-a-grant/"},
	}
}

// DefaultNiches returns the built-in niche display table.
func DefaultNiches() map[string]NicheMeta {
	return map[string]NicheMeta{
		"SLP":    {Label: "Speech-Language Pathology", Emoji: "🗣️", Color: "purple"},
		"PT":     {Label: "Physical Therapy", Emoji: "🏃", Color: "green"},
		"OT":     {Label: "Occupational Therapy", Emoji: "🖐️", Color: "orange"},
		"Family": {Label: "Family & Children", Emoji: "👨‍👩‍👧‍👦", Color: "pink"},
		"STEM":   {Label: "STEM", Emoji: "🔬", Color: "blue"},
	}
}

// Niche returns display metadata for a niche tag. Lookup is exact first,
// then case-insensitive; unknown niches get a gray fallback labeled with the
// tag itself.
func (c *Config) Niche(name string) NicheMeta {
	if meta, ok := c.Niches[name]; ok {
		return meta
	}
	for key, meta := range c.Niches {
		if strings.EqualFold(key, name) {
			return meta
		}
	}
	return NicheMeta{Label: name, Emoji: "📋", Color: "gray"}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return ErrMissingSiteURL
	}
	if !isAbsoluteURL(c.Site.URL) {
		return fmt.Errorf("%w: %q", ErrInvalidSiteURL, c.Site.URL)
	}
	if c.Site.Brand == "" {
		return ErrMissingBrand
	}
	if c.Site.OutputDir == "" {
		return ErrMissingOutputDir
	}
	if c.Paths.Raw == "" {
		return ErrMissingRawPath
	}
	if c.Paths.Enriched == "" {
		return ErrMissingEnriched
	}
	if c.Fetch.UserAgent == "" {
		return ErrMissingUserAgent
	}
	if c.Fetch.ListingTimeout <= 0 || c.Fetch.DetailTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.LLM.Enabled {
		if !isAbsoluteURL(c.LLM.Endpoint) {
			return fmt.Errorf("%w: %q", ErrInvalidLLMEndpoint, c.LLM.Endpoint)
		}
		if c.LLM.Model == "" {
			return ErrMissingLLMModel
		}
		if c.LLM.MaxChars < 1 {
			return ErrInvalidLLMChars
		}
		if c.LLM.Timeout <= 0 {
			return ErrInvalidTimeout
		}
	}

	for i, src := range c.Sources {
		if src.Niche == "" || src.Name == "" || !isAbsoluteURL(src.URL) {
			return fmt.Errorf("%w (sources[%d])", ErrInvalidSource, i)
		}
	}

	return nil
}

// SiteURL returns the site URL without a trailing slash
func (c *Config) SiteURL() string {
	return strings.TrimRight(c.Site.URL, "/")
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

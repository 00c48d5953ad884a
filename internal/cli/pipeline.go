package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/grantflow/internal/config"
	"github.com/pfrederiksen/grantflow/internal/curate"
	"github.com/pfrederiksen/grantflow/internal/enrich"
	"github.com/pfrederiksen/grantflow/internal/extract"
	"github.com/pfrederiksen/grantflow/internal/fetch"
	"github.com/pfrederiksen/grantflow/internal/grant"
	"github.com/pfrederiksen/grantflow/internal/logger"
	"github.com/pfrederiksen/grantflow/internal/ollama"
	"github.com/pfrederiksen/grantflow/internal/scraper"
	"github.com/pfrederiksen/grantflow/internal/site"
	"github.com/pfrederiksen/grantflow/internal/slug"
	"github.com/pfrederiksen/grantflow/internal/storage"
)

func newScrapeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Collect grant listings from every configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := runScrape(cmd.Context(), a.cfg)
			return err
		},
	}
}

func newEnrichCmd(a *app) *cobra.Command {
	var useLLM bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Visit each listing and extract deadline, amount, eligibility and summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := runEnrich(cmd.Context(), a.cfg, useLLM)
			return err
		},
	}

	cmd.Flags().BoolVar(&useLLM, "llm", false, "Fill missing fields with the local model (same as llm.enabled)")

	return cmd
}

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Curate enriched grants and render the static site",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := runBuild(a.cfg, time.Now())
			return err
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var useLLM bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scrape, enrich and build in sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := runScrape(ctx, a.cfg); err != nil {
				return err
			}
			if _, err := runEnrich(ctx, a.cfg, useLLM); err != nil {
				return err
			}
			_, err := runBuild(a.cfg, time.Now())
			return err
		},
	}

	cmd.Flags().BoolVar(&useLLM, "llm", false, "Fill missing fields with the local model during enrichment")

	return cmd
}

// runScrape visits every source and writes the raw grant file
func runScrape(ctx context.Context, cfg *config.Config) (scraper.Report, error) {
	logger.ResetMetrics()

	f := fetch.New(fetch.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       cfg.Fetch.ListingTimeout,
		RespectRobots: cfg.Fetch.RespectRobots,
	})

	grants, report, err := scraper.New(f).ScrapeAll(ctx, cfg.Sources)
	if err != nil {
		return report, fmt.Errorf("scraping sources: %w", err)
	}

	if err := storage.SaveGrants(cfg.Paths.Raw, grants); err != nil {
		return report, fmt.Errorf("saving raw grants: %w", err)
	}

	logger.Info("Scrape complete", logger.Fields{
		"sources": report.Sources,
		"failed":  report.Failed,
		"grants":  len(grants),
		"path":    cfg.Paths.Raw,
	})
	logStageMetrics("scrape")

	return report, nil
}

// runEnrich reads the raw grant file, enriches every record and writes the
// enriched file. Nothing is written if the run is interrupted.
func runEnrich(ctx context.Context, cfg *config.Config, useLLM bool) (enrich.Summary, error) {
	logger.ResetMetrics()

	grants, err := storage.LoadGrants(cfg.Paths.Raw)
	if err != nil {
		return enrich.Summary{}, fmt.Errorf("loading raw grants: %w", err)
	}

	f := fetch.New(fetch.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       cfg.Fetch.DetailTimeout,
		RespectRobots: cfg.Fetch.RespectRobots,
	})

	opts := []extract.Option{extract.WithMaxModelChars(cfg.LLM.MaxChars)}
	if useLLM || cfg.LLM.Enabled {
		opts = append(opts, extract.WithModel(ollama.New(ollama.Options{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			Timeout:  cfg.LLM.Timeout,
		})))
		logger.Info("Model extraction enabled", logger.Fields{
			"endpoint": cfg.LLM.Endpoint,
			"model":    cfg.LLM.Model,
		})
	}

	logger.Info("Enriching grants", logger.Fields{"count": len(grants)})

	outcomes, err := enrich.New(f, extract.New(opts...)).Enrich(ctx, grants)
	if err != nil {
		return enrich.Summarize(outcomes), fmt.Errorf("enriching grants: %w", err)
	}

	if err := storage.SaveGrants(cfg.Paths.Enriched, grants); err != nil {
		return enrich.Summary{}, fmt.Errorf("saving enriched grants: %w", err)
	}

	summary := enrich.Summarize(outcomes)
	logger.Info("Enrichment complete", logger.Fields{
		"total":    summary.Total,
		"enriched": summary.Enriched,
		"empty":    summary.Empty,
		"failed":   summary.Failed,
		"path":     cfg.Paths.Enriched,
	})
	logStageMetrics("enrich")

	return summary, nil
}

// runBuild curates the enriched and hand-curated grants and writes the site
func runBuild(cfg *config.Config, now time.Time) (curate.Report, error) {
	logger.ResetMetrics()
	start := time.Now()

	grants, report, err := loadCurated(cfg, now)
	if err != nil {
		return report, err
	}

	resources, err := storage.LoadResources(cfg.Paths.Resources)
	if err != nil {
		return report, fmt.Errorf("loading resources: %w", err)
	}
	if len(resources) == 0 {
		logger.Info("No resources found, skipping resources page", logger.Fields{"path": cfg.Paths.Resources})
	}

	pages, err := site.NewPages(grants, slug.Assign(grants, slug.Options{Stable: cfg.Site.StableSlugs}))
	if err != nil {
		return report, fmt.Errorf("assigning slugs: %w", err)
	}

	docs, err := site.NewRenderer(cfg, now).Render(pages, resources)
	if err != nil {
		return report, fmt.Errorf("rendering site: %w", err)
	}

	outDir, err := storage.ExpandPath(cfg.Site.OutputDir)
	if err != nil {
		return report, err
	}
	if err := site.Write(outDir, docs); err != nil {
		return report, fmt.Errorf("writing site: %w", err)
	}

	logger.SetGauge("build.documents", float64(len(docs)))
	logger.RecordTiming("build.duration", time.Since(start))
	logger.Info("Site built", logger.Fields{
		"grants":    len(pages),
		"resources": len(resources),
		"documents": len(docs),
		"output":    outDir,
	})
	logStageMetrics("build")

	return report, nil
}

// loadCurated reads the enriched and curated grant files and runs curation
func loadCurated(cfg *config.Config, now time.Time) ([]*grant.Grant, curate.Report, error) {
	enriched, err := storage.LoadGrants(cfg.Paths.Enriched)
	if err != nil {
		return nil, curate.Report{}, fmt.Errorf("loading enriched grants: %w", err)
	}

	curated, err := storage.LoadOptionalGrants(cfg.Paths.Family)
	if err != nil {
		return nil, curate.Report{}, fmt.Errorf("loading curated grants: %w", err)
	}
	if len(curated) == 0 {
		logger.Info("No curated grants found", logger.Fields{"path": cfg.Paths.Family})
	}

	grants, report := curate.Run(enriched, curated, grant.Timestamp(now))
	logger.Info("Curation complete", logger.Fields{
		"enriched": report.Enriched,
		"curated":  report.Curated,
		"junk":     report.Junk,
		"dupes":    report.Dupes,
		"final":    report.Final,
	})

	return grants, report, nil
}

func logStageMetrics(stage string) {
	fields := logger.GetMetricsSnapshot().Fields()
	fields["stage"] = stage
	logger.Info("Stage metrics", fields)
}

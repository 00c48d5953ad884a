package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/grantflow/internal/config"
	"github.com/pfrederiksen/grantflow/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// app carries state shared by every command of one invocation
type app struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "grantflow",
		Short: "Discover grants for allied health professionals and publish them as a static site",
		Long: `grantflow scrapes grant and scholarship listings from foundation websites,
enriches each listing with its deadline, amount, eligibility and summary,
and renders a static site with one page per grant.

The pipeline runs in three stages: scrape, enrich and build.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default is ./grantflow.yaml or ./config/grantflow.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose output and debug logging")

	cmd.AddCommand(
		newScrapeCmd(a),
		newEnrichCmd(a),
		newBuildCmd(a),
		newRunCmd(a),
		newListCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// setup loads configuration and installs the run logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.verbose {
		level = "debug"
	}

	runID := uuid.NewString()
	logger.SetDefault(logger.New(logger.ParseLevel(level), cmd.ErrOrStderr()).With(logger.Fields{"run_id": runID}))
	logger.Debug("Configuration loaded", logger.Fields{
		"command": cmd.Name(),
		"config":  a.configPath,
		"sources": len(cfg.Sources),
	})

	return nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return config.Dump(cmd.OutOrStdout(), a.cfg)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grantflow version %s\n", Version)
		},
	}
}

// Execute runs the CLI and exits with ExitError on failure
func Execute() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	_ = logger.Default().Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

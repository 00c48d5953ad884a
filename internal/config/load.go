package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GRANTFLOW_SITE_URL
	EnvPrefix = "GRANTFLOW"

	// FileName is the config file searched for when no path is given
	FileName = "grantflow"
)

// Load resolves the configuration from defaults, an optional YAML file and
// GRANTFLOW_* environment variables, in increasing order of precedence.
// When path is empty, grantflow.yaml is looked up in . and ./config and may
// be absent. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := Default()
	// Lists and maps from the file replace the built-in ones instead of merging
	if v.IsSet("sources") {
		cfg.Sources = nil
	}
	if v.IsSet("niches") {
		cfg.Niches = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every scalar key so environment overrides apply
// even when no config file mentions them
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("site.url", d.Site.URL)
	v.SetDefault("site.brand", d.Site.Brand)
	v.SetDefault("site.output_dir", d.Site.OutputDir)
	v.SetDefault("site.stable_slugs", d.Site.StableSlugs)

	v.SetDefault("paths.raw", d.Paths.Raw)
	v.SetDefault("paths.enriched", d.Paths.Enriched)
	v.SetDefault("paths.family", d.Paths.Family)
	v.SetDefault("paths.resources", d.Paths.Resources)

	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.listing_timeout", d.Fetch.ListingTimeout)
	v.SetDefault("fetch.detail_timeout", d.Fetch.DetailTimeout)
	v.SetDefault("fetch.respect_robots", d.Fetch.RespectRobots)

	v.SetDefault("llm.enabled", d.LLM.Enabled)
	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_chars", d.LLM.MaxChars)

	v.SetDefault("log.level", d.Log.Level)
}

// Dump writes the configuration as YAML
func Dump(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

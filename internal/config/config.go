// Package config loads settings from config.yaml, .env and ICAO_ environment
// variables, and installs the global zap logger.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/icao-airports/internal/geo"
)

// EnvPrefix prefixes every environment override, e.g. ICAO_SOURCE_URL.
const EnvPrefix = "ICAO"

// Config holds the full application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Filter  FilterConfig  `yaml:"filter" mapstructure:"filter"`
	Regions RegionsConfig `yaml:"regions" mapstructure:"regions"`
	Cluster ClusterConfig `yaml:"cluster" mapstructure:"cluster"`
	EASA    EASAConfig    `yaml:"easa" mapstructure:"easa"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig locates the airport registry.
type SourceConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	Path           string `yaml:"path" mapstructure:"path"`
	RequireCountry bool   `yaml:"require_country" mapstructure:"require_country"`
}

// FilterConfig configures outlier rejection and the generated module.
type FilterConfig struct {
	OutlierThresholdKM float64 `yaml:"outlier_threshold_km" mapstructure:"outlier_threshold_km"`
	Output             string  `yaml:"output" mapstructure:"output"`
}

// RegionsConfig names the polygon files of the assignment steps.
type RegionsConfig struct {
	Input          string `yaml:"input" mapstructure:"input"`
	SplitOutput    string `yaml:"split_output" mapstructure:"split_output"`
	AssignedOutput string `yaml:"assigned_output" mapstructure:"assigned_output"`
	RawOutput      string `yaml:"raw_output" mapstructure:"raw_output"`
	MergedOutput   string `yaml:"merged_output" mapstructure:"merged_output"`
	Space          string `yaml:"space" mapstructure:"space"`
	Property       string `yaml:"property" mapstructure:"property"`
	PrefixLen      int    `yaml:"prefix_len" mapstructure:"prefix_len"`
}

// ClusterConfig configures the density diagnostic.
type ClusterConfig struct {
	MaxEpsKM   float64  `yaml:"max_eps_km" mapstructure:"max_eps_km"`
	MinSamples int      `yaml:"min_samples" mapstructure:"min_samples"`
	Prefixes   []string `yaml:"prefixes" mapstructure:"prefixes"`
}

// EASAConfig locates the EASA aerodrome list.
type EASAConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// HTTPConfig configures the source download.
type HTTPConfig struct {
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	RetryStatuses    []int   `yaml:"retry_statuses" mapstructure:"retry_statuses"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// MetricsConfig configures the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads .env (optional), config.yaml (optional) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source.url", "https://davidmegginson.github.io/ourairports-data/airports.csv")
	v.SetDefault("source.path", "airports.csv")
	v.SetDefault("source.require_country", true)
	v.SetDefault("filter.outlier_threshold_km", 1000)
	v.SetDefault("filter.output", "src/unparsed.ts")
	v.SetDefault("regions.input", "country-borders-simplified.geo.json")
	v.SetDefault("regions.split_output", "country-borders-simplified-1.geo.json")
	v.SetDefault("regions.assigned_output", "country-borders-simplified-2.geo.json")
	v.SetDefault("regions.raw_output", "country-borders-simplified-2-wo-mercator.geo.json")
	v.SetDefault("regions.merged_output", "country-borders-merged.geo.json")
	v.SetDefault("regions.space", "projected")
	v.SetDefault("regions.property", "airports_gps_code")
	v.SetDefault("regions.prefix_len", 1)
	v.SetDefault("cluster.max_eps_km", 2000)
	v.SetDefault("cluster.min_samples", 2)
	v.SetDefault("cluster.prefixes", []string{"L"})
	v.SetDefault("easa.path", "easa-airport-list.json")
	v.SetDefault("http.user_agent", "icao-airports/1.0")
	v.SetDefault("http.timeout_secs", 60)
	v.SetDefault("http.max_attempts", 6)
	v.SetDefault("http.initial_backoff_ms", 1000)
	v.SetDefault("http.max_backoff_ms", 30000)
	v.SetDefault("http.retry_statuses", []int{429, 500, 502, 503, 504})
	v.SetDefault("http.rate_per_sec", 5)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "download":
		if c.Source.URL == "" {
			errs = append(errs, "source.url is required")
		}
		if c.HTTP.MaxAttempts < 1 {
			errs = append(errs, "http.max_attempts must be >= 1")
		}
		for _, s := range c.HTTP.RetryStatuses {
			if s < 100 || s > 599 {
				errs = append(errs, "http.retry_statuses must be HTTP status codes")
				break
			}
		}
	case "filter":
		if c.Filter.OutlierThresholdKM <= 0 {
			errs = append(errs, "filter.outlier_threshold_km must be > 0")
		}
	case "regions":
		if _, err := geo.ParseSpace(c.Regions.Space); err != nil {
			errs = append(errs, "regions.space must be raw or projected")
		}
		if c.Regions.PrefixLen < 1 || c.Regions.PrefixLen > 4 {
			errs = append(errs, "regions.prefix_len must be between 1 and 4")
		}
	case "cluster":
		if c.Cluster.MaxEpsKM <= 0 {
			errs = append(errs, "cluster.max_eps_km must be > 0")
		}
		if c.Cluster.MinSamples < 1 {
			errs = append(errs, "cluster.min_samples must be >= 1")
		}
	case "easa":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Source.Path == "" {
		errs = append(errs, "source.path is required")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

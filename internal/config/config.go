package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Discovery source names accepted in discovery.sources.
const (
	SourceMock   = "mock"
	SourceFile   = "file"
	SourcePlaces = "places"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer" mapstructure:"analyzer"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// AnalyzerConfig configures website fetching and analysis.
type AnalyzerConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes   int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxConcurrency int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// SearchConfig bounds the number of leads per run.
type SearchConfig struct {
	DefaultLeads int `yaml:"default_leads" mapstructure:"default_leads"`
	MaxLeads     int `yaml:"max_leads" mapstructure:"max_leads"`
}

// DiscoveryConfig selects and configures business discovery sources.
type DiscoveryConfig struct {
	Sources     []string           `yaml:"sources" mapstructure:"sources"`
	FixturePath string             `yaml:"fixture_path" mapstructure:"fixture_path"`
	Google      GooglePlacesConfig `yaml:"google" mapstructure:"google"`
}

// GooglePlacesConfig configures the Google Places discovery source.
type GooglePlacesConfig struct {
	Key                 string   `yaml:"key" mapstructure:"key"`
	BaseURL             string   `yaml:"base_url" mapstructure:"base_url"`
	RateLimit           float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	PageSize            int      `yaml:"page_size" mapstructure:"page_size"`
	MaxAttempts         int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	BreakerThreshold    int      `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int      `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
	DirectoryHosts      []string `yaml:"directory_hosts" mapstructure:"directory_hosts"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 60)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("analyzer.timeout_secs", 10)
	v.SetDefault("analyzer.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("analyzer.max_body_bytes", 2<<20)
	v.SetDefault("analyzer.max_concurrency", 50)
	v.SetDefault("analyzer.rate_limit_rps", 20)
	v.SetDefault("analyzer.rate_limit_burst", 20)
	v.SetDefault("search.default_leads", 10)
	v.SetDefault("search.max_leads", 50)
	v.SetDefault("discovery.sources", []string{SourceMock})
	v.SetDefault("discovery.google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("discovery.google.rate_limit", 5)
	v.SetDefault("discovery.google.page_size", 20)
	v.SetDefault("discovery.google.max_attempts", 3)
	v.SetDefault("discovery.google.breaker_threshold", 5)
	v.SetDefault("discovery.google.breaker_cooldown_secs", 60)
	v.SetDefault("discovery.google.directory_hosts", []string{
		"facebook.com", "instagram.com", "justdial.com", "indiamart.com", "yelp.com", "linktr.ee",
	})

	// Read config file (optional)
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

// Validate checks that the configuration is usable for the given command
// mode ("serve", "search" or "analyze"). All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Analyzer.TimeoutSecs <= 0 {
		problems = append(problems, "analyzer.timeout_secs must be positive")
	}
	if c.Analyzer.MaxConcurrency < 1 || c.Analyzer.MaxConcurrency > 50 {
		problems = append(problems, "analyzer.max_concurrency must be between 1 and 50")
	}
	if c.Analyzer.MaxBodyBytes < 0 {
		problems = append(problems, "analyzer.max_body_bytes must not be negative")
	}

	if mode == "serve" || mode == "search" {
		if c.Search.MaxLeads < 1 || c.Search.MaxLeads > 50 {
			problems = append(problems, "search.max_leads must be between 1 and 50")
		}
		if c.Search.DefaultLeads < 1 || c.Search.DefaultLeads > c.Search.MaxLeads {
			problems = append(problems, "search.default_leads must be between 1 and search.max_leads")
		}
		problems = append(problems, c.Discovery.problems()...)
	}

	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
		}
		if c.Server.RequestTimeoutSecs <= 0 {
			problems = append(problems, "server.request_timeout_secs must be positive")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (d DiscoveryConfig) problems() []string {
	if len(d.Sources) == 0 {
		return []string{"discovery.sources must name at least one source"}
	}

	var out []string
	for _, s := range d.Sources {
		if !slices.Contains([]string{SourceMock, SourceFile, SourcePlaces}, s) {
			out = append(out, fmt.Sprintf("discovery.sources: unknown source %q", s))
		}
	}
	if slices.Contains(d.Sources, SourceFile) && d.FixturePath == "" {
		out = append(out, "discovery.fixture_path is required for the file source")
	}
	if slices.Contains(d.Sources, SourcePlaces) && d.Google.Key == "" {
		out = append(out, "discovery.google.key is required for the places source")
	}
	return out
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

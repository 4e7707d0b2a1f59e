package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Models     ModelsConfig     `yaml:"models" mapstructure:"models"`
	Render     RenderConfig     `yaml:"render" mapstructure:"render"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Prompts    PromptsConfig    `yaml:"prompts" mapstructure:"prompts"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds the model provider credential.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// ModelsConfig selects the two model tiers. Deep does final extraction,
// Fast handles detection and classification.
type ModelsConfig struct {
	Deep            string `yaml:"deep" mapstructure:"deep"`
	Fast            string `yaml:"fast" mapstructure:"fast"`
	ReasoningEffort string `yaml:"reasoning_effort" mapstructure:"reasoning_effort"`
}

// RenderConfig configures document-to-page conversion.
type RenderConfig struct {
	DPI          int    `yaml:"dpi" mapstructure:"dpi"`
	MaxWidth     int    `yaml:"max_width" mapstructure:"max_width"`
	MaxPages     int    `yaml:"max_pages" mapstructure:"max_pages"`
	PdftoppmPath string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
}

// ExtractionConfig tunes the pipeline.
type ExtractionConfig struct {
	// MaxRetries bounds the single-period validate-and-reprompt loop.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// ValidationTolerance is the relative tolerance for accounting
	// identity checks.
	ValidationTolerance float64 `yaml:"validation_tolerance" mapstructure:"validation_tolerance"`

	// ReconcileTolerance is the relative tolerance before an extracted vs
	// computed total mismatch is logged.
	ReconcileTolerance float64 `yaml:"reconcile_tolerance" mapstructure:"reconcile_tolerance"`

	// DetectionPages caps how many leading pages the statement-type
	// detector sees.
	DetectionPages int `yaml:"detection_pages" mapstructure:"detection_pages"`
}

// PromptsConfig points at an optional directory of instruction overrides.
// When empty or unreadable, built-in instructions are used and the fallback
// is recorded on the extraction context.
type PromptsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
	RatePerMinute      int `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetConfigName("spreader")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SPREADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The empty anthropic.key default registers the key so
	// AutomaticEnv can populate it from SPREADER_ANTHROPIC_KEY.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("models.deep", "claude-opus-4-5")
	v.SetDefault("models.fast", "claude-sonnet-4-5")
	v.SetDefault("models.reasoning_effort", "medium")
	v.SetDefault("render.dpi", 200)
	v.SetDefault("render.max_width", 1024)
	v.SetDefault("render.max_pages", 0)
	v.SetDefault("render.pdftoppm_path", "pdftoppm")
	v.SetDefault("extraction.max_retries", 2)
	v.SetDefault("extraction.validation_tolerance", 0.05)
	v.SetDefault("extraction.reconcile_tolerance", 0.01)
	v.SetDefault("extraction.detection_pages", 8)
	v.SetDefault("batch.max_concurrent_files", 3)
	v.SetDefault("batch.rate_per_minute", 30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "spreader.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultConfigFile        = "salesanalytics.yaml"
	DotEnvFile               = ".env"
	defaultInputFile         = "data/sales_data.txt"
	defaultEnrichedFile      = "data/enriched_sales_data.txt"
	defaultReportFile        = "output/sales_report.txt"
	defaultCatalogURL        = "https://dummyjson.com/products?limit=100"
	defaultCatalogTimeout    = 10 * time.Second
	defaultCurrencySymbol    = "₹"
	defaultLowThreshold      = 10
	defaultTopN              = 5
	defaultSyntheticDataDir  = "tmp/synthetic"
	defaultSyntheticDataRows = 100
	defaultLogLevel          = "info"
	envInputFile             = "SALES_INPUT_FILE"
	envEnrichedFile          = "SALES_ENRICHED_FILE"
	envReportFile            = "SALES_REPORT_FILE"
	envWorkbookFile          = "SALES_WORKBOOK_FILE"
	envSinks                 = "SALES_SNAPSHOT_SINKS"
	envCatalogURL            = "SALES_CATALOG_URL"
	envCatalogTimeout        = "SALES_CATALOG_TIMEOUT"
	envCurrencySymbol        = "SALES_CURRENCY_SYMBOL"
	envLogLevel              = "SALES_LOG_LEVEL"
)

// LoadConfig reads the YAML file at path, then applies environment variables
// (a .env file in the working directory included) and default values. A
// missing file at DefaultConfigFile is not an error.
func LoadConfig(ctx context.Context, logger *slog.Logger, path string) (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
		}
		logger.DebugContext(ctx, "No .env file found")
	} else {
		logger.DebugContext(ctx, "Loaded environment from file", "file", DotEnvFile)
	}

	cfg := &Config{}
	if err := loadFile(ctx, logger, path, cfg); err != nil {
		return nil, err
	}

	applyEnv(ctx, logger, cfg)
	applyDefaults(ctx, logger, cfg)

	return cfg, nil
}

func loadFile(ctx context.Context, logger *slog.Logger, path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigFile {
			logger.DebugContext(ctx, "No config file found, using environment and defaults", "file", path)
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	logger.DebugContext(ctx, "Loaded config file", "file", path)

	return nil
}

func applyEnv(ctx context.Context, logger *slog.Logger, cfg *Config) {
	for env, field := range map[string]*string{
		envInputFile:      &cfg.InputFile,
		envEnrichedFile:   &cfg.EnrichedFile,
		envReportFile:     &cfg.ReportFile,
		envWorkbookFile:   &cfg.WorkbookFile,
		envCatalogURL:     &cfg.CatalogURL,
		envCurrencySymbol: &cfg.CurrencySymbol,
		envLogLevel:       &cfg.LogLevel,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
			logger.DebugContext(ctx, "Using value from environment variable", "env", env, "value", v)
		}
	}

	if v := os.Getenv(envSinks); v != "" {
		cfg.Sinks = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Sinks = append(cfg.Sinks, s)
			}
		}
		logger.DebugContext(ctx, "Using sinks from environment variable", "sinks", cfg.Sinks)
	}

	if v := os.Getenv(envCatalogTimeout); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			logger.WarnContext(ctx, "Invalid value for "+envCatalogTimeout+", ignoring",
				"value", v,
				"error", err,
			)
		} else {
			cfg.CatalogTimeout = timeout
			logger.DebugContext(ctx, "Set catalog timeout from environment variable", "value", timeout)
		}
	}
}

// parseTimeout accepts a duration ("10s") or a number of seconds ("10").
func parseTimeout(v string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}

	return d, nil
}

func applyDefaults(ctx context.Context, logger *slog.Logger, cfg *Config) {
	setDefault := func(name string, field *string, value string) {
		if *field == "" {
			*field = value
			logger.DebugContext(ctx, "Using default value", "setting", name, "value", value)
		}
	}
	setDefaultInt := func(name string, field *int, value int) {
		if *field <= 0 {
			*field = value
			logger.DebugContext(ctx, "Using default value", "setting", name, "value", value)
		}
	}

	setDefault("input_file", &cfg.InputFile, defaultInputFile)
	setDefault("enriched_file", &cfg.EnrichedFile, defaultEnrichedFile)
	setDefault("report_file", &cfg.ReportFile, defaultReportFile)
	setDefault("catalog_url", &cfg.CatalogURL, defaultCatalogURL)
	setDefault("currency_symbol", &cfg.CurrencySymbol, defaultCurrencySymbol)
	setDefault("synthetic_data_dir", &cfg.SyntheticDataDir, defaultSyntheticDataDir)
	setDefault("log_level", &cfg.LogLevel, defaultLogLevel)
	setDefaultInt("low_threshold", &cfg.LowThreshold, defaultLowThreshold)
	setDefaultInt("top_n", &cfg.TopN, defaultTopN)
	setDefaultInt("synthetic_data_rows", &cfg.SyntheticDataRows, defaultSyntheticDataRows)

	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = defaultCatalogTimeout
		logger.DebugContext(ctx, "Using default value", "setting", "catalog_timeout", "value", defaultCatalogTimeout)
	}
}

// ParseLogLevel maps debug, info, warn and error to a slog level. Anything
// else is info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

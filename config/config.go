package config

import (
	"time"
)

// Config holds the application configuration.
type Config struct {
	InputFile      string        `yaml:"input_file"`
	EnrichedFile   string        `yaml:"enriched_file"`
	ReportFile     string        `yaml:"report_file"`
	WorkbookFile   string        `yaml:"workbook_file"`
	Sinks          []string      `yaml:"sinks"`
	CatalogURL     string        `yaml:"catalog_url"`
	CatalogTimeout time.Duration `yaml:"catalog_timeout"`
	CurrencySymbol string        `yaml:"currency_symbol"`
	// LowThreshold and TopN tune the computed aggregates. The text report keeps its fixed layout.
	LowThreshold      int    `yaml:"low_threshold"`
	TopN              int    `yaml:"top_n"`
	SyntheticDataDir  string `yaml:"synthetic_data_dir"`
	SyntheticDataRows int    `yaml:"synthetic_data_rows"`
	LogLevel          string `yaml:"log_level"`
}

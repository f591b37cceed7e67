package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string       `yaml:"version" json:"version"`
	Data    DataConfig   `yaml:"data" json:"data"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Output  OutputConfig `yaml:"output" json:"output"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
}

// DataConfig locates the correlation sources
type DataConfig struct {
	LogsDir       string   `yaml:"logs_dir" json:"logs_dir"`             // directory of <service>.log[.gz] files
	LogServices   []string `yaml:"log_services" json:"log_services"`     // services to load; empty loads every log file
	LogFormat     string   `yaml:"log_format" json:"log_format"`         // auto|text|json|logfmt
	CaseLog       string   `yaml:"case_log" json:"case_log"`             // .csv, .json or .yaml case records
	KnowledgeBase string   `yaml:"knowledge_base" json:"knowledge_base"` // .md/.txt file or a directory of them
	Contacts      string   `yaml:"contacts" json:"contacts"`             // .yaml or .txt contact directory
}

// SearchConfig bounds how much of each source ends up in a context
type SearchConfig struct {
	SimilarCases     int `yaml:"similar_cases" json:"similar_cases"`
	ModuleCases      int `yaml:"module_cases" json:"module_cases"`
	Articles         int `yaml:"articles" json:"articles"`
	Procedures       int `yaml:"procedures" json:"procedures"`
	Timeline         int `yaml:"timeline" json:"timeline"`
	ErrorsPerService int `yaml:"errors_per_service" json:"errors_per_service"`
	MessageLength    int `yaml:"message_length" json:"message_length"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat   string `yaml:"default_format" json:"default_format"`     // text|json|markdown|prompt
	ColorMode       string `yaml:"color_mode" json:"color_mode"`             // auto|always|never
	Verbose         bool   `yaml:"verbose" json:"verbose"`                   // default verbosity
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format"` // time format string
}

// WatchConfig configures the incident inbox watcher
type WatchConfig struct {
	InboxDir    string        `yaml:"inbox_dir" json:"inbox_dir"`
	ReportDir   string        `yaml:"report_dir" json:"report_dir"` // empty writes reports to stdout
	Patterns    []string      `yaml:"patterns" json:"patterns"`
	Debounce    time.Duration `yaml:"debounce" json:"debounce"`
	MetricsAddr string        `yaml:"metrics_addr" json:"metrics_addr"` // empty disables the metrics endpoint
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Data: DataConfig{
			LogsDir:       "./data/logs",
			LogFormat:     "auto",
			CaseLog:       "./data/cases.csv",
			KnowledgeBase: "./data/knowledge_base.md",
			Contacts:      "./data/contacts.yaml",
		},
		Search: SearchConfig{
			SimilarCases:     5,
			ModuleCases:      5,
			Articles:         5,
			Procedures:       3,
			Timeline:         20,
			ErrorsPerService: 3,
			MessageLength:    200,
		},
		Output: OutputConfig{
			DefaultFormat:   "text",
			ColorMode:       "auto",
			Verbose:         false,
			TimestampFormat: "2006-01-02 15:04:05",
		},
		Watch: WatchConfig{
			InboxDir: "./inbox",
			Patterns: []string{"*.txt", "*.eml"},
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateDataConfig(); err != nil {
		return err
	}
	if err := c.validateSearchConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	return c.validateWatchConfig()
}

func (c *Config) validateDataConfig() error {
	if c.Data.LogFormat != "" {
		validFormats := map[string]bool{"auto": true, "text": true, "json": true, "logfmt": true}
		if !validFormats[c.Data.LogFormat] {
			return fmt.Errorf("invalid log format: %s (must be one of: auto, text, json, logfmt)", c.Data.LogFormat)
		}
	}
	return nil
}

func (c *Config) validateSearchConfig() error {
	limits := map[string]int{
		"similar_cases":      c.Search.SimilarCases,
		"module_cases":       c.Search.ModuleCases,
		"articles":           c.Search.Articles,
		"procedures":         c.Search.Procedures,
		"timeline":           c.Search.Timeline,
		"errors_per_service": c.Search.ErrorsPerService,
	}
	for _, name := range []string{"similar_cases", "module_cases", "articles", "procedures", "timeline", "errors_per_service"} {
		if limits[name] < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	if c.Search.MessageLength < 1 {
		return fmt.Errorf("message_length must be greater than 0")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{"text": true, "json": true, "markdown": true, "prompt": true}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: text, json, markdown, prompt)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{"auto": true, "always": true, "never": true}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

func (c *Config) validateWatchConfig() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must be non-negative")
	}
	return nil
}

// SampleConfig returns a commented configuration file with the defaults
func SampleConfig() string {
	return `# PortTriage configuration
version: "1.0"

data:
  # Directory holding one <service>.log or <service>.log.gz file per service
  logs_dir: ./data/logs
  # Services to load; leave empty to load every log file in logs_dir
  log_services: []
  # auto, text, json or logfmt
  log_format: auto
  # Historical cases: .csv, .json or .yaml
  case_log: ./data/cases.csv
  # Knowledge base: a .md/.txt file or a directory of them
  knowledge_base: ./data/knowledge_base.md
  # Escalation contacts: .yaml or extracted .txt
  contacts: ./data/contacts.yaml

search:
  similar_cases: 5
  module_cases: 5
  articles: 5
  procedures: 3
  timeline: 20
  errors_per_service: 3
  message_length: 200

output:
  # text, json, markdown or prompt
  default_format: text
  # auto, always or never
  color_mode: auto
  verbose: false
  timestamp_format: "2006-01-02 15:04:05"

watch:
  inbox_dir: ./inbox
  # Leave empty to print reports to stdout
  report_dir: ""
  patterns: ["*.txt", "*.eml"]
  debounce: 500ms
  # Serve Prometheus metrics on this address while watching, e.g. ":9464"
  metrics_addr: ""
`
}

// MinimalSampleConfig returns a compact configuration with only the data sources
func MinimalSampleConfig() string {
	return `version: "1.0"
data:
  logs_dir: ./data/logs
  case_log: ./data/cases.csv
  knowledge_base: ./data/knowledge_base.md
  contacts: ./data/contacts.yaml
`
}

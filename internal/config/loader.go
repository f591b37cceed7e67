package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.porttriage.yaml",               // Project-specific config (highest priority)
	"~/.config/porttriage/config.yaml", // User config
	"/etc/porttriage/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.porttriage.yaml
// 4. ~/.config/porttriage/config.yaml
// 5. /etc/porttriage/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// applyEnvOverrides applies PORTTRIAGE_* environment variables to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Data Config
		"PORTTRIAGE_DATA_LOGS_DIR":       func(v string) error { config.Data.LogsDir = v; return nil },
		"PORTTRIAGE_DATA_LOG_FORMAT":     func(v string) error { config.Data.LogFormat = v; return nil },
		"PORTTRIAGE_DATA_CASE_LOG":       func(v string) error { config.Data.CaseLog = v; return nil },
		"PORTTRIAGE_DATA_KNOWLEDGE_BASE": func(v string) error { config.Data.KnowledgeBase = v; return nil },
		"PORTTRIAGE_DATA_CONTACTS":       func(v string) error { config.Data.Contacts = v; return nil },

		// Search Config
		"PORTTRIAGE_SEARCH_SIMILAR_CASES":      func(v string) error { return parseInt(v, &config.Search.SimilarCases) },
		"PORTTRIAGE_SEARCH_MODULE_CASES":       func(v string) error { return parseInt(v, &config.Search.ModuleCases) },
		"PORTTRIAGE_SEARCH_ARTICLES":           func(v string) error { return parseInt(v, &config.Search.Articles) },
		"PORTTRIAGE_SEARCH_PROCEDURES":         func(v string) error { return parseInt(v, &config.Search.Procedures) },
		"PORTTRIAGE_SEARCH_TIMELINE":           func(v string) error { return parseInt(v, &config.Search.Timeline) },
		"PORTTRIAGE_SEARCH_ERRORS_PER_SERVICE": func(v string) error { return parseInt(v, &config.Search.ErrorsPerService) },
		"PORTTRIAGE_SEARCH_MESSAGE_LENGTH":     func(v string) error { return parseInt(v, &config.Search.MessageLength) },

		// Output Config
		"PORTTRIAGE_OUTPUT_DEFAULT_FORMAT":   func(v string) error { config.Output.DefaultFormat = v; return nil },
		"PORTTRIAGE_OUTPUT_COLOR_MODE":       func(v string) error { config.Output.ColorMode = v; return nil },
		"PORTTRIAGE_OUTPUT_VERBOSE":          func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"PORTTRIAGE_OUTPUT_TIMESTAMP_FORMAT": func(v string) error { config.Output.TimestampFormat = v; return nil },

		// Watch Config
		"PORTTRIAGE_WATCH_INBOX_DIR":    func(v string) error { config.Watch.InboxDir = v; return nil },
		"PORTTRIAGE_WATCH_REPORT_DIR":   func(v string) error { config.Watch.ReportDir = v; return nil },
		"PORTTRIAGE_WATCH_DEBOUNCE":     func(v string) error { return parseDuration(v, &config.Watch.Debounce) },
		"PORTTRIAGE_WATCH_METRICS_ADDR": func(v string) error { config.Watch.MetricsAddr = v; return nil },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated lists
	if services := os.Getenv("PORTTRIAGE_DATA_LOG_SERVICES"); services != "" {
		config.Data.LogServices = splitList(services)
	}
	if patterns := os.Getenv("PORTTRIAGE_WATCH_PATTERNS"); patterns != "" {
		config.Watch.Patterns = splitList(patterns)
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeDataConfig(&dst.Data, &src.Data)
	mergeSearchConfig(&dst.Search, &src.Search)
	mergeOutputConfig(&dst.Output, &src.Output)
	mergeWatchConfig(&dst.Watch, &src.Watch)
}

func mergeDataConfig(dst, src *DataConfig) {
	mergeString(&dst.LogsDir, src.LogsDir)
	mergeString(&dst.LogFormat, src.LogFormat)
	mergeString(&dst.CaseLog, src.CaseLog)
	mergeString(&dst.KnowledgeBase, src.KnowledgeBase)
	mergeString(&dst.Contacts, src.Contacts)
	if len(src.LogServices) > 0 {
		dst.LogServices = src.LogServices
	}
}

func mergeSearchConfig(dst, src *SearchConfig) {
	mergeInt(&dst.SimilarCases, src.SimilarCases)
	mergeInt(&dst.ModuleCases, src.ModuleCases)
	mergeInt(&dst.Articles, src.Articles)
	mergeInt(&dst.Procedures, src.Procedures)
	mergeInt(&dst.Timeline, src.Timeline)
	mergeInt(&dst.ErrorsPerService, src.ErrorsPerService)
	mergeInt(&dst.MessageLength, src.MessageLength)
}

func mergeOutputConfig(dst, src *OutputConfig) {
	mergeString(&dst.DefaultFormat, src.DefaultFormat)
	mergeString(&dst.ColorMode, src.ColorMode)
	mergeString(&dst.TimestampFormat, src.TimestampFormat)
	// A zero bool cannot be told apart from an unset one, so only true propagates
	if src.Verbose {
		dst.Verbose = true
	}
}

func mergeWatchConfig(dst, src *WatchConfig) {
	mergeString(&dst.InboxDir, src.InboxDir)
	mergeString(&dst.ReportDir, src.ReportDir)
	mergeString(&dst.MetricsAddr, src.MetricsAddr)
	if len(src.Patterns) > 0 {
		dst.Patterns = src.Patterns
	}
	if src.Debounce != 0 {
		dst.Debounce = src.Debounce
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

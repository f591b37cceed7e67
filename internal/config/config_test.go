package config

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected output format text, got %s", cfg.Output.DefaultFormat)
	}
	if cfg.Data.LogFormat != "auto" {
		t.Errorf("Expected log format auto, got %s", cfg.Data.LogFormat)
	}

	search := cfg.Search
	got := []int{search.SimilarCases, search.ModuleCases, search.Articles, search.Procedures,
		search.Timeline, search.ErrorsPerService, search.MessageLength}
	want := []int{5, 5, 5, 3, 20, 3, 200}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Search default %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Data.LogFormat = "xml" },
			wantErr: true,
			errMsg:  "invalid log format: xml (must be one of: auto, text, json, logfmt)",
		},
		{
			name:    "negative limit",
			mutate:  func(c *Config) { c.Search.Articles = -1 },
			wantErr: true,
			errMsg:  "articles must be non-negative",
		},
		{
			name:   "zero limit disables source",
			mutate: func(c *Config) { c.Search.Procedures = 0 },
		},
		{
			name:    "zero message length",
			mutate:  func(c *Config) { c.Search.MessageLength = 0 },
			wantErr: true,
			errMsg:  "message_length must be greater than 0",
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.DefaultFormat = "csv" },
			wantErr: true,
			errMsg:  "invalid output format: csv (must be one of: text, json, markdown, prompt)",
		},
		{
			name:    "invalid color mode",
			mutate:  func(c *Config) { c.Output.ColorMode = "rainbow" },
			wantErr: true,
			errMsg:  "invalid color mode: rainbow (must be one of: auto, always, never)",
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
			errMsg:  "watch debounce must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("Expected error message %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestConfigMerging(t *testing.T) {
	dst := DefaultConfig()
	src := &Config{
		Data: DataConfig{
			LogsDir:     "/var/log/port",
			LogServices: []string{"edi_advice", "vessel_advice"},
		},
		Search: SearchConfig{SimilarCases: 10},
		Output: OutputConfig{DefaultFormat: "json", Verbose: true},
	}

	mergeConfigs(dst, src)

	if dst.Data.LogsDir != "/var/log/port" {
		t.Errorf("Expected logs dir /var/log/port, got %s", dst.Data.LogsDir)
	}
	if len(dst.Data.LogServices) != 2 {
		t.Errorf("Expected 2 services, got %d", len(dst.Data.LogServices))
	}
	if dst.Data.CaseLog != "./data/cases.csv" {
		t.Errorf("Expected case log default preserved, got %s", dst.Data.CaseLog)
	}
	if dst.Search.SimilarCases != 10 {
		t.Errorf("Expected similar cases 10, got %d", dst.Search.SimilarCases)
	}
	if dst.Search.Procedures != 3 {
		t.Errorf("Expected procedures default preserved, got %d", dst.Search.Procedures)
	}
	if dst.Output.DefaultFormat != "json" || !dst.Output.Verbose {
		t.Errorf("Expected json output and verbose, got %+v", dst.Output)
	}
	if dst.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected debounce preserved, got %v", dst.Watch.Debounce)
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(SampleConfig()), &cfg); err != nil {
		t.Fatalf("Sample config is not valid YAML: %v", err)
	}

	merged := DefaultConfig()
	mergeConfigs(merged, &cfg)
	if err := merged.Validate(); err != nil {
		t.Errorf("Sample config should validate: %v", err)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected sample debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Search.Timeline != 20 {
		t.Errorf("Expected sample timeline 20, got %d", cfg.Search.Timeline)
	}
}

func TestMinimalSampleConfigParses(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(MinimalSampleConfig()), &cfg); err != nil {
		t.Fatalf("Minimal config is not valid YAML: %v", err)
	}

	merged := DefaultConfig()
	mergeConfigs(merged, &cfg)
	if err := merged.Validate(); err != nil {
		t.Errorf("Minimal config should validate: %v", err)
	}
	if merged.Search.SimilarCases != 5 {
		t.Errorf("Expected defaults to survive, got similar_cases %d", merged.Search.SimilarCases)
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(string) bool
	}{
		{"absolute path unchanged", "/etc/porttriage/config.yaml", func(s string) bool { return s == "/etc/porttriage/config.yaml" }},
		{"relative path unchanged", "./.porttriage.yaml", func(s string) bool { return s == "./.porttriage.yaml" }},
		{"home expanded", "~/.config/porttriage/config.yaml", func(s string) bool {
			return !strings.HasPrefix(s, "~") && strings.HasSuffix(s, ".config/porttriage/config.yaml")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandPath(tt.input); !tt.check(got) {
				t.Errorf("expandPath(%q) = %q", tt.input, got)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) != 3 {
		t.Fatalf("Expected 3 config paths, got %d", len(paths))
	}
	for _, path := range paths {
		if strings.HasPrefix(path, "~") {
			t.Errorf("Path should be expanded: %s", path)
		}
	}
	if paths[0] != "./.porttriage.yaml" {
		t.Errorf("Expected project config first, got %s", paths[0])
	}
}

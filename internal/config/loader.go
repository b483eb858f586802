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
	"./.logpanel.yaml",               // Project-specific config (highest priority)
	"~/.config/logpanel/config.yaml", // User config
	"/etc/logpanel/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	warn        func(format string, args ...interface{})
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.logpanel.yaml
// 4. ~/.config/logpanel/config.yaml
// 5. /etc/logpanel/config.yaml
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
				l.warn("Failed to load config from %s: %v", expandedPath, err)
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

// loadFromFile decodes a YAML file over config. Keys missing from the file
// keep their current values, so booleans set to false survive a later file
// that does not mention them.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	merged := *config
	merged.Panel.Highlight = append([]string(nil), config.Panel.Highlight...)
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = merged
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Panel Config
		"LOGPANEL_PANEL_PREVIEW_LIMIT":        func(v string) error { return parseInt(v, &config.Panel.PreviewLimit) },
		"LOGPANEL_PANEL_REVEAL_DELAY_PER_ROW": func(v string) error { return parseDuration(v, &config.Panel.RevealDelayPerRow) },
		"LOGPANEL_PANEL_COMPLETE_DELAY":       func(v string) error { return parseDuration(v, &config.Panel.CompleteDelay) },
		"LOGPANEL_PANEL_DEDUP_STRATEGY":       func(v string) error { config.Panel.DedupStrategy = v; return nil },
		"LOGPANEL_PANEL_SHOW_LABELS":          func(v string) error { return parseBool(v, &config.Panel.ShowLabels) },
		"LOGPANEL_PANEL_SHOW_TIME":            func(v string) error { return parseBool(v, &config.Panel.ShowTime) },
		"LOGPANEL_PANEL_SERIES_BUCKETS":       func(v string) error { return parseInt(v, &config.Panel.SeriesBuckets) },
		"LOGPANEL_PANEL_CONTEXT_LINES":        func(v string) error { return parseInt(v, &config.Panel.ContextLines) },

		// Input Config
		"LOGPANEL_INPUT_FORMAT":          func(v string) error { config.Input.Format = v; return nil },
		"LOGPANEL_INPUT_MAX_LINES":       func(v string) error { return parseInt(v, &config.Input.MaxLines) },
		"LOGPANEL_INPUT_MAX_LINE_LENGTH": func(v string) error { return parseInt(v, &config.Input.MaxLineLength) },
		"LOGPANEL_INPUT_CONCURRENCY":     func(v string) error { return parseInt(v, &config.Input.Concurrency) },
		"LOGPANEL_INPUT_FOLLOW":          func(v string) error { return parseBool(v, &config.Input.Follow) },

		// Output Config
		"LOGPANEL_OUTPUT_DEFAULT_FORMAT":   func(v string) error { config.Output.DefaultFormat = v; return nil },
		"LOGPANEL_OUTPUT_COLOR_MODE":       func(v string) error { config.Output.ColorMode = v; return nil },
		"LOGPANEL_OUTPUT_THEME":            func(v string) error { config.Output.Theme = v; return nil },
		"LOGPANEL_OUTPUT_NO_EMOJI":         func(v string) error { return parseBool(v, &config.Output.NoEmoji) },
		"LOGPANEL_OUTPUT_VERBOSE":          func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"LOGPANEL_OUTPUT_TIMESTAMP_FORMAT": func(v string) error { config.Output.TimestampFormat = v; return nil },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated list
	if terms := os.Getenv("LOGPANEL_PANEL_HIGHLIGHT"); terms != "" {
		config.Panel.Highlight = config.Panel.Highlight[:0]
		for _, term := range strings.Split(terms, ",") {
			if term = strings.TrimSpace(term); term != "" {
				config.Panel.Highlight = append(config.Panel.Highlight, term)
			}
		}
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

// SampleConfig returns the defaults as commented YAML
func SampleConfig() (string, error) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# LogPanel configuration\n" +
		"# Search order: ./.logpanel.yaml, ~/.config/logpanel/config.yaml, /etc/logpanel/config.yaml\n" +
		"# Environment variables LOGPANEL_<SECTION>_<KEY> override file values.\n\n"
	return header + string(data), nil
}

// MinimalSampleConfig returns a short config with the most used keys
func MinimalSampleConfig() string {
	return `version: "1.0"
panel:
  dedup_strategy: none
  show_labels: true
  show_time: true
input:
  format: auto
output:
  default_format: tui
`
}

// WriteConfigFile writes content to path, refusing to overwrite unless
// force is set
func WriteConfigFile(path, content string, force bool) error {
	if err := validateConfigPath(path); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}
	if fileExists(path) && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Helper functions

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

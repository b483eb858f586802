package config

import (
	"fmt"
	"time"

	"github.com/yildizm/LogPanel/internal/logs"
)

// Config holds the complete application configuration
type Config struct {
	Version string       `yaml:"version" json:"version"`
	Panel   PanelConfig  `yaml:"panel" json:"panel"`
	Input   InputConfig  `yaml:"input" json:"input"`
	Output  OutputConfig `yaml:"output" json:"output"`
}

// PanelConfig configures the log panel and its staged rendering
type PanelConfig struct {
	PreviewLimit      int           `yaml:"preview_limit" json:"preview_limit"`               // rows shown in the first batch
	RevealDelayPerRow time.Duration `yaml:"reveal_delay_per_row" json:"reveal_delay_per_row"` // deferred delay per initial row
	CompleteDelay     time.Duration `yaml:"complete_delay" json:"complete_delay"`             // partial to full delay
	DedupStrategy     string        `yaml:"dedup_strategy" json:"dedup_strategy"`             // none|exact|numbers|signature
	ShowLabels        bool          `yaml:"show_labels" json:"show_labels"`
	ShowTime          bool          `yaml:"show_time" json:"show_time"`
	Highlight         []string      `yaml:"highlight" json:"highlight"`
	SeriesBuckets     int           `yaml:"series_buckets" json:"series_buckets"`
	ContextLines      int           `yaml:"context_lines" json:"context_lines"`
}

// InputConfig configures how log input is read
type InputConfig struct {
	Format        string `yaml:"format" json:"format"` // auto|json|logfmt|text
	MaxLines      int    `yaml:"max_lines" json:"max_lines"`
	MaxLineLength int    `yaml:"max_line_length" json:"max_line_length"`
	Concurrency   int    `yaml:"concurrency" json:"concurrency"`
	Follow        bool   `yaml:"follow" json:"follow"` // start scanning on open
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat   string `yaml:"default_format" json:"default_format"` // tui|text|json
	ColorMode       string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Theme           string `yaml:"theme" json:"theme"`
	NoEmoji         bool   `yaml:"no_emoji" json:"no_emoji"`
	Verbose         bool   `yaml:"verbose" json:"verbose"`
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Panel: PanelConfig{
			PreviewLimit:      100,
			RevealDelayPerRow: time.Millisecond,
			CompleteDelay:     2 * time.Second,
			DedupStrategy:     string(logs.DedupNone),
			ShowLabels:        true,
			ShowTime:          true,
			SeriesBuckets:     40,
			ContextLines:      10,
		},
		Input: InputConfig{
			Format:        "auto",
			MaxLines:      100000,
			MaxLineLength: 1024 * 1024, // 1MB
			Concurrency:   4,
		},
		Output: OutputConfig{
			DefaultFormat:   "tui",
			ColorMode:       "auto",
			Theme:           "default",
			TimestampFormat: "15:04:05.000",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validatePanelConfig(); err != nil {
		return err
	}
	if err := c.validateInputConfig(); err != nil {
		return err
	}
	return c.validateOutputConfig()
}

func (c *Config) validatePanelConfig() error {
	if c.Panel.PreviewLimit < 1 {
		return fmt.Errorf("preview_limit must be greater than 0")
	}
	if c.Panel.RevealDelayPerRow < 0 {
		return fmt.Errorf("reveal_delay_per_row must be non-negative")
	}
	if c.Panel.CompleteDelay < 0 {
		return fmt.Errorf("complete_delay must be non-negative")
	}
	if _, err := logs.ParseDedupStrategy(c.Panel.DedupStrategy); err != nil {
		return fmt.Errorf("invalid dedup_strategy: %w", err)
	}
	if c.Panel.SeriesBuckets < 0 {
		return fmt.Errorf("series_buckets must be non-negative")
	}
	if c.Panel.ContextLines < 0 {
		return fmt.Errorf("context_lines must be non-negative")
	}
	return nil
}

func (c *Config) validateInputConfig() error {
	if c.Input.Format != "" {
		validFormats := map[string]bool{
			"auto":   true,
			"json":   true,
			"logfmt": true,
			"text":   true,
		}
		if !validFormats[c.Input.Format] {
			return fmt.Errorf("invalid input format: %s (must be one of: auto, json, logfmt, text)", c.Input.Format)
		}
	}
	if c.Input.MaxLines < 1 {
		return fmt.Errorf("max_lines must be greater than 0")
	}
	if c.Input.MaxLineLength < 1 {
		return fmt.Errorf("max_line_length must be greater than 0")
	}
	if c.Input.Concurrency < 1 {
		return fmt.Errorf("concurrency must be greater than 0")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"tui":  true,
			"text": true,
			"json": true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: tui, text, json)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// Strategy returns the configured dedup strategy. The config must be valid.
func (p PanelConfig) Strategy() logs.DedupStrategy {
	s, err := logs.ParseDedupStrategy(p.DedupStrategy)
	if err != nil {
		return logs.DedupNone
	}
	return s
}

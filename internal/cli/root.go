package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogPanel/internal/config"
	"github.com/yildizm/LogPanel/internal/emoji"
	"github.com/yildizm/LogPanel/internal/logger"
	"github.com/yildizm/LogPanel/internal/ui"
)

// skipConfigAnnotation marks commands that load configuration themselves
const skipConfigAnnotation = "logpanel/skip-config"

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logpanel",
		Short: "Interactive Log Panel",
		Long: `LogPanel renders log files as an interactive panel with deduplication,
level filtering, summary metadata and staged rendering for large inputs.

It supports multiple log formats (JSON, logfmt, plain text) and can read logs
from files or stdin, optionally following files for new lines.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadGlobalConfig(cmd); err != nil {
				return err
			}
			applyDisplaySettings(cmd, GetGlobalConfig())
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (tui, text, json); defaults to output.default_format")

	// Add subcommands
	rootCmd.AddCommand(newViewCommand())
	rootCmd.AddCommand(newTailCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// loadGlobalConfig loads the effective configuration once per invocation.
// Commands annotated with skipConfigAnnotation fall back to defaults when
// loading fails so they can report the problem themselves.
func loadGlobalConfig(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		if !skipsConfig(cmd) {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = config.DefaultConfig()
	}
	globalConfig = cfg
	return nil
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

// applyDisplaySettings merges config values into flags the user did not set
func applyDisplaySettings(cmd *cobra.Command, cfg *config.Config) {
	if !flagChanged(cmd, "verbose") && cfg.Output.Verbose {
		verbose = true
	}
	if !flagChanged(cmd, "no-emoji") {
		// Auto-disable emojis on Windows if not explicitly set
		noEmoji = cfg.Output.NoEmoji || runtime.GOOS == "windows"
	}
	if !flagChanged(cmd, "no-color") {
		noColor = cfg.Output.ColorMode == "never"
	}
	if !flagChanged(cmd, "output") || outputFmt == "" {
		outputFmt = cfg.Output.DefaultFormat
	}

	emoji.SetEmojiDisabled(noEmoji)
	ui.SetColorDisabled(noColor)
	if cfg.Output.Theme != "" && !ui.SetThemeByName(cfg.Output.Theme) && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: unknown theme %q, available: %v\n", cfg.Output.Theme, ui.GetAvailableThemes())
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	return flag != nil && flag.Changed
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Printf("LogPanel %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers

// GetGlobalConfig returns the loaded configuration, or defaults before loading
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

func isVerbose() bool {
	return verbose
}

func getOutputFormat() string {
	if outputFmt == "" {
		return GetGlobalConfig().Output.DefaultFormat
	}
	return outputFmt
}

func isEmojiDisabled() bool {
	return noEmoji
}

// newLogger creates a component logger gated on --verbose
func newLogger(component string) *logger.Logger {
	return logger.New(component, isVerbose)
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogPanel/internal/config"
	"gopkg.in/yaml.v3"
)

// defaultConfigFile is where config init writes without --output
const defaultConfigFile = ".logpanel.yaml"

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage LogPanel configuration",
		Long: `Manage LogPanel configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
	}

	// Add subcommands
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new LogPanel configuration file with default values.

By default, creates a full configuration file with every option.
Use --minimal for a compact configuration with only essential settings.`,
		Example: `  # Create full config in current directory
  logpanel config init

  # Create minimal config
  logpanel config init --minimal

  # Create config at specific path
  logpanel config init --output ~/.config/logpanel/config.yaml

  # Overwrite existing config
  logpanel config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = defaultConfigFile
			}

			content := config.MinimalSampleConfig()
			if !minimal {
				sample, err := config.SampleConfig()
				if err != nil {
					return err
				}
				content = sample
			}

			if err := config.WriteConfigFile(outputPath, content, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration file created at: %s\n", GetEmoji("success"), outputPath)
			if minimal {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Created minimal configuration with essential settings\n", GetEmoji("config"))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Created full configuration with all options\n", GetEmoji("config"))
			}

			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .logpanel.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current effective configuration after loading from all sources.

Shows the merged configuration from all sources including defaults,
config files, and environment variable overrides.`,
		Example: `  # Show config in YAML format
  logpanel config show

  # Show config in JSON format
  logpanel config show --format json

  # Show config from specific file
  logpanel config show --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}

			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a LogPanel configuration file for syntax and semantic errors.

Checks the configuration file for:
- Valid YAML syntax
- Known dedup strategies, input formats and output formats
- Positive limits and non-negative delays`,
		Example: `  # Validate current config
  logpanel config validate

  # Validate specific config file
  logpanel config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Fprintf(out, "%s Configuration validation failed:\n", GetEmoji("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			fmt.Fprintf(out, "%s Configuration is valid\n", GetEmoji("success"))

			fmt.Fprintf(out, "%s Configuration summary:\n", GetEmoji("stats"))
			fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			fmt.Fprintf(out, "   Dedup Strategy: %s\n", cfg.Panel.Strategy())
			fmt.Fprintf(out, "   Preview Limit: %d rows\n", cfg.Panel.PreviewLimit)
			fmt.Fprintf(out, "   Complete Delay: %s\n", cfg.Panel.CompleteDelay)
			fmt.Fprintf(out, "   Input Format: %s\n", cfg.Input.Format)
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
			fmt.Fprintf(out, "   Highlight Terms: %d configured\n", len(cfg.Panel.Highlight))

			return nil
		},
	}

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths LogPanel searches for configuration files.

Shows the search order and indicates which files exist.`,
		Example: `  # Show config search paths
  logpanel config path`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file search paths (in priority order):\n\n", GetEmoji("config"))

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := fmt.Sprintf(" %s (not found)", GetEmoji("error"))
				if fileExists(path) {
					exists = fmt.Sprintf(" %s (exists)", GetEmoji("success"))
				}

				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
				fmt.Fprintln(out)
			}

			if currentConfig, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "Current config file: %s\n", currentConfig)
			} else {
				fmt.Fprintln(out, "No config file found, using defaults")
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Environment variables with LOGPANEL_ prefix will override file settings")
		},
	}

	return pathCmd
}

// Helper function to check if file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

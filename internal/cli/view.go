package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogPanel/internal/config"
	"github.com/yildizm/LogPanel/internal/formatter"
	"github.com/yildizm/LogPanel/internal/logger"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
	"github.com/yildizm/LogPanel/internal/source"
	"github.com/yildizm/LogPanel/internal/staged"
	"github.com/yildizm/LogPanel/internal/ui"
)

var (
	viewFormat     string
	viewDedup      string
	viewHighlight  []string
	viewHide       []string
	viewFollow     bool
	viewNoLabels   bool
	viewNoTime     bool
	viewTimeout    time.Duration
	viewMaxLines   int
	viewNoTUI      bool
	viewOutputFile string
	viewLogFile    string
)

func newViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [files...]",
		Short: "Display log files or stdin in the panel",
		Long: `Load log files into the log panel.

If no file is specified, reads from stdin. Rows from several files are merged
by timestamp. Supports auto-detection of log formats or manual format
specification.

Examples:
  logpanel view app.log
  logpanel view --dedup signature api.log worker.log
  cat app.log | logpanel view --highlight timeout
  logpanel view --follow app.log
  logpanel view -o json --hide debug,info app.log`,
		RunE: runView,
	}

	cmd.Flags().StringVarP(&viewFormat, "format", "f", "", "log format (auto, json, logfmt, text)")
	cmd.Flags().StringVarP(&viewDedup, "dedup", "d", "", "dedup strategy (none, exact, numbers, signature)")
	cmd.Flags().StringSliceVar(&viewHighlight, "highlight", nil, "terms to highlight in the first batch of rows")
	cmd.Flags().StringSliceVar(&viewHide, "hide", nil, "log levels to hide (debug, info, warn, error, fatal, unknown)")
	cmd.Flags().BoolVar(&viewFollow, "follow", false, "follow files for new entries")
	cmd.Flags().BoolVar(&viewNoLabels, "no-labels", false, "hide row labels")
	cmd.Flags().BoolVar(&viewNoTime, "no-time", false, "hide row timestamps")
	cmd.Flags().DurationVar(&viewTimeout, "timeout", 30*time.Second, "load timeout")
	cmd.Flags().IntVar(&viewMaxLines, "max-lines", 0, "maximum lines to read per input (default: input.max_lines)")
	cmd.Flags().BoolVar(&viewNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVar(&viewOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringVar(&viewLogFile, "log-file", "", "write diagnostic logs to file while the terminal UI runs")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	applyViewConfig(cmd, cfg)

	strategy, err := logs.ParseDedupStrategy(viewDedup)
	if err != nil {
		return err
	}
	hidden, err := parseLevels(viewHide)
	if err != nil {
		return err
	}

	useTUI := shouldUseTUIMode()
	log := newLogger("view")
	if useTUI {
		cleanup, err := redirectLogger(log)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	loader := newSourceLoader(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), viewTimeout)
	defer cancel()

	rows, sources, err := loadRows(ctx, loader, args)
	if err != nil {
		return err
	}
	log.Info("loaded rows", logger.Count(rows.Len()), logger.F("sources", len(sources)))
	if isVerbose() {
		printLoadSummary(os.Stderr, rows)
	}

	store := source.NewStore(strategy, cfg.Panel.SeriesBuckets)
	store.SetRows(rows, sources)
	if len(hidden) > 0 {
		store.ToggleLevels(hidden)
	}

	panelOpts := panelOptions(cfg, strategy)

	if useTUI {
		return ui.Run(ui.Options{
			Store:           store,
			Panel:           panelOpts,
			FollowPaths:     args,
			Loader:          loader,
			Follow:          viewFollow,
			TimestampFormat: cfg.Output.TimestampFormat,
			ContextLines:    cfg.Panel.ContextLines,
			Logger:          log,
			InputTTY:        len(args) == 0,
		})
	}

	if viewFollow && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: --follow is ignored without the terminal UI, use 'logpanel tail'\n")
	}

	output, err := renderStatic(store, panelOpts, log, cfg.Output.TimestampFormat)
	if err != nil {
		return err
	}
	return handleOutputDestination(output)
}

// applyViewConfig fills flags the user did not set from the configuration
func applyViewConfig(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flag("format").Changed {
		viewFormat = cfg.Input.Format
	}
	if !cmd.Flag("dedup").Changed {
		viewDedup = cfg.Panel.DedupStrategy
	}
	if !cmd.Flag("highlight").Changed {
		viewHighlight = cfg.Panel.Highlight
	}
	if !cmd.Flag("follow").Changed {
		viewFollow = cfg.Input.Follow
	}
	if !cmd.Flag("max-lines").Changed {
		viewMaxLines = cfg.Input.MaxLines
	}
}

// shouldUseTUIMode reports whether the interactive panel should run
func shouldUseTUIMode() bool {
	return !viewNoTUI && getOutputFormat() == "tui" && !isVerbose()
}

// redirectLogger keeps diagnostics off the terminal while the panel owns it
func redirectLogger(log *logger.Logger) (func(), error) {
	if viewLogFile == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	// #nosec G304 - log file path is chosen by the user
	file, err := os.OpenFile(filepath.Clean(viewLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)

	return func() {
		log.SetOutput(io.Discard)
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}, nil
}

// newSourceLoader builds a loader from the input configuration and flags
func newSourceLoader(cfg *config.Config, log *logger.Logger) *source.Loader {
	loader := source.NewLoader(log)
	loader.Format = viewFormat
	if viewMaxLines > 0 {
		loader.MaxLines = viewMaxLines
	}
	if cfg.Input.MaxLineLength > 0 {
		loader.MaxLineLength = cfg.Input.MaxLineLength
	}
	if cfg.Input.Concurrency > 0 {
		loader.Concurrency = cfg.Input.Concurrency
	}
	return loader
}

// loadRows reads every file argument, or stdin when there are none
func loadRows(ctx context.Context, loader *source.Loader, args []string) (logs.RowSet, []string, error) {
	if len(args) == 0 {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Reading from stdin...\n")
		}
		rows, err := loader.LoadReader(ctx, os.Stdin, "stdin")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return rows, []string{"stdin"}, nil
	}

	for _, path := range args {
		if err := source.ValidateFilePath(path); err != nil {
			return nil, nil, fmt.Errorf("invalid file path: %w", err)
		}
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Loading %d file(s)...\n", len(args))
	}
	rows, err := loader.LoadFiles(ctx, args)
	if errors.Is(err, source.ErrNoEntries) {
		// Empty files still open the panel, which reports that nothing was found
		return logs.RowSet{}, args, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rows, args, nil
}

// printLoadSummary writes the row count per level
func printLoadSummary(w io.Writer, rows logs.RowSet) {
	counts := make(map[logs.LogLevel]int)
	for _, row := range rows {
		counts[row.Level]++
	}

	fmt.Fprintf(w, "%s Loaded %d rows\n", GetEmoji("stats"), rows.Len())
	for _, level := range logs.AllLevels {
		if counts[level] == 0 {
			continue
		}
		fmt.Fprintf(w, "   %s %-7s %d\n", GetLevelEmoji(level), level.String(), counts[level])
	}
}

// parseLevels resolves level names, rejecting unknown ones before they reach
// the panel
func parseLevels(names []string) ([]logs.LogLevel, error) {
	levels := make([]logs.LogLevel, 0, len(names))
	for _, name := range names {
		level, err := logs.LookupLogLevel(name)
		if err != nil {
			return nil, fmt.Errorf("invalid --hide value: %w", err)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// panelOptions maps configuration and flags onto panel options
func panelOptions(cfg *config.Config, strategy logs.DedupStrategy) panel.Options {
	stagedOpts := staged.DefaultOptions()
	stagedOpts.PreviewLimit = cfg.Panel.PreviewLimit
	stagedOpts.RevealDelayPerRow = cfg.Panel.RevealDelayPerRow
	stagedOpts.CompleteDelay = cfg.Panel.CompleteDelay

	return panel.Options{
		Staged:     stagedOpts,
		Strategy:   strategy,
		ShowLabels: cfg.Panel.ShowLabels && !viewNoLabels,
		ShowTime:   cfg.Panel.ShowTime && !viewNoTime,
		Highlights: viewHighlight,
	}
}

// renderStatic formats every row of the store once
func renderStatic(store *source.Store, opts panel.Options, log *logger.Logger, timestampFormat string) ([]byte, error) {
	opts.Strategies = store
	opts.Levels = store
	opts.Context = store
	opts.Logger = log

	p := panel.New(opts)
	defer p.Close()
	p.Deliver(store.Snapshot())

	f, err := getFormatter(getOutputFormat(), timestampFormat)
	if err != nil {
		return nil, err
	}
	output, err := f.Format(p.StaticRenderModel())
	if err != nil {
		return nil, fmt.Errorf("failed to format output: %w", err)
	}
	return output, nil
}

// getFormatter returns the formatter for non-interactive output. The tui
// format falls back to text when the terminal UI is disabled.
func getFormatter(format, timestampFormat string) (formatter.Formatter, error) {
	if format == "tui" {
		format = "text"
	}
	return formatter.New(format, formatter.Options{
		Color:           !noColor && !ui.IsColorDisabled(),
		Emoji:           !isEmojiDisabled(),
		TimestampFormat: timestampFormat,
	})
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(output []byte) error {
	if viewOutputFile == "" {
		fmt.Print(string(output))
		return nil
	}

	if err := validateOutputFilePath(viewOutputFile); err != nil {
		return fmt.Errorf("invalid output file path: %w", err)
	}
	if err := writeOutputBytesToFile(output, viewOutputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", viewOutputFile)
	}
	return nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogPanel/internal/dedup"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/source"
	"github.com/yildizm/LogPanel/internal/ui"
)

var (
	tailFormat    string
	tailMinLevel  string
	tailDedup     string
	tailHighlight []string
	tailNoTime    bool
	tailNoLabels  bool
)

func newTailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail [files...]",
		Short: "Print new log rows as they are written",
		Long: `Follow log files and print rows appended after the command starts.

Uses file system notifications to detect changes. Rows below --min-level are
skipped and each batch of new lines is folded with the chosen dedup strategy.
Press Ctrl+C to stop.

Examples:
  logpanel tail app.log
  logpanel tail --min-level warn --dedup numbers api.log worker.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTail,
	}

	cmd.Flags().StringVarP(&tailFormat, "format", "f", "", "log format (auto, json, logfmt, text)")
	cmd.Flags().StringVar(&tailMinLevel, "min-level", "unknown", "lowest level to print (unknown prints every row)")
	cmd.Flags().StringVarP(&tailDedup, "dedup", "d", "", "dedup strategy applied to each batch")
	cmd.Flags().StringSliceVar(&tailHighlight, "highlight", nil, "terms to highlight")
	cmd.Flags().BoolVar(&tailNoTime, "no-time", false, "hide row timestamps")
	cmd.Flags().BoolVar(&tailNoLabels, "no-labels", false, "hide row labels")

	return cmd
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if !cmd.Flag("format").Changed {
		tailFormat = cfg.Input.Format
	}
	if !cmd.Flag("dedup").Changed {
		tailDedup = cfg.Panel.DedupStrategy
	}
	if !cmd.Flag("highlight").Changed {
		tailHighlight = cfg.Panel.Highlight
	}

	strategy, err := logs.ParseDedupStrategy(tailDedup)
	if err != nil {
		return err
	}
	minLevel, err := logs.LookupLogLevel(tailMinLevel)
	if err != nil {
		return fmt.Errorf("invalid --min-level: %w", err)
	}
	for _, path := range args {
		if err := source.ValidateFilePath(path); err != nil {
			return fmt.Errorf("invalid file path: %w", err)
		}
	}

	log := newLogger("tail")
	loader := source.NewLoader(log)
	loader.Format = tailFormat
	if cfg.Input.MaxLineLength > 0 {
		loader.MaxLineLength = cfg.Input.MaxLineLength
	}

	printer := &rowPrinter{
		out:      cmd.OutOrStdout(),
		minLevel: minLevel,
		strategy: strategy,
		styles:   ui.GetStyles(),
		opts: ui.RowOptions{
			ShowTime:        cfg.Panel.ShowTime && !tailNoTime,
			ShowLabels:      cfg.Panel.ShowLabels && !tailNoLabels,
			ShowDuplicates:  strategy.Enabled(),
			TimestampFormat: cfg.Output.TimestampFormat,
			Highlights:      tailHighlight,
		},
	}

	follower := source.NewFollower(args, loader, printer.print, log)
	if err := follower.Start(); err != nil {
		return fmt.Errorf("failed to follow files: %w", err)
	}
	defer follower.Stop()

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Watching %d file(s) for changes. Press Ctrl+C to stop.\n", len(args))
	}

	// Set up signal handling for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	<-signals
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
	}
	return nil
}

// rowPrinter writes followed rows as single lines. print may be called from
// the follower goroutine.
type rowPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel logs.LogLevel
	strategy logs.DedupStrategy
	styles   *ui.Styles
	opts     ui.RowOptions
}

func (p *rowPrinter) print(rows logs.RowSet) {
	visible := make(logs.RowSet, 0, len(rows))
	for _, row := range rows {
		if row != nil && row.Level >= p.minLevel {
			visible = append(visible, row)
		}
	}
	if len(visible) == 0 {
		return
	}

	folded := dedup.Fold(visible, p.strategy)

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, row := range folded.Rows {
		fmt.Fprintln(p.out, ui.RenderRow(row, p.opts, p.styles))
	}
}

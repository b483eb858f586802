// Package panel glues dedup aggregation and staged rendering into the model
// the presentation layer draws.
package panel

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yildizm/LogPanel/internal/dedup"
	"github.com/yildizm/LogPanel/internal/logger"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/staged"
)

// DedupCountLabel is the meta label synthesized for the folded row count
const DedupCountLabel = "Dedup count"

// Options configures a Controller
type Options struct {
	Staged     staged.Options
	Strategy   logs.DedupStrategy
	ShowLabels bool
	ShowTime   bool
	Highlights []string

	Strategies StrategyOwner
	Levels     LevelVisibilityOwner
	Context    ContextFetcher

	// OnStartScan and OnStopScan are optional
	OnStartScan func()
	OnStopScan  func()

	Logger *logger.Logger
}

// Controller owns the panel's display state
type Controller struct {
	mu   sync.Mutex
	opts Options
	log  *logger.Logger

	strategy   logs.DedupStrategy
	showLabels bool
	showTime   bool
	highlights []string
	scanning   bool

	data      *logs.Data
	processed logs.Processed

	stager  *staged.Controller
	mounted bool
	closed  bool
}

// New creates an unmounted controller
func New(opts Options) *Controller {
	if opts.Strategy == "" {
		opts.Strategy = logs.DedupNone
	}
	if opts.Context == nil {
		opts.Context = noContext
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	c := &Controller{
		opts:       opts,
		log:        log.WithComponent("panel"),
		strategy:   opts.Strategy,
		showLabels: opts.ShowLabels,
		showTime:   opts.ShowTime,
		highlights: append([]string(nil), opts.Highlights...),
	}
	c.stager = c.newStager()
	return c
}

func (c *Controller) newStager() *staged.Controller {
	opts := c.opts.Staged
	onChange := opts.OnChange
	opts.OnChange = func(p staged.Phase) {
		c.log.Debug("staged render transition", logger.F("phase", p))
		if onChange != nil {
			onChange(p)
		}
	}
	return staged.New(opts)
}

// Mount starts staged rendering using the raw row count delivered so far
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	count := c.rawCountLocked()
	stager := c.stager
	c.mu.Unlock()

	c.log.Debug("mounting panel", logger.Count(count), logger.F("reveal_delay", stager.RevealDelay(count)))
	stager.Start(count)
}

// Remount disposes the current staged controller and starts a fresh one
func (c *Controller) Remount() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	old := c.stager
	c.stager = c.newStager()
	c.mounted = false
	c.mu.Unlock()

	old.Stop()
	c.Mount()
}

// Close cancels pending timers. The controller must not be mounted again.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	stager := c.stager
	c.mu.Unlock()

	stager.Stop()
}

// Deliver records a new raw delivery and its processed counterpart. A nil
// data set means nothing has been loaded yet.
func (c *Controller) Deliver(data *logs.Data, processed logs.Processed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = data
	c.processed = processed
}

// Strategy returns the active dedup strategy
func (c *Controller) Strategy() logs.DedupStrategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy
}

// SetDedupStrategy adopts candidate, or turns dedup off when candidate is
// already active, and tells the strategy owner.
func (c *Controller) SetDedupStrategy(candidate logs.DedupStrategy) logs.DedupStrategy {
	c.mu.Lock()
	next := candidate
	if candidate == c.strategy {
		next = logs.DedupNone
	}
	c.strategy = next
	owner := c.opts.Strategies
	c.mu.Unlock()

	c.log.Debug("dedup strategy changed", logger.F("candidate", candidate), logger.F("strategy", next))
	if owner != nil {
		owner.SetDedupStrategy(next)
	}
	return next
}

// SetLabelVisibility toggles per-row labels
func (c *Controller) SetLabelVisibility(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showLabels = show
}

// SetTimeVisibility toggles per-row timestamps
func (c *Controller) SetTimeVisibility(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showTime = show
}

// SetHighlights replaces the terms highlighted in the first batch of rows
func (c *Controller) SetHighlights(terms []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.highlights = append([]string(nil), terms...)
}

// ToggleLogLevels resolves level names and forwards them to the visibility
// owner. An unrecognized name is a caller bug and panics.
func (c *Controller) ToggleLogLevels(names []string) {
	seen := make(map[logs.LogLevel]bool, len(names))
	levels := make([]logs.LogLevel, 0, len(names))
	for _, name := range names {
		level, err := logs.LookupLogLevel(name)
		if err != nil {
			panic(fmt.Sprintf("panel: toggle log levels: %v", err))
		}
		if !seen[level] {
			seen[level] = true
			levels = append(levels, level)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	c.mu.Lock()
	owner := c.opts.Levels
	c.mu.Unlock()

	c.log.Debug("toggling log levels", logger.F("levels", levels))
	if owner != nil {
		owner.ToggleLevels(levels)
	}
}

// StartScan asks the scan owner, if any, to start scanning for new rows
func (c *Controller) StartScan() {
	c.mu.Lock()
	start := c.opts.OnStartScan
	if start != nil {
		c.scanning = true
	}
	c.mu.Unlock()

	if start != nil {
		start()
	}
}

// StopScan asks the scan owner, if any, to stop scanning
func (c *Controller) StopScan() {
	c.mu.Lock()
	stop := c.opts.OnStopScan
	c.scanning = false
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Scanning reports whether a scan was started and not stopped
func (c *Controller) Scanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanning
}

// FetchContext loads rows around row, resolving to nothing when no fetcher is configured
func (c *Controller) FetchContext(ctx context.Context, row *logs.LogRow, opts logs.ContextOptions) (logs.RowSet, error) {
	return c.opts.Context.FetchContext(ctx, row, opts)
}

// Phase returns the staged render phase
func (c *Controller) Phase() staged.Phase {
	c.mu.Lock()
	stager := c.stager
	c.mu.Unlock()
	return stager.Phase()
}

func (c *Controller) rawCountLocked() int {
	if c.data == nil {
		return 0
	}
	return len(c.data.Rows)
}

// RenderModel assembles what the presentation layer draws right now
func (c *Controller) RenderModel() RenderModel {
	c.mu.Lock()
	stager := c.stager
	c.mu.Unlock()
	return c.assemble(stager.Phase(), stager.PreviewLimit())
}

// StaticRenderModel is RenderModel with every row visible, for one-shot output
func (c *Controller) StaticRenderModel() RenderModel {
	c.mu.Lock()
	limit := c.stager.PreviewLimit()
	c.mu.Unlock()
	return c.assemble(staged.PhaseFull, limit)
}

func (c *Controller) assemble(phase staged.Phase, previewLimit int) RenderModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	model := RenderModel{
		Phase:      phase,
		Strategy:   c.strategy,
		ShowTime:   c.showTime,
		Scanning:   c.scanning,
		Highlights: append([]string(nil), c.highlights...),
	}

	if c.data == nil {
		model.Placeholder = "Loading logs..."
		return model
	}

	rows := c.processed.Rows
	summary := dedup.ComputeDedupSummary(rows, c.strategy)
	hasUnique := dedup.HasUniqueLabels(c.processed)

	model.HasData = len(c.data.Rows) > 0
	model.Summary = summary
	model.ShowDuplicates = summary.ShowDuplicates
	model.HasUniqueLabels = hasUnique
	model.ShowLabels = c.showLabels && hasUnique
	model.Series = c.data.Series
	model.Rows = staged.WindowFor(phase, rows, previewLimit)
	model.TotalRows = len(rows)
	model.Meta = buildMeta(c.data.Meta, c.strategy, summary)

	switch {
	case phase == staged.PhaseDeferred && model.HasData:
		model.Placeholder = fmt.Sprintf("Rendering %d rows...", len(rows))
	case c.scanning:
		model.Placeholder = "Scanning for new log lines..."
	case !model.HasData:
		model.Placeholder = "No logs found"
	}

	return model
}

// buildMeta appends the dedup count whenever a strategy is active, even if
// nothing was folded
func buildMeta(raw []logs.MetaItem, strategy logs.DedupStrategy, summary dedup.Summary) []logs.MetaItem {
	meta := make([]logs.MetaItem, 0, len(raw)+1)
	meta = append(meta, raw...)
	if strategy.Enabled() {
		meta = append(meta, logs.Scalar(DedupCountLabel, summary.DedupCount))
	}
	return meta
}

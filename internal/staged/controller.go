// Package staged controls how many rows of a large result set are exposed to
// the renderer over time, so a big delivery never blocks the UI in one pass.
//
// A controller starts Deferred and shows nothing. After a reveal delay that
// grows with the initial row count it either shows everything (small sets)
// or only the first PreviewLimit rows, followed by the rest after a fixed
// CompleteDelay.
package staged

import (
	"sync"
	"time"

	"github.com/yildizm/LogPanel/internal/clock"
	"github.com/yildizm/LogPanel/internal/logs"
)

const (
	// DefaultPreviewLimit is the size of the first batch of rows
	DefaultPreviewLimit = 100
	// DefaultRevealDelayPerRow is the reveal delay added for every initial row
	DefaultRevealDelayPerRow = time.Millisecond
	// DefaultCompleteDelay is the wait between the first batch and the rest
	DefaultCompleteDelay = 2000 * time.Millisecond
)

// Phase is the controller's position in the reveal sequence
type Phase int

const (
	PhaseDeferred Phase = iota
	PhasePartial
	PhaseFull
)

func (p Phase) String() string {
	switch p {
	case PhaseDeferred:
		return "deferred"
	case PhasePartial:
		return "partial"
	case PhaseFull:
		return "full"
	default:
		return "unknown"
	}
}

// State mirrors the two flags the renderer cares about. RenderAll is only
// meaningful once Deferred is false.
type State struct {
	Deferred  bool
	RenderAll bool
}

// Phase derives the phase from the flags
func (s State) Phase() Phase {
	switch {
	case s.Deferred:
		return PhaseDeferred
	case s.RenderAll:
		return PhaseFull
	default:
		return PhasePartial
	}
}

// Options configures a Controller
type Options struct {
	PreviewLimit      int
	RevealDelayPerRow time.Duration
	CompleteDelay     time.Duration
	Clock             clock.Clock

	// OnChange is called after every transition, outside the controller lock
	OnChange func(Phase)
}

// DefaultOptions returns the standard reveal timings on the wall clock
func DefaultOptions() Options {
	return Options{
		PreviewLimit:      DefaultPreviewLimit,
		RevealDelayPerRow: DefaultRevealDelayPerRow,
		CompleteDelay:     DefaultCompleteDelay,
		Clock:             clock.Real{},
	}
}

// timerHandle identifies one armed timer. A callback only acts if the
// controller still holds its handle.
type timerHandle struct {
	timer clock.Timer
}

// Controller is the staged render state machine. It is safe for concurrent
// use; timer callbacks may run on other goroutines.
type Controller struct {
	mu   sync.Mutex
	opts Options

	state             State
	started           bool
	stopped           bool
	renderAllEligible bool

	reveal   *timerHandle
	complete *timerHandle
}

// New creates a controller in the Deferred state
func New(opts Options) *Controller {
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	if opts.RevealDelayPerRow < 0 {
		opts.RevealDelayPerRow = 0
	}
	if opts.CompleteDelay < 0 {
		opts.CompleteDelay = 0
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	return &Controller{
		opts:  opts,
		state: State{Deferred: true},
	}
}

// RevealDelay returns the grace period before anything is shown for a set of n rows
func (c *Controller) RevealDelay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * c.opts.RevealDelayPerRow
}

// Start arms the reveal timer using the row count known now. Only the first
// call on a controller has any effect.
func (c *Controller) Start(initialCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.stopped || !c.state.Deferred {
		return
	}
	c.started = true
	c.renderAllEligible = initialCount <= c.opts.PreviewLimit*2

	h := &timerHandle{}
	c.reveal = h
	h.timer = c.opts.Clock.AfterFunc(c.RevealDelay(initialCount), func() {
		c.fireReveal(h)
	})
}

func (c *Controller) fireReveal(h *timerHandle) {
	c.mu.Lock()
	if c.stopped || c.reveal != h {
		c.mu.Unlock()
		return
	}
	c.reveal = nil
	c.state.Deferred = false

	if c.renderAllEligible {
		c.state.RenderAll = true
	} else {
		c.state.RenderAll = false
		next := &timerHandle{}
		c.complete = next
		next.timer = c.opts.Clock.AfterFunc(c.opts.CompleteDelay, func() {
			c.fireComplete(next)
		})
	}
	phase := c.state.Phase()
	c.mu.Unlock()

	c.notify(phase)
}

func (c *Controller) fireComplete(h *timerHandle) {
	c.mu.Lock()
	if c.stopped || c.complete != h {
		c.mu.Unlock()
		return
	}
	c.complete = nil
	c.state.RenderAll = true
	phase := c.state.Phase()
	c.mu.Unlock()

	c.notify(phase)
}

func (c *Controller) notify(phase Phase) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(phase)
	}
}

// Stop cancels any pending timer. No transition happens after Stop returns.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	for _, h := range []*timerHandle{c.reveal, c.complete} {
		if h != nil && h.timer != nil {
			h.timer.Stop()
		}
	}
	c.reveal = nil
	c.complete = nil
}

// Started reports whether Start has armed the reveal timer
func (c *Controller) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// State returns a snapshot of the render flags
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phase returns the current phase
func (c *Controller) Phase() Phase {
	return c.State().Phase()
}

// PreviewLimit returns the first batch size in use
func (c *Controller) PreviewLimit() int {
	return c.opts.PreviewLimit
}

// Window slices rows according to the current phase
func (c *Controller) Window(rows logs.RowSet) Window {
	return WindowFor(c.Phase(), rows, c.opts.PreviewLimit)
}

// Window is the part of a row set handed to the renderer. Only First rows
// receive highlighting.
type Window struct {
	First   logs.RowSet
	Rest    logs.RowSet
	Pending int
}

// Len returns the number of visible rows
func (w Window) Len() int {
	return len(w.First) + len(w.Rest)
}

// All returns the visible rows in display order
func (w Window) All() logs.RowSet {
	all := make(logs.RowSet, 0, w.Len())
	all = append(all, w.First...)
	return append(all, w.Rest...)
}

// WindowFor computes the visible window for a phase
func WindowFor(phase Phase, rows logs.RowSet, previewLimit int) Window {
	first := rows
	var rest logs.RowSet
	if len(rows) > previewLimit {
		first = rows[:previewLimit]
		rest = rows[previewLimit:]
	}

	switch phase {
	case PhaseDeferred:
		return Window{Pending: len(rows)}
	case PhasePartial:
		return Window{First: first}
	default:
		return Window{First: first, Rest: rest}
	}
}

// Package ui is the interactive terminal front end of the log panel.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sourcegraph/conc/pool"
	"github.com/yildizm/LogPanel/internal/emoji"
	"github.com/yildizm/LogPanel/internal/logger"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
	"github.com/yildizm/LogPanel/internal/source"
	"github.com/yildizm/LogPanel/internal/staged"
)

const contextTimeout = 5 * time.Second

// Options configures a PanelModel
type Options struct {
	Store *source.Store
	// Panel carries the display defaults. Owners, scan callbacks and the
	// staged change hook are filled in by the model.
	Panel panel.Options

	// FollowPaths enables scanning. Empty when reading stdin.
	FollowPaths []string
	Loader      *source.Loader
	Follow      bool

	TimestampFormat string
	ContextLines    int
	Logger          *logger.Logger

	// InputTTY reads keys from the terminal when stdin carries log data
	InputTTY bool
}

type viewMode int

const (
	viewRows viewMode = iota
	viewContext
)

// wakeMsg tells the model that the inbox has something
type wakeMsg struct{}

type contextMsg struct {
	row    *logs.LogRow
	before logs.RowSet
	after  logs.RowSet
	err    error
}

// inbox collects work from timer and watcher goroutines so they never block
// on the event loop
type inbox struct {
	mu     sync.Mutex
	rows   logs.RowSet
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newInbox() *inbox {
	return &inbox{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (b *inbox) postRows(rows logs.RowSet) {
	b.mu.Lock()
	b.rows = append(b.rows, rows...)
	b.mu.Unlock()
	b.wake()
}

func (b *inbox) wake() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *inbox) drain() logs.RowSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := b.rows
	b.rows = nil
	return rows
}

func (b *inbox) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return wakeMsg{}
		case <-b.done:
			return nil
		}
	}
}

func (b *inbox) close() {
	b.once.Do(func() { close(b.done) })
}

// PanelModel is the bubbletea model around a panel controller
type PanelModel struct {
	opts     Options
	log      *logger.Logger
	panel    *panel.Controller
	store    *source.Store
	follower *source.Follower
	inbox    *inbox

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	styles   *Styles

	width, height int
	ready         bool
	quitting      bool
	mode          viewMode
	showLabels    bool
	showTime      bool

	model  panel.RenderModel
	header string
	status string

	ctxRow    *logs.LogRow
	ctxBefore logs.RowSet
	ctxAfter  logs.RowSet
	ctxErr    error

	closeOnce sync.Once
}

// NewPanelModel wires the store, follower and panel controller together and
// delivers the store's current rows
func NewPanelModel(opts Options) *PanelModel {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.Store == nil {
		opts.Store = source.NewStore(opts.Panel.Strategy, 0)
	}
	if opts.ContextLines <= 0 {
		opts.ContextLines = source.DefaultContextLimit
	}

	m := &PanelModel{
		opts:       opts,
		log:        log.WithComponent("ui"),
		store:      opts.Store,
		inbox:      newInbox(),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		viewport:   viewport.New(80, 20),
		styles:     GetStyles(),
		showLabels: opts.Panel.ShowLabels,
		showTime:   opts.Panel.ShowTime,
	}

	if len(opts.FollowPaths) > 0 && opts.Loader != nil {
		m.follower = source.NewFollower(opts.FollowPaths, opts.Loader, m.inbox.postRows, log)
	}

	popts := opts.Panel
	popts.Logger = log
	popts.Strategies = m.store
	popts.Levels = m.store
	popts.Context = m.store
	popts.Staged.OnChange = func(staged.Phase) { m.inbox.wake() }
	if m.follower != nil {
		popts.OnStartScan = m.startFollowing
		popts.OnStopScan = m.follower.Stop
	}
	m.panel = panel.New(popts)

	m.refresh()
	return m
}

// Panel returns the underlying controller
func (m *PanelModel) Panel() *panel.Controller {
	return m.panel
}

// Init mounts the panel and starts listening for background work
func (m *PanelModel) Init() tea.Cmd {
	m.panel.Mount()
	if m.opts.Follow {
		m.panel.StartScan()
		m.rebuild()
	}
	return m.inbox.wait()
}

// Update handles messages
func (m *PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case wakeMsg:
		return m.handleWake()
	case contextMsg:
		return m.handleContext(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the panel
func (m *PanelModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing LogPanel..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header, m.viewport.View(), m.footer())
}

func (m *PanelModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.viewport.Width = msg.Width
	m.ready = true
	m.rebuild()
	return m, nil
}

func (m *PanelModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.rebuild()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.mode == viewContext {
			m.mode = viewRows
			m.rebuild()
		}
		return m, nil
	}

	if m.mode == viewContext {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.CycleDedup):
		m.setStrategy(nextStrategy(m.panel.Strategy()))
	case key.Matches(msg, m.keys.Labels):
		m.showLabels = !m.showLabels
		m.panel.SetLabelVisibility(m.showLabels)
		m.rebuild()
	case key.Matches(msg, m.keys.Time):
		m.showTime = !m.showTime
		m.panel.SetTimeVisibility(m.showTime)
		m.rebuild()
	case key.Matches(msg, m.keys.ToggleErr):
		m.toggleLevels("error", "fatal")
	case key.Matches(msg, m.keys.ToggleWarn):
		m.toggleLevels("warn")
	case key.Matches(msg, m.keys.ToggleInfo):
		m.toggleLevels("info")
	case key.Matches(msg, m.keys.ToggleDbg):
		m.toggleLevels("debug")
	case key.Matches(msg, m.keys.Scan):
		m.toggleScan()
	case key.Matches(msg, m.keys.Context):
		return m, m.fetchContext(m.currentRow())
	default:
		for i, binding := range m.keys.Strategy {
			if key.Matches(msg, binding) {
				m.setStrategy(strategyKeys[i])
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *PanelModel) handleWake() (tea.Model, tea.Cmd) {
	if rows := m.inbox.drain(); len(rows) > 0 {
		m.store.Append(rows)
		m.status = fmt.Sprintf("%d new rows", len(rows))
	}
	m.refresh()
	return m, m.inbox.wait()
}

func (m *PanelModel) handleContext(msg contextMsg) (tea.Model, tea.Cmd) {
	m.ctxRow, m.ctxBefore, m.ctxAfter, m.ctxErr = msg.row, msg.before, msg.after, msg.err
	m.mode = viewContext
	m.rebuild()
	m.viewport.GotoTop()
	return m, nil
}

func (m *PanelModel) setStrategy(candidate logs.DedupStrategy) {
	next := m.panel.SetDedupStrategy(candidate)
	m.status = "dedup: " + string(next)
	m.refresh()
}

func (m *PanelModel) toggleLevels(names ...string) {
	m.panel.ToggleLogLevels(names)
	hidden := m.store.HiddenLevels()
	if len(hidden) == 0 {
		m.status = "all levels visible"
	} else {
		labels := make([]string, len(hidden))
		for i, l := range hidden {
			labels[i] = l.String()
		}
		m.status = "hidden: " + strings.Join(labels, ", ")
	}
	m.refresh()
}

func (m *PanelModel) toggleScan() {
	switch {
	case m.follower == nil:
		m.status = "scanning needs file input"
	case m.panel.Scanning():
		m.panel.StopScan()
		m.status = "scan stopped"
	default:
		m.panel.StartScan()
	}
	m.rebuild()
}

func (m *PanelModel) startFollowing() {
	if err := m.follower.Start(); err != nil {
		m.log.Warn("failed to start scanning", logger.Err(err))
		m.status = "scan failed: " + err.Error()
		m.panel.StopScan()
		return
	}
	m.status = "scan started"
}

// currentRow is the row at the top of the viewport
func (m *PanelModel) currentRow() *logs.LogRow {
	rows := m.model.Rows.All()
	i := m.viewport.YOffset
	if i < 0 || i >= len(rows) {
		return nil
	}
	return rows[i]
}

func (m *PanelModel) fetchContext(row *logs.LogRow) tea.Cmd {
	if row == nil {
		return nil
	}
	limit := m.opts.ContextLines
	ctrl := m.panel

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), contextTimeout)
		defer cancel()

		var before, after logs.RowSet
		p := pool.New().WithErrors().WithContext(ctx)
		p.Go(func(ctx context.Context) error {
			var err error
			before, err = ctrl.FetchContext(ctx, row, logs.ContextOptions{Limit: limit, Direction: logs.ContextBackward})
			return err
		})
		p.Go(func(ctx context.Context) error {
			var err error
			after, err = ctrl.FetchContext(ctx, row, logs.ContextOptions{Limit: limit, Direction: logs.ContextForward})
			return err
		})
		err := p.Wait()
		return contextMsg{row: row, before: before, after: after, err: err}
	}
}

// refresh pulls the store's latest delivery into the panel
func (m *PanelModel) refresh() {
	m.panel.Deliver(m.store.Snapshot())
	m.rebuild()
}

// rebuild recomputes the render model and the viewport content
func (m *PanelModel) rebuild() {
	m.model = m.panel.RenderModel()
	m.header = m.renderHeader()

	var lines []string
	if m.mode == viewContext {
		lines = m.renderContext()
	} else {
		lines = RenderRows(m.model, m.styles, m.opts.TimestampFormat, m.width)
		if len(lines) == 0 && m.model.Placeholder != "" {
			lines = []string{m.styles.Muted.Render(m.model.Placeholder)}
		}
	}

	if m.height > 0 {
		used := lipgloss.Height(m.header) + lipgloss.Height(m.footer())
		m.viewport.Height = max(1, m.height-used)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *PanelModel) renderHeader() string {
	lines := []string{RenderHeader(m.model, m.styles)}
	if meta := RenderMeta(m.model.Meta, m.styles); meta != "" {
		lines = append(lines, meta)
	}
	if series := RenderSeries(m.model.Series, m.styles); series != "" {
		lines = append(lines, series)
	}
	if reveal := RenderReveal(m.model, m.styles, 30); reveal != "" {
		lines = append(lines, reveal)
	}
	if m.model.Placeholder != "" && m.model.Rows.Len() > 0 {
		lines = append(lines, m.styles.Muted.Render(m.model.Placeholder))
	}
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (m *PanelModel) renderContext() []string {
	if m.ctxErr != nil {
		return []string{m.styles.Level(logs.LevelError).Render("Failed to load context: " + m.ctxErr.Error())}
	}
	if m.ctxRow == nil {
		return nil
	}

	opts := RowOptions{
		ShowTime:        m.showTime,
		ShowLabels:      m.showLabels,
		TimestampFormat: m.opts.TimestampFormat,
		Width:           m.width,
	}
	lines := []string{m.styles.Header.Render(emoji.GetEmoji("context") + " Context")}
	for _, row := range m.ctxBefore {
		lines = append(lines, m.styles.Muted.Render(RenderRow(row, opts, m.styles)))
	}
	lines = append(lines, m.styles.Highlight.Render(RenderRow(m.ctxRow, opts, m.styles)))
	for _, row := range m.ctxAfter {
		lines = append(lines, m.styles.Muted.Render(RenderRow(row, opts, m.styles)))
	}
	return lines
}

func (m *PanelModel) footer() string {
	footer := m.help.View(m.keys)
	if m.status != "" {
		footer = m.styles.Help.Render(m.status) + "\n" + footer
	}
	return footer
}

// Close stops timers and scanning. Safe to call more than once.
func (m *PanelModel) Close() {
	m.closeOnce.Do(func() {
		m.panel.Close()
		if m.panel.Scanning() {
			m.panel.StopScan()
		}
		m.inbox.close()
	})
}

func nextStrategy(current logs.DedupStrategy) logs.DedupStrategy {
	for i, s := range logs.DedupStrategies {
		if s == current {
			return logs.DedupStrategies[(i+1)%len(logs.DedupStrategies)]
		}
	}
	return logs.DedupExact
}

// Run starts the interactive panel and blocks until the user quits
func Run(opts Options) error {
	m := NewPanelModel(opts)
	defer m.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.InputTTY {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	return err
}

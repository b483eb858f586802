package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LogPanel/internal/clock"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
	"github.com/yildizm/LogPanel/internal/source"
	"github.com/yildizm/LogPanel/internal/staged"
)

func plainStyles(t *testing.T) *Styles {
	t.Helper()
	SetColorDisabled(true)
	t.Cleanup(func() { SetColorDisabled(false) })

	styles := GetStyles()
	styles.Highlight = lipgloss.NewStyle().Transform(func(s string) string { return "[" + s + "]" })
	return styles
}

func keyPress(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func testRows() logs.RowSet {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := []struct {
		level logs.LogLevel
		msg   string
	}{
		{logs.LevelInfo, "request served in 12ms"},
		{logs.LevelInfo, "request served in 15ms"},
		{logs.LevelError, "db timeout"},
		{logs.LevelError, "db timeout"},
		{logs.LevelWarn, "slow query"},
	}
	rows := make(logs.RowSet, len(msgs))
	for i, m := range msgs {
		rows[i] = &logs.LogRow{Index: i, Level: m.level, Message: m.msg, Timestamp: base.Add(time.Duration(i) * time.Second)}
	}
	return rows
}

func newTestModel(t *testing.T) (*PanelModel, *clock.Manual) {
	t.Helper()
	plainStyles(t)

	store := source.NewStore(logs.DedupNone, 5)
	store.SetRows(testRows(), []string{"app.log"})

	manual := clock.NewManual(time.Unix(0, 0))
	opts := staged.DefaultOptions()
	opts.Clock = manual

	m := NewPanelModel(Options{
		Store: store,
		Panel: panel.Options{Staged: opts, ShowLabels: true, ShowTime: true},
	})
	t.Cleanup(m.Close)

	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, manual
}

// settle fires pending timers and delivers the wake-up the way the event loop would
func settle(m *PanelModel, manual *clock.Manual) {
	manual.Advance(time.Minute)
	select {
	case <-m.inbox.signal:
		m.Update(wakeMsg{})
	default:
	}
}

func TestPanelModelRevealsRows(t *testing.T) {
	m, manual := newTestModel(t)

	if m.model.Phase != staged.PhaseDeferred {
		t.Errorf("Expected deferred phase before timers fire, got %s", m.model.Phase)
	}
	settle(m, manual)

	if m.model.Phase != staged.PhaseFull {
		t.Errorf("Expected full phase, got %s", m.model.Phase)
	}
	if m.model.Rows.Len() != 5 {
		t.Errorf("Expected 5 rows, got %d", m.model.Rows.Len())
	}
}

func TestPanelModelDedupKeys(t *testing.T) {
	m, manual := newTestModel(t)
	settle(m, manual)

	m.Update(keyPress("d"))
	if m.panel.Strategy() != logs.DedupExact {
		t.Fatalf("Expected exact after d, got %s", m.panel.Strategy())
	}
	if m.model.Rows.Len() != 4 {
		t.Errorf("Expected 4 rows with exact dedup, got %d", m.model.Rows.Len())
	}
	if !hasMeta(m.model.Meta, panel.DedupCountLabel, "1") {
		t.Errorf("Expected dedup count 1 in meta, got %v", m.model.Meta)
	}

	m.Update(keyPress("3"))
	if m.panel.Strategy() != logs.DedupNumbers {
		t.Errorf("Expected numbers after 3, got %s", m.panel.Strategy())
	}
	if m.model.Rows.Len() != 3 {
		t.Errorf("Expected 3 rows with numbers dedup, got %d", m.model.Rows.Len())
	}

	m.Update(keyPress("3"))
	if m.panel.Strategy() != logs.DedupNone {
		t.Errorf("Expected pressing the active strategy to turn dedup off, got %s", m.panel.Strategy())
	}
	if hasMeta(m.model.Meta, panel.DedupCountLabel, "") {
		t.Error("Expected no dedup count without a strategy")
	}
}

func TestPanelModelLevelKeys(t *testing.T) {
	m, manual := newTestModel(t)
	settle(m, manual)

	m.Update(keyPress("e"))
	if m.model.Rows.Len() != 3 {
		t.Errorf("Expected error rows hidden, got %d rows", m.model.Rows.Len())
	}
	if !strings.Contains(m.status, "ERROR") {
		t.Errorf("Expected status to name hidden levels, got %q", m.status)
	}

	m.Update(keyPress("e"))
	if m.model.Rows.Len() != 5 {
		t.Errorf("Expected all rows back, got %d", m.model.Rows.Len())
	}
}

func TestPanelModelDisplayKeys(t *testing.T) {
	m, manual := newTestModel(t)
	settle(m, manual)

	m.Update(keyPress("t"))
	if m.model.ShowTime {
		t.Error("Expected time hidden after t")
	}
	m.Update(keyPress("l"))
	if m.showLabels {
		t.Error("Expected labels toggled off after l")
	}
}

func TestPanelModelScanWithoutFiles(t *testing.T) {
	m, manual := newTestModel(t)
	settle(m, manual)

	m.Update(keyPress("s"))
	if m.panel.Scanning() {
		t.Error("Expected no scan without file input")
	}
	if m.status != "scanning needs file input" {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestPanelModelContext(t *testing.T) {
	m, manual := newTestModel(t)
	settle(m, manual)

	_, cmd := m.Update(keyPress("c"))
	if cmd == nil {
		t.Fatal("Expected a context fetch command")
	}
	msg, ok := cmd().(contextMsg)
	if !ok {
		t.Fatal("Expected a context message")
	}
	if msg.err != nil {
		t.Fatalf("Unexpected error: %v", msg.err)
	}
	if len(msg.before) != 0 || len(msg.after) != 4 {
		t.Errorf("Expected 0 rows before and 4 after the first row, got %d and %d", len(msg.before), len(msg.after))
	}

	m.Update(msg)
	if m.mode != viewContext {
		t.Error("Expected context view")
	}
	if !strings.Contains(m.View(), "Context") {
		t.Error("Expected context view to render")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != viewRows {
		t.Error("Expected esc to return to rows")
	}
}

func TestPanelModelAppendedRows(t *testing.T) {
	m, manual := newTestModel(t)
	settle(m, manual)

	m.inbox.postRows(logs.RowSet{{Level: logs.LevelInfo, Message: "fresh"}})
	settle(m, manual)

	if m.model.Rows.Len() != 6 {
		t.Errorf("Expected appended row to show, got %d rows", m.model.Rows.Len())
	}
	if m.status != "1 new rows" {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestPanelModelQuit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("Expected empty view after quit")
	}
	m.Close()
}

func TestRenderRowsHighlightsFirstBatchOnly(t *testing.T) {
	styles := plainStyles(t)

	first := &logs.LogRow{Level: logs.LevelError, Message: "db timeout"}
	rest := &logs.LogRow{Level: logs.LevelError, Message: "another timeout"}
	model := panel.RenderModel{
		Rows:       staged.Window{First: logs.RowSet{first}, Rest: logs.RowSet{rest}},
		Highlights: []string{"TIMEOUT"},
	}

	lines := RenderRows(model, styles, "", 0)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[timeout]") {
		t.Errorf("Expected highlight in first batch, got %q", lines[0])
	}
	if strings.Contains(lines[1], "[") {
		t.Errorf("Expected no highlight after the first batch, got %q", lines[1])
	}
}

func TestHighlightTermsSinglePass(t *testing.T) {
	styles := plainStyles(t)

	tests := []struct {
		message  string
		terms    []string
		expected string
	}{
		{"error code", []string{"error"}, "[error] code"},
		{"error [code]", []string{"error", "["}, "[error] [[]code]"},
		{"error rate", []string{"error", "r"}, "[error] [r]ate"},
		{"error code", []string{"", "CODE"}, "error [code]"},
		{"error code", nil, "error code"},
	}

	for _, tt := range tests {
		if got := HighlightTerms(tt.message, tt.terms, styles.Highlight); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestRenderHeaderCountsAllRows(t *testing.T) {
	styles := plainStyles(t)
	rows := make(logs.RowSet, 250)
	for i := range rows {
		rows[i] = &logs.LogRow{Index: i, Level: logs.LevelInfo, Message: "line"}
	}

	for _, phase := range []staged.Phase{staged.PhaseDeferred, staged.PhasePartial, staged.PhaseFull} {
		model := panel.RenderModel{
			HasData:   true,
			Phase:     phase,
			Rows:      staged.WindowFor(phase, rows, 100),
			TotalRows: len(rows),
		}
		if got := RenderHeader(model, styles); !strings.Contains(got, "250 rows") {
			t.Errorf("Expected header to count 250 rows in %s, got %q", phase, got)
		}
	}
}

func TestRenderRow(t *testing.T) {
	styles := plainStyles(t)
	row := &logs.LogRow{
		Timestamp:  time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC),
		Level:      logs.LevelWarn,
		Message:    "disk almost full",
		Labels:     map[string]string{"host": "a"},
		Duplicates: 2,
	}

	tests := []struct {
		name     string
		opts     RowOptions
		expected string
	}{
		{"message only", RowOptions{}, "WARN  disk almost full"},
		{"with time", RowOptions{ShowTime: true, TimestampFormat: "15:04:05"}, "12:30:45 WARN  disk almost full"},
		{"with labels", RowOptions{ShowLabels: true}, "WARN  host=a disk almost full"},
		{"with duplicates", RowOptions{ShowDuplicates: true}, "  3x WARN  disk almost full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderRow(row, tt.opts, styles); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderMeta(t *testing.T) {
	styles := plainStyles(t)
	meta := []logs.MetaItem{
		logs.Scalar("Total rows", 5),
		logs.Labels("Common labels", map[string]string{"b": "2", "a": "1"}),
	}

	got := RenderMeta(meta, styles)
	expected := "Total rows: 5  │  Common labels: a=1 b=2"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestRenderSeries(t *testing.T) {
	styles := plainStyles(t)
	series := []logs.SeriesBucket{
		{Counts: map[logs.LogLevel]int{logs.LevelInfo: 4}},
		{Counts: map[logs.LogLevel]int{}},
		{Counts: map[logs.LogLevel]int{logs.LevelError: 1}},
	}

	got := RenderSeries(series, styles)
	if got != "█ ▂" {
		t.Errorf("Expected sparkline %q, got %q", "█ ▂", got)
	}
	if RenderSeries(nil, styles) != "" {
		t.Error("Expected empty sparkline without buckets")
	}
}

func TestRenderReveal(t *testing.T) {
	styles := plainStyles(t)
	rows := make(logs.RowSet, 250)
	for i := range rows {
		rows[i] = &logs.LogRow{Index: i, Level: logs.LevelInfo, Message: "line"}
	}

	model := panel.RenderModel{
		HasData:   true,
		Phase:     staged.PhasePartial,
		Rows:      staged.WindowFor(staged.PhasePartial, rows, 100),
		TotalRows: len(rows),
	}
	got := RenderReveal(model, styles, 10)
	if !strings.Contains(got, "partial") || !strings.Contains(got, "100/250 rows 40%") {
		t.Errorf("Expected partial reveal progress, got %q", got)
	}

	model.Phase = staged.PhaseFull
	model.Rows = staged.WindowFor(staged.PhaseFull, rows, 100)
	if got := RenderReveal(model, styles, 10); got != "" {
		t.Errorf("Expected no progress once fully rendered, got %q", got)
	}
}

func TestNextStrategy(t *testing.T) {
	tests := []struct {
		current  logs.DedupStrategy
		expected logs.DedupStrategy
	}{
		{logs.DedupNone, logs.DedupExact},
		{logs.DedupExact, logs.DedupNumbers},
		{logs.DedupNumbers, logs.DedupSignature},
		{logs.DedupSignature, logs.DedupNone},
	}
	for _, tt := range tests {
		if got := nextStrategy(tt.current); got != tt.expected {
			t.Errorf("Expected %s after %s, got %s", tt.expected, tt.current, got)
		}
	}
}

func hasMeta(meta []logs.MetaItem, label, value string) bool {
	for _, item := range meta {
		if item.Label == label && (value == "" || logs.FormatMetaValue(item.Value) == value) {
			return true
		}
	}
	return false
}

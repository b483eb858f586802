package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LogPanel/internal/emoji"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
	"github.com/yildizm/LogPanel/internal/staged"
	"github.com/yildizm/LogPanel/internal/ui/components"
)

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// RowOptions controls how a single row is drawn
type RowOptions struct {
	ShowTime        bool
	ShowLabels      bool
	ShowDuplicates  bool
	TimestampFormat string
	Highlights      []string
	Width           int
}

// RenderRows draws every visible row of the model, one line each. Only the
// first batch gets highlight terms.
func RenderRows(model panel.RenderModel, styles *Styles, timestampFormat string, width int) []string {
	rows := model.Rows.All()
	lines := make([]string, 0, len(rows))

	opts := RowOptions{
		ShowTime:        model.ShowTime,
		ShowLabels:      model.ShowLabels,
		ShowDuplicates:  model.ShowDuplicates,
		TimestampFormat: timestampFormat,
		Width:           width,
	}
	for i, row := range rows {
		opts.Highlights = nil
		if model.Highlighted(i) {
			opts.Highlights = model.Highlights
		}
		lines = append(lines, RenderRow(row, opts, styles))
	}
	return lines
}

// RenderRow draws one row
func RenderRow(row *logs.LogRow, opts RowOptions, styles *Styles) string {
	var parts []string

	if opts.ShowDuplicates {
		dup := "    "
		if row.Duplicates > 0 {
			dup = fmt.Sprintf("%3dx", row.Duplicates+1)
		}
		parts = append(parts, styles.Badge.Render(dup))
	}

	if opts.ShowTime {
		ts := strings.Repeat(" ", len(timeFormat(opts.TimestampFormat)))
		if !row.Timestamp.IsZero() {
			ts = row.Timestamp.Format(timeFormat(opts.TimestampFormat))
		}
		parts = append(parts, styles.Muted.Render(ts))
	}

	parts = append(parts, styles.Level(row.Level).Render(fmt.Sprintf("%-5s", row.Level.String())))

	if opts.ShowLabels && len(row.Labels) > 0 {
		parts = append(parts, styles.Label.Render(logs.FormatMetaValue(logs.LabelsValue(row.Labels))))
	}

	message := row.Message
	if opts.Width > 0 {
		message = truncate(message, max(10, opts.Width-lipgloss.Width(strings.Join(parts, " "))-1))
	}
	parts = append(parts, HighlightTerms(message, opts.Highlights, styles.Highlight))

	return strings.Join(parts, " ")
}

// HighlightTerms marks case-insensitive matches of terms in message
func HighlightTerms(message string, terms []string, style lipgloss.Style) string {
	re := logs.TermsPattern(terms)
	if re == nil {
		return message
	}
	return re.ReplaceAllStringFunc(message, func(match string) string {
		return style.Render(match)
	})
}

// RenderMeta draws the meta items on one line. Label values render as chips.
func RenderMeta(meta []logs.MetaItem, styles *Styles) string {
	parts := make([]string, 0, len(meta))
	for _, item := range meta {
		var value string
		switch v := item.Value.(type) {
		case logs.LabelsValue:
			chips := make([]string, 0, len(v))
			for _, k := range v.Keys() {
				chips = append(chips, styles.Label.Render(k+"="+v[k]))
			}
			value = strings.Join(chips, " ")
		case logs.ScalarValue:
			value = styles.Body.Render(string(v))
		default:
			value = logs.FormatMetaValue(v)
		}
		parts = append(parts, styles.Muted.Render(item.Label+":")+" "+value)
	}
	return strings.Join(parts, styles.Muted.Render("  │  "))
}

// RenderSeries draws a sparkline of rows per time bucket, colored by the
// most severe level present in each bucket
func RenderSeries(series []logs.SeriesBucket, styles *Styles) string {
	if len(series) == 0 {
		return ""
	}

	peak := 0
	for _, b := range series {
		peak = max(peak, b.Total())
	}
	if peak == 0 {
		return ""
	}

	var sb strings.Builder
	for _, b := range series {
		total := b.Total()
		if total == 0 {
			sb.WriteString(" ")
			continue
		}
		idx := (total*len(sparkChars) - 1) / peak
		idx = min(idx, len(sparkChars)-1)
		sb.WriteString(styles.Level(worstLevel(b)).Render(string(sparkChars[idx])))
	}
	return sb.String()
}

// RenderHeader draws the title line with strategy, phase and scan state
func RenderHeader(model panel.RenderModel, styles *Styles) string {
	parts := []string{styles.Title.Render(emoji.GetEmoji("logs") + " LogPanel")}

	strategy := string(model.Strategy)
	if model.Strategy.Enabled() {
		parts = append(parts, styles.Accent.Render("dedup: "+strategy))
	} else {
		parts = append(parts, styles.Muted.Render("dedup: off"))
	}

	if model.HasData {
		parts = append(parts, styles.Muted.Render(fmt.Sprintf("%d rows", model.TotalRows)))
	}
	if model.Scanning {
		parts = append(parts, styles.Accent.Render(emoji.GetEmoji("scan")+" scanning"))
	}
	return strings.Join(parts, "  ")
}

// RenderReveal draws the staged render progress while rows are held back
func RenderReveal(model panel.RenderModel, styles *Styles, width int) string {
	if !model.HasData || model.Phase == staged.PhaseFull {
		return ""
	}
	return components.NewRevealBar(width).
		SetProgress(model.Rows.Len(), model.TotalRows).
		SetLabel(styles.Muted.Render(model.Phase.String())).
		SetStyles(styles.Accent, styles.Muted).
		Render()
}

func worstLevel(b logs.SeriesBucket) logs.LogLevel {
	worst := logs.LevelUnknown
	for level, n := range b.Counts {
		if n > 0 && level > worst {
			worst = level
		}
	}
	return worst
}

func timeFormat(format string) string {
	if format == "" {
		return "15:04:05.000"
	}
	return format
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 || len(runes) == 0 {
		return "…"
	}
	if len(runes) > width {
		runes = runes[:width]
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

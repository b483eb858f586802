package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts            *termfmt.TerminalOptions
	timestampFormat string
}

// NewTerminal creates a new terminal formatter
func NewTerminal(opts Options) Formatter {
	topts := termfmt.DefaultOptions()
	topts.Color = opts.Color
	topts.Emoji = opts.Emoji

	tsFormat := opts.TimestampFormat
	if tsFormat == "" {
		tsFormat = "2006-01-02 15:04:05.000"
	}
	return &terminalFormatter{opts: topts, timestampFormat: tsFormat}
}

func (f *terminalFormatter) Format(model panel.RenderModel) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	if !model.HasData {
		b.WriteString(model.Placeholder + "\n")
		f.writeSummary(&b, model)
		return []byte(b.String()), nil
	}

	f.writeSummary(&b, model)
	f.writeLevels(&b, model)
	f.writeRows(&b, model)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Log Panel"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeSummary writes the meta items as a tree. Label values become children.
func (f *terminalFormatter) writeSummary(b *strings.Builder, model panel.RenderModel) {
	if len(model.Meta) == 0 {
		return
	}

	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")

	items := make([]termfmt.TreeItem, 0, len(model.Meta))
	for i, item := range model.Meta {
		tree := termfmt.TreeItem{Label: item.Label, Last: i == len(model.Meta)-1}
		switch v := item.Value.(type) {
		case logs.LabelsValue:
			tree.Value = fmt.Sprintf("%d labels", len(v))
			keys := v.Keys()
			for j, k := range keys {
				tree.Children = append(tree.Children, termfmt.TreeItem{Label: k, Value: v[k], Last: j == len(keys)-1})
			}
		default:
			tree.Value = logs.FormatMetaValue(v)
		}
		items = append(items, tree)
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeLevels writes the per-level row share, counting folded duplicates
func (f *terminalFormatter) writeLevels(b *strings.Builder, model panel.RenderModel) {
	counts := make(map[logs.LogLevel]int)
	total := 0
	for _, row := range model.Rows.All() {
		n := 1 + row.Duplicates
		counts[row.Level] += n
		total += n
	}
	if total == 0 {
		return
	}

	var items []termfmt.TreeItem
	for i := len(logs.AllLevels) - 1; i >= 0; i-- {
		level := logs.AllLevels[i]
		n := counts[level]
		if n == 0 {
			continue
		}
		share := float64(n) / float64(total)
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", levelEmoji(level, f.opts), level),
			Value: fmt.Sprintf("%s %s (%.1f%%)", termfmt.CreateConfidenceBar(share, f.opts), formatNumber(n), share*100),
		})
	}
	items[len(items)-1].Last = true

	b.WriteString("Levels\n")
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeRows(b *strings.Builder, model panel.RenderModel) {
	for i, row := range model.Rows.All() {
		var terms []string
		if model.Highlighted(i) {
			terms = model.Highlights
		}
		b.WriteString(f.formatRow(row, model, terms) + "\n")
	}
}

func (f *terminalFormatter) formatRow(row *logs.LogRow, model panel.RenderModel, terms []string) string {
	var parts []string

	if model.ShowDuplicates {
		if row.Duplicates > 0 {
			parts = append(parts, fmt.Sprintf("%3dx", row.Duplicates+1))
		} else {
			parts = append(parts, "    ")
		}
	}
	if model.ShowTime && !row.Timestamp.IsZero() {
		parts = append(parts, row.Timestamp.Format(f.timestampFormat))
	}
	parts = append(parts, fmt.Sprintf("%-5s", row.Level))
	if model.ShowLabels && len(row.Labels) > 0 {
		parts = append(parts, "{"+logs.FormatMetaValue(logs.LabelsValue(row.Labels))+"}")
	}
	parts = append(parts, markTerms(row.Message, terms))

	return strings.Join(parts, " ")
}

// markTerms wraps case-insensitive matches of terms in asterisks
func markTerms(message string, terms []string) string {
	re := logs.TermsPattern(terms)
	if re == nil {
		return message
	}
	return re.ReplaceAllString(message, "**$0**")
}

package formatter

import (
	"fmt"

	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/go-termfmt"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// levelEmoji returns emoji for log levels using go-termfmt
func levelEmoji(level logs.LogLevel, opts *termfmt.TerminalOptions) string {
	switch level {
	case logs.LevelFatal, logs.LevelError:
		return termfmt.GetEmoji("error", opts)
	case logs.LevelWarn:
		return termfmt.GetEmoji("warning", opts)
	case logs.LevelInfo:
		return termfmt.GetEmoji("info", opts)
	default:
		return termfmt.GetEmoji("insight", opts)
	}
}

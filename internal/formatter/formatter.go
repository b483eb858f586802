// Package formatter renders a panel render model for non-interactive output.
package formatter

import (
	"fmt"

	"github.com/yildizm/LogPanel/internal/panel"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(model panel.RenderModel) ([]byte, error)
}

// Options controls terminal output
type Options struct {
	Color           bool
	Emoji           bool
	TimestampFormat string
}

// New returns the formatter for an output format name
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(opts), nil
	case "json":
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: text, json)", format)
	}
}

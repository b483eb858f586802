// Package components holds small drawing helpers used by the panel view.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RevealBar shows how many rows the staged render has made visible
type RevealBar struct {
	Width   int
	Visible int
	Total   int
	Label   string

	Filled lipgloss.Style
	Empty  lipgloss.Style
}

// NewRevealBar creates a bar with unstyled segments
func NewRevealBar(width int) *RevealBar {
	return &RevealBar{
		Width:  width,
		Filled: lipgloss.NewStyle(),
		Empty:  lipgloss.NewStyle(),
	}
}

// SetProgress updates the visible and total row counts
func (r *RevealBar) SetProgress(visible, total int) *RevealBar {
	r.Visible = visible
	r.Total = total
	return r
}

// SetLabel sets the text drawn before the bar
func (r *RevealBar) SetLabel(label string) *RevealBar {
	r.Label = label
	return r
}

// SetStyles sets the styles of the filled and empty segments
func (r *RevealBar) SetStyles(filled, empty lipgloss.Style) *RevealBar {
	r.Filled = filled
	r.Empty = empty
	return r
}

// Done reports whether every row is visible
func (r *RevealBar) Done() bool {
	return r.Total == 0 || r.Visible >= r.Total
}

// Render draws the bar, or nothing once every row is visible
func (r *RevealBar) Render() string {
	if r.Done() || r.Width <= 0 {
		return ""
	}

	ratio := float64(r.Visible) / float64(r.Total)
	if ratio < 0 {
		ratio = 0
	}

	filledWidth := int(float64(r.Width) * ratio)
	bar := r.Filled.Render(strings.Repeat("█", filledWidth)) +
		r.Empty.Render(strings.Repeat("░", r.Width-filledWidth))

	status := fmt.Sprintf("%d/%d rows %.0f%%", r.Visible, r.Total, ratio*100)
	if r.Label != "" {
		return fmt.Sprintf("%s [%s] %s", r.Label, bar, status)
	}
	return fmt.Sprintf("[%s] %s", bar, status)
}

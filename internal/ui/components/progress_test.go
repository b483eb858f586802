package components

import (
	"strings"
	"testing"
)

func TestRevealBarRender(t *testing.T) {
	tests := []struct {
		name     string
		visible  int
		total    int
		expected string
	}{
		{"partial", 100, 400, "[██░░░░░░] 100/400 rows 25%"},
		{"nothing visible", 0, 10, "[░░░░░░░░] 0/10 rows 0%"},
		{"complete", 10, 10, ""},
		{"empty", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRevealBar(8).SetProgress(tt.visible, tt.total).Render()
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRevealBarLabel(t *testing.T) {
	got := NewRevealBar(4).SetProgress(1, 2).SetLabel("partial").Render()
	if !strings.HasPrefix(got, "partial [██░░]") {
		t.Errorf("Expected label before the bar, got %q", got)
	}
}

func TestRevealBarDone(t *testing.T) {
	bar := NewRevealBar(10)
	if !bar.Done() {
		t.Error("Expected an empty bar to be done")
	}
	if bar.SetProgress(5, 10).Done() {
		t.Error("Expected a half revealed bar not to be done")
	}
}

package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/LogPanel/internal/dedup"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
	"github.com/yildizm/LogPanel/internal/staged"
)

func sampleModel() panel.RenderModel {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := logs.RowSet{
		{Index: 0, Timestamp: ts, Level: logs.LevelError, Message: "db timeout", Duplicates: 2, Labels: map[string]string{"host": "a"}},
		{Index: 3, Timestamp: ts.Add(time.Second), Level: logs.LevelInfo, Message: "request ok"},
	}
	rest := logs.RowSet{
		{Index: 4, Level: logs.LevelInfo, Message: "another timeout"},
	}

	return panel.RenderModel{
		HasData:        true,
		Phase:          staged.PhaseFull,
		Strategy:       logs.DedupExact,
		Rows:           staged.Window{First: first, Rest: rest},
		Highlights:     []string{"timeout"},
		ShowTime:       true,
		ShowLabels:     true,
		ShowDuplicates: true,
		Summary:        dedup.Summary{DedupCount: 2, ShowDuplicates: true},
		Meta: []logs.MetaItem{
			logs.Scalar("Total rows", 5),
			logs.Labels("Common labels", map[string]string{"app": "api"}),
			logs.Scalar(panel.DedupCountLabel, 2),
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"text", false},
		{"json", false},
		{"csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format, Options{})
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && f == nil {
				t.Error("Expected a formatter")
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := NewJSON().Format(sampleModel())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var doc JSONOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if doc.Strategy != "exact" || doc.DedupCount != 2 || doc.Phase != "full" {
		t.Errorf("Unexpected header fields: %+v", doc)
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(doc.Rows))
	}
	if !doc.Rows[0].Highlighted || !doc.Rows[1].Highlighted {
		t.Error("Expected first batch rows to be highlighted")
	}
	if doc.Rows[2].Highlighted {
		t.Error("Expected rows after the first batch to stay plain")
	}
	if doc.Rows[0].Duplicates != 2 || doc.Rows[0].Level != "ERROR" {
		t.Errorf("Unexpected first row: %+v", doc.Rows[0])
	}
	if doc.Rows[2].Timestamp != nil {
		t.Error("Expected no timestamp for a row without one")
	}

	if len(doc.Meta) != 3 {
		t.Fatalf("Expected 3 meta items, got %d", len(doc.Meta))
	}
	if doc.Meta[1].Kind != "labels" || doc.Meta[1].Labels["app"] != "api" {
		t.Errorf("Expected labels meta item, got %+v", doc.Meta[1])
	}
	if doc.Meta[2].Kind != "scalar" || doc.Meta[2].Value != "2" {
		t.Errorf("Expected dedup count scalar, got %+v", doc.Meta[2])
	}
}

func TestJSONFormatRespectsDisplayToggles(t *testing.T) {
	model := sampleModel()
	model.ShowTime = false
	model.ShowLabels = false
	model.ShowDuplicates = false

	out, err := NewJSON().Format(model)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var doc JSONOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	first := doc.Rows[0]
	if first.Timestamp != nil || first.Labels != nil || first.Duplicates != 0 {
		t.Errorf("Expected hidden fields to be omitted, got %+v", first)
	}
}

func TestTerminalFormat(t *testing.T) {
	out, err := NewTerminal(Options{TimestampFormat: "15:04:05"}).Format(sampleModel())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	text := string(out)

	expected := []string{
		"Log Panel",
		"Summary",
		"Total rows",
		"Dedup count",
		"Levels",
		"  3x 12:00:00 ERROR {host=a} db **timeout**",
		"12:00:01 INFO  request ok",
		"INFO  another timeout",
	}
	for _, s := range expected {
		if !strings.Contains(text, s) {
			t.Errorf("Expected output to contain %q\n%s", s, text)
		}
	}
	if strings.Contains(text, "another **timeout**") {
		t.Error("Expected no highlight after the first batch")
	}
}

func TestTerminalFormatWithoutData(t *testing.T) {
	model := panel.RenderModel{Placeholder: "No logs found"}
	out, err := NewTerminal(Options{}).Format(model)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "No logs found") {
		t.Errorf("Expected placeholder, got %s", out)
	}
}

func TestMarkTerms(t *testing.T) {
	tests := []struct {
		message  string
		terms    []string
		expected string
	}{
		{"db Timeout again", []string{"timeout"}, "db **Timeout** again"},
		{"no match", []string{"timeout"}, "no match"},
		{"a.b", []string{"."}, "a**.**b"},
		{"plain", nil, "plain"},
		{"plain", []string{""}, "plain"},
		{"error code", []string{"error", "*"}, "**error** code"},
		{"Error rate", []string{"error", "r"}, "**Error** **r**ate"},
	}

	for _, tt := range tests {
		if got := markTerms(tt.message, tt.terms); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.n); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

package logs

import (
	"errors"
	"testing"
	"time"

	"github.com/yildizm/go-logparser"
)

func TestLookupLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"error", LevelError, false},
		{"WARNING", LevelWarn, false},
		{" info ", LevelInfo, false},
		{"trace", LevelDebug, false},
		{"critical", LevelFatal, false},
		{"unknown", LevelUnknown, false},
		{"verbose", LevelUnknown, true},
		{"", LevelUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := LookupLogLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLevel) {
					t.Fatalf("Expected ErrUnknownLevel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseLogLevelIsLenient(t *testing.T) {
	if got := ParseLogLevel("nonsense"); got != LevelUnknown {
		t.Errorf("Expected LevelUnknown, got %v", got)
	}
	if got := ParseLogLevel("Error"); got != LevelError {
		t.Errorf("Expected LevelError, got %v", got)
	}
}

func TestParseDedupStrategy(t *testing.T) {
	for _, s := range DedupStrategies {
		got, err := ParseDedupStrategy(string(s))
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", s, err)
		}
		if got != s {
			t.Errorf("Expected %s, got %s", s, got)
		}
	}

	if got, err := ParseDedupStrategy(""); err != nil || got != DedupNone {
		t.Errorf("Expected empty name to mean none, got %s (%v)", got, err)
	}

	if _, err := ParseDedupStrategy("fuzzy"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
}

func TestFormatMetaValue(t *testing.T) {
	if got := FormatMetaValue(ScalarValue("42")); got != "42" {
		t.Errorf("Expected 42, got %q", got)
	}

	labels := LabelsValue{"service": "api", "env": "prod"}
	if got := FormatMetaValue(labels); got != "env=prod service=api" {
		t.Errorf("Expected sorted labels, got %q", got)
	}

	if labels.Kind() != MetaKindLabels {
		t.Errorf("Expected labels kind")
	}
	if Scalar("Total", 3).Value.Kind() != MetaKindScalar {
		t.Errorf("Expected scalar kind")
	}
}

func TestFromParserEntry(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := &logparser.LogEntry{
		Timestamp: ts,
		Level:     "WARN",
		Message:   "disk almost full",
		Fields:    map[string]interface{}{"host": "db-1", "pct": 91},
	}

	row := FromParserEntry(entry, 7, "app.log")

	if row.Index != 7 || row.Source != "app.log" {
		t.Errorf("Unexpected index/source: %d %s", row.Index, row.Source)
	}
	if row.Level != LevelWarn {
		t.Errorf("Expected WARN, got %v", row.Level)
	}
	if !row.Timestamp.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, row.Timestamp)
	}
	if row.Labels["host"] != "db-1" || row.Labels["pct"] != "91" {
		t.Errorf("Unexpected labels: %v", row.Labels)
	}
	if row.Duplicates != 0 {
		t.Errorf("Expected no duplicates, got %d", row.Duplicates)
	}
}

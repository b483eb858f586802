package logs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/go-logparser"
)

// ErrUnknownLevel is returned by LookupLogLevel for names it does not recognize
var ErrUnknownLevel = errors.New("unknown log level")

// LogLevel represents the severity of a log row
type LogLevel int

const (
	LevelUnknown LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// AllLevels lists every level in ascending severity
var AllLevels = []LogLevel{LevelUnknown, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal}

// String methods for LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses string to LogLevel. Unrecognized input maps to
// LevelUnknown so ingestion never drops a row.
func ParseLogLevel(s string) LogLevel {
	level, err := LookupLogLevel(s)
	if err != nil {
		return LevelUnknown
	}
	return level
}

// LookupLogLevel is the strict form of ParseLogLevel.
func LookupLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "DBUG", "TRACE":
		return LevelDebug, nil
	case "INFO", "INF":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR", "ERR", "EROR":
		return LevelError, nil
	case "FATAL", "CRITICAL", "CRIT":
		return LevelFatal, nil
	case "UNKNOWN":
		return LevelUnknown, nil
	default:
		return LevelUnknown, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// LogRow is one displayed log entry
type LogRow struct {
	Index      int               `json:"index"`
	Timestamp  time.Time         `json:"timestamp"`
	Level      LogLevel          `json:"level"`
	Message    string            `json:"message"`
	Labels     map[string]string `json:"labels,omitempty"`
	Duplicates int               `json:"duplicates,omitempty"`
	Source     string            `json:"source,omitempty"`
	Raw        string            `json:"-"`
}

// RowSet is an ordered sequence of rows in display order
type RowSet []*LogRow

// Len returns the number of rows, treating a nil set as empty
func (s RowSet) Len() int {
	return len(s)
}

// SeriesBucket counts rows per level inside one time bucket
type SeriesBucket struct {
	Start  time.Time        `json:"start"`
	Counts map[LogLevel]int `json:"counts"`
}

// Total returns the number of rows in the bucket across all levels
func (b SeriesBucket) Total() int {
	total := 0
	for _, c := range b.Counts {
		total += c
	}
	return total
}

// Data is one raw delivery from the log producer
type Data struct {
	Rows   RowSet         `json:"rows"`
	Series []SeriesBucket `json:"series,omitempty"`
	Meta   []MetaItem     `json:"meta,omitempty"`
}

// HasRows reports whether the delivery carries at least one row
func (d *Data) HasRows() bool {
	return d != nil && len(d.Rows) > 0
}

// Processed is the deduplicated counterpart of a Data delivery
type Processed struct {
	Rows            RowSet `json:"rows"`
	HasUniqueLabels bool   `json:"has_unique_labels"`
}

// FromParserEntry converts a go-logparser entry into a LogRow
func FromParserEntry(entry *logparser.LogEntry, index int, source string) *LogRow {
	row := &LogRow{
		Index:     index,
		Timestamp: entry.Timestamp,
		Level:     ParseLogLevel(entry.Level),
		Message:   entry.Message,
		Source:    source,
		Raw:       entry.Message,
	}

	if len(entry.Fields) > 0 {
		row.Labels = make(map[string]string, len(entry.Fields))
		for key, value := range entry.Fields {
			row.Labels[key] = fmt.Sprint(value)
		}
	}

	return row
}

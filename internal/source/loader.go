// Package source reads log rows from files and stdin and keeps the raw and
// deduplicated row sets the panel renders.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/yildizm/LogPanel/internal/logger"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/go-logparser"
)

// ErrNoEntries is returned when the input held no parseable log lines
var ErrNoEntries = errors.New("no log entries found")

// StdinName is the source name used for rows read from stdin
const StdinName = "stdin"

// Loader parses log files into rows
type Loader struct {
	Format        string
	MaxLines      int
	MaxLineLength int
	Concurrency   int
	Log           *logger.Logger
}

// NewLoader creates a loader with auto-detected format
func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		Format:        "auto",
		MaxLines:      100000,
		MaxLineLength: 1024 * 1024,
		Concurrency:   4,
		Log:           log.WithComponent("source"),
	}
}

// LoadFiles parses every file concurrently and returns the rows in file
// order, stably sorted by timestamp when more than one file is given.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) (logs.RowSet, error) {
	results := make([]logs.RowSet, len(paths))

	p := pool.New().WithMaxGoroutines(max(1, l.Concurrency)).WithErrors().WithContext(ctx)
	for i, path := range paths {
		p.Go(func(ctx context.Context) error {
			rows, err := l.loadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	var rows logs.RowSet
	for _, r := range results {
		rows = append(rows, r...)
	}
	if len(paths) > 1 {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		})
	}
	if len(rows) == 0 {
		return nil, ErrNoEntries
	}

	reindex(rows, 0)
	l.Log.Info("loaded log rows", logger.Count(len(rows)), logger.F("files", len(paths)))
	return rows, nil
}

func (l *Loader) loadFile(ctx context.Context, path string) (logs.RowSet, error) {
	if err := ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	// #nosec G304 - path is validated above
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.Log.Warn("failed to close file", logger.F("file", path), logger.Err(err))
		}
	}()

	return l.LoadReader(ctx, file, filepath.Base(path))
}

// LoadReader parses all lines from r, naming the rows' source name
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, name string) (logs.RowSet, error) {
	lines, err := l.readLines(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	l.Log.Debug("read lines", logger.F("source", name), logger.Count(len(lines)))

	return l.ParseLines(lines, name)
}

// ParseLines parses already split lines
func (l *Loader) ParseLines(lines []string, name string) (logs.RowSet, error) {
	if len(lines) == 0 {
		return logs.RowSet{}, nil
	}

	parser, err := l.parser()
	if err != nil {
		return nil, err
	}

	entries, err := parser.ParseString(strings.Join(lines, "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse logs: %w", err)
	}

	rows := make(logs.RowSet, len(entries))
	for i := range entries {
		rows[i] = logs.FromParserEntry(&entries[i], i, name)
	}
	return rows, nil
}

func (l *Loader) parser() (logparser.Parser, error) {
	switch l.Format {
	case "", "auto":
		return logparser.New(), nil
	case "json":
		return logparser.NewWithFormat(logparser.FormatJSON), nil
	case "logfmt":
		return logparser.NewWithFormat(logparser.FormatLogfmt), nil
	case "text":
		return logparser.NewWithFormat(logparser.FormatText), nil
	default:
		return nil, fmt.Errorf("unknown format %s. Available formats: auto, json, logfmt, text", l.Format)
	}
}

func (l *Loader) readLines(ctx context.Context, r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	maxLen := l.MaxLineLength
	if maxLen <= 0 {
		maxLen = 1024 * 1024
	}
	scanner.Buffer(make([]byte, min(64*1024, maxLen)), maxLen)

	for scanner.Scan() {
		if l.MaxLines > 0 && len(lines) >= l.MaxLines {
			l.Log.Warn("max lines reached, ignoring the rest of the input", logger.Count(l.MaxLines))
			break
		}
		if len(lines)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return lines, err
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("scanner error: %w", err)
	}
	return lines, nil
}

// ValidateFilePath rejects paths that are empty, traverse upwards or name a directory
func ValidateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, must be a file", path)
	}
	return nil
}

func reindex(rows logs.RowSet, offset int) {
	for i, row := range rows {
		row.Index = offset + i
	}
}

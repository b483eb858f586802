package source

import (
	"context"
	"sort"
	"sync"

	"github.com/yildizm/LogPanel/internal/dedup"
	"github.com/yildizm/LogPanel/internal/logs"
)

// DefaultContextLimit is used when a context fetch does not ask for a limit
const DefaultContextLimit = 10

// Store holds the raw rows and derives the processed rows for the active
// dedup strategy and hidden levels. Every change produces a new delivery;
// delivered slices are never modified afterwards.
type Store struct {
	mu sync.Mutex

	rows          logs.RowSet
	sources       []string
	loaded        bool
	strategy      logs.DedupStrategy
	hidden        map[logs.LogLevel]bool
	seriesBuckets int

	data      *logs.Data
	processed logs.Processed
}

// NewStore creates an empty store
func NewStore(strategy logs.DedupStrategy, seriesBuckets int) *Store {
	if strategy == "" {
		strategy = logs.DedupNone
	}
	return &Store{
		strategy:      strategy,
		hidden:        make(map[logs.LogLevel]bool),
		seriesBuckets: seriesBuckets,
	}
}

// SetRows replaces the raw rows
func (s *Store) SetRows(rows logs.RowSet, sources []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(logs.RowSet(nil), rows...)
	s.sources = append([]string(nil), sources...)
	s.loaded = true
	s.recomputeLocked()
}

// Append adds rows after the existing ones, continuing the index sequence
func (s *Store) Append(rows logs.RowSet) {
	if len(rows) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(logs.RowSet, 0, len(s.rows)+len(rows))
	next = append(next, s.rows...)
	for i, row := range rows {
		appended := *row
		appended.Index = len(s.rows) + i
		next = append(next, &appended)
		if appended.Source != "" && !contains(s.sources, appended.Source) {
			s.sources = append(s.sources, appended.Source)
		}
	}
	s.rows = next
	s.loaded = true
	s.recomputeLocked()
}

// SetDedupStrategy refolds the rows with strategy
func (s *Store) SetDedupStrategy(strategy logs.DedupStrategy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.strategy = strategy
	s.recomputeLocked()
}

// ToggleLevels flips the hidden state of each level
func (s *Store) ToggleLevels(levels []logs.LogLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, level := range levels {
		if s.hidden[level] {
			delete(s.hidden, level)
		} else {
			s.hidden[level] = true
		}
	}
	s.recomputeLocked()
}

// HiddenLevels returns the hidden levels in ascending order
func (s *Store) HiddenLevels() []logs.LogLevel {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make([]logs.LogLevel, 0, len(s.hidden))
	for level := range s.hidden {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// Snapshot returns the latest delivery. Data is nil until rows are loaded.
func (s *Store) Snapshot() (*logs.Data, logs.Processed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.processed
}

// FetchContext returns up to opts.Limit raw rows before or after row
func (s *Store) FetchContext(ctx context.Context, row *logs.LogRow, opts logs.ContextOptions) (logs.RowSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultContextLimit
	}

	pos := row.Index
	if pos < 0 || pos >= len(s.rows) {
		return logs.RowSet{}, nil
	}

	var out logs.RowSet
	if opts.Direction == logs.ContextForward {
		end := min(len(s.rows), pos+1+limit)
		out = s.rows[pos+1 : end]
	} else {
		start := max(0, pos-limit)
		out = s.rows[start:pos]
	}
	return append(logs.RowSet{}, out...), nil
}

func (s *Store) recomputeLocked() {
	if !s.loaded {
		return
	}

	visible := s.rows
	if len(s.hidden) > 0 {
		visible = make(logs.RowSet, 0, len(s.rows))
		for _, row := range s.rows {
			if !s.hidden[row.Level] {
				visible = append(visible, row)
			}
		}
	}

	s.data = &logs.Data{
		Rows:   s.rows,
		Series: BuildSeries(s.rows, s.seriesBuckets),
		Meta:   BuildMeta(s.rows, s.sources),
	}
	s.processed = dedup.Fold(visible, s.strategy)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package panel

import (
	"context"

	"github.com/yildizm/LogPanel/internal/logs"
)

// StrategyOwner recomputes the processed rows when the dedup strategy changes
type StrategyOwner interface {
	SetDedupStrategy(strategy logs.DedupStrategy)
}

// LevelVisibilityOwner owns which log levels are hidden
type LevelVisibilityOwner interface {
	ToggleLevels(levels []logs.LogLevel)
}

// ContextFetcher loads rows surrounding a given row
type ContextFetcher interface {
	FetchContext(ctx context.Context, row *logs.LogRow, opts logs.ContextOptions) (logs.RowSet, error)
}

// ContextFetcherFunc adapts a function to ContextFetcher
type ContextFetcherFunc func(ctx context.Context, row *logs.LogRow, opts logs.ContextOptions) (logs.RowSet, error)

func (f ContextFetcherFunc) FetchContext(ctx context.Context, row *logs.LogRow, opts logs.ContextOptions) (logs.RowSet, error) {
	return f(ctx, row, opts)
}

// noContext always resolves to an empty result
var noContext = ContextFetcherFunc(func(context.Context, *logs.LogRow, logs.ContextOptions) (logs.RowSet, error) {
	return logs.RowSet{}, nil
})

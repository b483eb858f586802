package panel

import (
	"github.com/yildizm/LogPanel/internal/dedup"
	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/staged"
)

// RenderModel is everything the presentation layer needs for one frame
type RenderModel struct {
	HasData  bool
	Phase    staged.Phase
	Strategy logs.DedupStrategy

	// Rows.First receives Highlights, Rows.Rest does not
	Rows       staged.Window
	Highlights []string
	// TotalRows counts processed rows, including those the window holds back
	TotalRows int

	ShowTime        bool
	ShowLabels      bool
	ShowDuplicates  bool
	HasUniqueLabels bool

	Summary dedup.Summary
	Meta    []logs.MetaItem
	Series  []logs.SeriesBucket

	Placeholder string
	Scanning    bool
}

// Highlighted reports whether the row at position i of Rows.All() gets highlighting
func (m RenderModel) Highlighted(i int) bool {
	return i < len(m.Rows.First) && len(m.Highlights) > 0
}

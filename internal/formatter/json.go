package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/LogPanel/internal/logs"
	"github.com/yildizm/LogPanel/internal/panel"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(model panel.RenderModel) ([]byte, error) {
	output := &JSONOutput{
		HasData:         model.HasData,
		Phase:           model.Phase.String(),
		Strategy:        string(model.Strategy),
		DedupCount:      model.Summary.DedupCount,
		ShowDuplicates:  model.ShowDuplicates,
		HasUniqueLabels: model.HasUniqueLabels,
		Placeholder:     model.Placeholder,
		Meta:            createMetaOutputs(model.Meta),
		Series:          createSeriesOutputs(model.Series),
		Rows:            createRowOutputs(model),
	}

	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput is the JSON document for one render model
type JSONOutput struct {
	HasData         bool            `json:"has_data"`
	Phase           string          `json:"phase"`
	Strategy        string          `json:"strategy"`
	DedupCount      int             `json:"dedup_count"`
	ShowDuplicates  bool            `json:"show_duplicates"`
	HasUniqueLabels bool            `json:"has_unique_labels"`
	Placeholder     string          `json:"placeholder,omitempty"`
	Meta            []*MetaOutput   `json:"meta"`
	Series          []*SeriesOutput `json:"series,omitempty"`
	Rows            []*RowOutput    `json:"rows"`
}

// MetaOutput is one meta item. Exactly one of Value and Labels is set.
type MetaOutput struct {
	Label  string            `json:"label"`
	Kind   string            `json:"kind"`
	Value  string            `json:"value,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// SeriesOutput is one time bucket
type SeriesOutput struct {
	Start  time.Time      `json:"start"`
	Counts map[string]int `json:"counts"`
}

// RowOutput is one visible row
type RowOutput struct {
	Index       int               `json:"index"`
	Timestamp   *time.Time        `json:"timestamp,omitempty"`
	Level       string            `json:"level"`
	Message     string            `json:"message"`
	Labels      map[string]string `json:"labels,omitempty"`
	Duplicates  int               `json:"duplicates,omitempty"`
	Source      string            `json:"source,omitempty"`
	Highlighted bool              `json:"highlighted,omitempty"`
}

func createMetaOutputs(meta []logs.MetaItem) []*MetaOutput {
	out := make([]*MetaOutput, 0, len(meta))
	for _, item := range meta {
		m := &MetaOutput{Label: item.Label}
		switch v := item.Value.(type) {
		case logs.LabelsValue:
			m.Kind = "labels"
			m.Labels = map[string]string(v)
		default:
			m.Kind = "scalar"
			m.Value = logs.FormatMetaValue(v)
		}
		out = append(out, m)
	}
	return out
}

func createSeriesOutputs(series []logs.SeriesBucket) []*SeriesOutput {
	out := make([]*SeriesOutput, 0, len(series))
	for _, bucket := range series {
		counts := make(map[string]int, len(bucket.Counts))
		for level, n := range bucket.Counts {
			counts[level.String()] = n
		}
		out = append(out, &SeriesOutput{Start: bucket.Start, Counts: counts})
	}
	return out
}

func createRowOutputs(model panel.RenderModel) []*RowOutput {
	rows := model.Rows.All()
	out := make([]*RowOutput, 0, len(rows))
	for i, row := range rows {
		r := &RowOutput{
			Index:       row.Index,
			Level:       row.Level.String(),
			Message:     row.Message,
			Source:      row.Source,
			Highlighted: model.Highlighted(i),
		}
		if model.ShowTime && !row.Timestamp.IsZero() {
			ts := row.Timestamp
			r.Timestamp = &ts
		}
		if model.ShowLabels {
			r.Labels = row.Labels
		}
		if model.ShowDuplicates {
			r.Duplicates = row.Duplicates
		}
		out = append(out, r)
	}
	return out
}

package source

import (
	"strings"
	"time"

	"github.com/yildizm/LogPanel/internal/dedup"
	"github.com/yildizm/LogPanel/internal/logs"
)

// BuildMeta summarizes raw rows for display above the log list
func BuildMeta(rows logs.RowSet, sources []string) []logs.MetaItem {
	meta := []logs.MetaItem{logs.Scalar("Total rows", len(rows))}

	if common := dedup.CommonLabels(rows); len(common) > 0 {
		meta = append(meta, logs.Labels("Common labels", common))
	}
	if len(sources) > 0 {
		meta = append(meta, logs.Scalar("Sources", strings.Join(sources, ", ")))
	}

	start, end := timeRange(rows)
	if !start.IsZero() && end.After(start) {
		meta = append(meta, logs.Scalar("Time range", end.Sub(start).Round(time.Millisecond)))
	}

	return meta
}

// BuildSeries counts rows per level across evenly sized time buckets.
// Rows without a timestamp are not counted.
func BuildSeries(rows logs.RowSet, buckets int) []logs.SeriesBucket {
	if buckets <= 0 {
		return nil
	}
	start, end := timeRange(rows)
	if start.IsZero() {
		return nil
	}

	span := end.Sub(start)
	width := span / time.Duration(buckets)
	if width <= 0 {
		width = time.Nanosecond
		buckets = 1
	}

	series := make([]logs.SeriesBucket, buckets)
	for i := range series {
		series[i] = logs.SeriesBucket{
			Start:  start.Add(time.Duration(i) * width),
			Counts: make(map[logs.LogLevel]int),
		}
	}

	for _, row := range rows {
		if row.Timestamp.IsZero() {
			continue
		}
		i := int(row.Timestamp.Sub(start) / width)
		if i >= buckets {
			i = buckets - 1
		}
		series[i].Counts[row.Level]++
	}

	return series
}

func timeRange(rows logs.RowSet) (start, end time.Time) {
	for _, row := range rows {
		ts := row.Timestamp
		if ts.IsZero() {
			continue
		}
		if start.IsZero() || ts.Before(start) {
			start = ts
		}
		if ts.After(end) {
			end = ts
		}
	}
	return start, end
}

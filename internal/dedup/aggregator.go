// Package dedup folds adjacent repeated rows and summarizes how much was folded.
package dedup

import "github.com/yildizm/LogPanel/internal/logs"

// Summary describes the duplicates hidden by folding
type Summary struct {
	DedupCount     int  `json:"dedup_count"`
	ShowDuplicates bool `json:"show_duplicates"`
}

// ComputeDedupSummary sums the duplicate counts of an already folded row set.
// Counts are only worth showing when a strategy is active and something was
// actually folded.
func ComputeDedupSummary(rows logs.RowSet, strategy logs.DedupStrategy) Summary {
	count := 0
	for _, row := range rows {
		if row == nil {
			continue
		}
		count += row.Duplicates
	}

	return Summary{
		DedupCount:     count,
		ShowDuplicates: strategy.Enabled() && count > 0,
	}
}

// HasUniqueLabels passes through the producer's decision on whether labels
// differ between rows.
func HasUniqueLabels(processed logs.Processed) bool {
	return processed.HasUniqueLabels
}

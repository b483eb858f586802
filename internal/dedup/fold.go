package dedup

import (
	"regexp"

	"github.com/yildizm/LogPanel/internal/logs"
)

var (
	numbersRegex   = regexp.MustCompile(`\d+`)
	signatureRegex = regexp.MustCompile(`\w`)
)

// Fold collapses runs of adjacent similar rows into their first row and records
// how many rows were folded in its Duplicates count. The input is not modified.
func Fold(rows logs.RowSet, strategy logs.DedupStrategy) logs.Processed {
	processed := logs.Processed{
		HasUniqueLabels: hasUniqueLabels(rows),
	}

	if !strategy.Enabled() {
		processed.Rows = rows
		return processed
	}

	out := make(logs.RowSet, 0, len(rows))
	var (
		last    *logs.LogRow
		lastKey string
	)

	for _, row := range rows {
		if row == nil {
			continue
		}
		key := foldKey(row, strategy)
		if last != nil && key == lastKey {
			last.Duplicates += 1 + row.Duplicates
			continue
		}

		folded := *row
		out = append(out, &folded)
		last = &folded
		lastKey = key
	}

	processed.Rows = out
	return processed
}

// foldKey reduces a row to the text compared under a strategy
func foldKey(row *logs.LogRow, strategy logs.DedupStrategy) string {
	message := row.Message
	switch strategy {
	case logs.DedupNumbers:
		message = numbersRegex.ReplaceAllString(message, "0")
	case logs.DedupSignature:
		message = signatureRegex.ReplaceAllString(message, "")
	}

	return row.Level.String() + "\x00" + message + "\x00" + labelsKey(row.Labels)
}

func labelsKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	return logs.FormatMetaValue(logs.LabelsValue(labels))
}

// CommonLabels returns the label pairs shared by every row
func CommonLabels(rows logs.RowSet) map[string]string {
	var common map[string]string
	for _, row := range rows {
		if row == nil {
			continue
		}
		if common == nil {
			common = make(map[string]string, len(row.Labels))
			for k, v := range row.Labels {
				common[k] = v
			}
			continue
		}
		for k, v := range common {
			if row.Labels[k] != v {
				delete(common, k)
			}
		}
		if len(common) == 0 {
			break
		}
	}
	if common == nil {
		return map[string]string{}
	}
	return common
}

// hasUniqueLabels reports whether any row carries labels beyond the common set
func hasUniqueLabels(rows logs.RowSet) bool {
	common := CommonLabels(rows)
	for _, row := range rows {
		if row == nil {
			continue
		}
		if len(row.Labels) > len(common) {
			return true
		}
	}
	return false
}

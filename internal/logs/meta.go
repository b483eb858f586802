package logs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownStrategy is returned when a dedup strategy name is not recognized
var ErrUnknownStrategy = errors.New("unknown dedup strategy")

// DedupStrategy controls whether and how adjacent similar rows are folded
type DedupStrategy string

const (
	DedupNone      DedupStrategy = "none"
	DedupExact     DedupStrategy = "exact"
	DedupNumbers   DedupStrategy = "numbers"
	DedupSignature DedupStrategy = "signature"
)

// DedupStrategies lists the strategies in the order they are offered to users
var DedupStrategies = []DedupStrategy{DedupNone, DedupExact, DedupNumbers, DedupSignature}

// Enabled reports whether the strategy folds anything at all
func (s DedupStrategy) Enabled() bool {
	return s != DedupNone && s != ""
}

// ParseDedupStrategy parses a strategy name; the empty string means none
func ParseDedupStrategy(name string) (DedupStrategy, error) {
	switch DedupStrategy(strings.ToLower(strings.TrimSpace(name))) {
	case "", DedupNone:
		return DedupNone, nil
	case DedupExact:
		return DedupExact, nil
	case DedupNumbers:
		return DedupNumbers, nil
	case DedupSignature:
		return DedupSignature, nil
	default:
		return DedupNone, fmt.Errorf("%w: %q (must be one of: none, exact, numbers, signature)", ErrUnknownStrategy, name)
	}
}

// MetaKind tags the variant carried by a MetaValue
type MetaKind int

const (
	MetaKindScalar MetaKind = iota
	MetaKindLabels
)

// MetaValue is either a scalar or a labels map
type MetaValue interface {
	Kind() MetaKind
}

// ScalarValue is a single displayable value
type ScalarValue string

func (ScalarValue) Kind() MetaKind { return MetaKindScalar }

// LabelsValue is a set of label pairs, rendered sorted by key
type LabelsValue map[string]string

func (LabelsValue) Kind() MetaKind { return MetaKindLabels }

// Keys returns the label keys in sorted order
func (v LabelsValue) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MetaItem summarizes the row set above the log list
type MetaItem struct {
	Label string    `json:"label"`
	Value MetaValue `json:"value"`
}

// Scalar builds a scalar meta item
func Scalar(label string, value interface{}) MetaItem {
	return MetaItem{Label: label, Value: ScalarValue(fmt.Sprint(value))}
}

// Labels builds a labels meta item
func Labels(label string, labels map[string]string) MetaItem {
	return MetaItem{Label: label, Value: LabelsValue(labels)}
}

// FormatMetaValue renders a meta value as plain text
func FormatMetaValue(v MetaValue) string {
	switch value := v.(type) {
	case ScalarValue:
		return string(value)
	case LabelsValue:
		parts := make([]string, 0, len(value))
		for _, k := range value.Keys() {
			parts = append(parts, k+"="+value[k])
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprint(value)
	}
}

// ContextDirection selects which side of a row to fetch context from
type ContextDirection string

const (
	ContextBackward ContextDirection = "backward"
	ContextForward  ContextDirection = "forward"
)

// ContextOptions parameterizes a row context fetch
type ContextOptions struct {
	Limit     int
	Direction ContextDirection
}

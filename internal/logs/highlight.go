package logs

import (
	"regexp"
	"strings"
)

// TermsPattern compiles terms into one case-insensitive alternation so every
// match is found in a single pass over the original text. Empty terms are
// skipped; nil is returned when nothing remains.
func TermsPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile("(?i)(" + strings.Join(quoted, "|") + ")")
}

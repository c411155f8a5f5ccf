// Package formatting provides parsing and normalization utilities shared
// across domains: model-response JSON recovery, storage identifier
// sanitization, and small value parsers.
package formatting

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var digitRun = regexp.MustCompile(`\d+`)

// Sanitize normalizes free text into an identifier safe for use as a
// storage schema or view name component: lowercased, spaces and hyphens
// mapped to underscores, every other non-alphanumeric rune dropped.
// It is deterministic and idempotent. An empty result is possible and
// must be rejected by callers that provision storage.
func Sanitize(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupNumber extracts the first maximal run of decimal digits from a
// group label, scanning left to right. The second return value reports
// whether a number was found; fallback policy (default vs ask the
// reviewer) belongs to the caller.
func GroupNumber(label string) (int, bool) {
	match := digitRun.FindString(label)
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

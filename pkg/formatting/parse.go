package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON at any
// recovery stage: direct parse, markdown code-fence extraction, or
// brace-span salvage.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse attempts to unmarshal content as JSON into T.
// Recovery stages are attempted in order, first success wins:
//  1. direct parse of the trimmed content
//  2. extraction from a markdown code fence (with or without a json tag)
//  3. salvage of the span between the first '{' and the last '}'
//
// The returned error wraps ErrParseFailed and names the stages attempted,
// so callers can report how far recovery got.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	attempted := []string{"direct"}
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		attempted = append(attempted, "fence")
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}
	}

	if span, ok := braceSpan(content); ok {
		attempted = append(attempted, "salvage")
		if err := json.Unmarshal([]byte(span), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf(
		"%w (attempted %s): %s",
		ErrParseFailed,
		strings.Join(attempted, ", "),
		truncate(content, 200),
	)
}

// braceSpan returns the substring between the first '{' and the last '}' inclusive.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

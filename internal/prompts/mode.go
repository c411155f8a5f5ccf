package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode identifies the diagram layout an extraction targets.
type Mode string

const (
	// ModeFlat extracts a flat categorized list of items.
	ModeFlat Mode = "flat"
	// ModeTree extracts a fishbone cause hierarchy.
	ModeTree Mode = "tree"
)

// ParseMode converts a string to a Mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFlat:
		return ModeFlat, nil
	case ModeTree:
		return ModeTree, nil
	default:
		return "", fmt.Errorf("invalid diagram mode: %q", s)
	}
}

func (m Mode) String() string {
	return string(m)
}

// Valid reports whether the mode is a known diagram layout.
func (m Mode) Valid() bool {
	return m == ModeFlat || m == ModeTree
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

// Package prompts manages the instruction templates sent to the vision model.
// Templates are embedded at build time and may be overridden per deployment by
// placing <mode>.txt files in a configured directory.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/*.txt
var templates embed.FS

// System resolves the prompt template for a diagram mode.
type System interface {
	// Template returns the prompt text for the given mode.
	Template(mode Mode) (string, error)
}

type system struct {
	overrideDir string
}

// New creates a prompt system. If overrideDir is non-empty, files named
// <mode>.txt in that directory take precedence over the embedded templates.
func New(overrideDir string) System {
	return &system{overrideDir: overrideDir}
}

func (s *system) Template(mode Mode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("invalid diagram mode: %q", mode)
	}

	if s.overrideDir != "" {
		path := filepath.Join(s.overrideDir, string(mode)+".txt")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt override %s: %w", path, err)
		}
	}

	data, err := templates.ReadFile("templates/" + string(mode) + ".txt")
	if err != nil {
		return "", fmt.Errorf("read embedded prompt for mode %s: %w", mode, err)
	}

	return string(data), nil
}

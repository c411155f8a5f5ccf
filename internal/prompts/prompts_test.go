package prompts_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"causemap/internal/prompts"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		input   string
		want    prompts.Mode
		wantErr bool
	}{
		{"flat", prompts.ModeFlat, false},
		{"tree", prompts.ModeTree, false},
		{" Flat ", prompts.ModeFlat, false},
		{"TREE", prompts.ModeTree, false},
		{"graph", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := prompts.ParseMode(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	t.Run("embedded flat", func(t *testing.T) {
		sys := prompts.New("")

		text, err := sys.Template(prompts.ModeFlat)
		if err != nil {
			t.Fatalf("Template(flat) error = %v", err)
		}
		if !strings.Contains(text, `"items"`) {
			t.Error("flat template should reference the items key")
		}
	})

	t.Run("embedded tree", func(t *testing.T) {
		sys := prompts.New("")

		text, err := sys.Template(prompts.ModeTree)
		if err != nil {
			t.Fatalf("Template(tree) error = %v", err)
		}
		if !strings.Contains(text, `"causes"`) {
			t.Error("tree template should reference the causes key")
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		sys := prompts.New("")

		if _, err := sys.Template(prompts.Mode("graph")); err == nil {
			t.Error("Template(graph) expected error")
		}
	})

	t.Run("override directory wins", func(t *testing.T) {
		dir := t.TempDir()
		custom := "custom flat instructions"
		if err := os.WriteFile(filepath.Join(dir, "flat.txt"), []byte(custom), 0o644); err != nil {
			t.Fatal(err)
		}

		sys := prompts.New(dir)

		text, err := sys.Template(prompts.ModeFlat)
		if err != nil {
			t.Fatalf("Template(flat) error = %v", err)
		}
		if text != custom {
			t.Errorf("Template(flat) = %q, want override %q", text, custom)
		}
	})

	t.Run("missing override falls back to embedded", func(t *testing.T) {
		sys := prompts.New(t.TempDir())

		text, err := sys.Template(prompts.ModeTree)
		if err != nil {
			t.Fatalf("Template(tree) error = %v", err)
		}
		if !strings.Contains(text, `"causes"`) {
			t.Error("expected embedded tree template on missing override")
		}
	})
}

package listmode

import (
	"errors"
	"strings"
	"testing"
)

func TestIdent(t *testing.T) {
	t.Run("accepts sanitized identifiers", func(t *testing.T) {
		for _, id := range []string{"retail_2024", "q1_marketing", "a"} {
			got, err := ident(id)
			if err != nil {
				t.Errorf("ident(%q) error = %v", id, err)
			}
			if got != id {
				t.Errorf("ident(%q) = %q", id, got)
			}
		}
	})

	t.Run("rejects unsafe identifiers", func(t *testing.T) {
		cases := []string{
			"",
			"Retail",
			"retail 2024",
			"retail-2024",
			"retail;drop schema public",
			"retail'2024",
			strings.Repeat("a", 64),
		}
		for _, id := range cases {
			if _, err := ident(id); !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("ident(%q) error = %v, want ErrInvalidIdentifier", id, err)
			}
		}
	})

	t.Run("accepts 63 byte identifier", func(t *testing.T) {
		id := strings.Repeat("a", 63)
		if _, err := ident(id); err != nil {
			t.Errorf("ident(63 bytes) error = %v", err)
		}
	})
}

func TestEscapeLiteral(t *testing.T) {
	got := escapeLiteral("O'Brien's category")
	want := "O''Brien''s category"
	if got != want {
		t.Errorf("escapeLiteral() = %q, want %q", got, want)
	}
}

func TestRecordValidate(t *testing.T) {
	r := Record{Description: "Late delivery", CategoryName: "Logistics"}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	r.Description = ""
	if err := r.Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("Validate() error = %v, want ErrEmptyDescription", err)
	}

	r = Record{Description: "Uncategorized note"}
	if err := r.Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("Validate() error = %v, want ErrEmptyCategory", err)
	}
}

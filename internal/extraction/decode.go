package extraction

import (
	"encoding/json"
	"fmt"

	"causemap/pkg/formatting"
)

// decodeFlat parses model output into a FlatResult, requiring the "items" key.
func decodeFlat(content string) (*FlatResult, error) {
	if err := requireKey(content, "items"); err != nil {
		return nil, err
	}

	result, err := formatting.Parse[FlatResult](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return &result, nil
}

// decodeTree parses model output into a TreeResult, requiring the "causes" key.
func decodeTree(content string) (*TreeResult, error) {
	if err := requireKey(content, "causes"); err != nil {
		return nil, err
	}

	result, err := formatting.Parse[TreeResult](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return &result, nil
}

// requireKey verifies the salvageable JSON object carries the expected
// top-level key before committing to a typed decode.
func requireKey(content, key string) error {
	obj, err := formatting.Parse[map[string]json.RawMessage](content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if _, ok := obj[key]; !ok {
		return fmt.Errorf("%w: %q", ErrMissingKey, key)
	}

	return nil
}

package listmode

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidIdentifier = errors.New("invalid session identifier")
	ErrNotFound          = errors.New("session not found")
	ErrDuplicate         = errors.New("session already exists")
	ErrEmptyDescription  = errors.New("record description is empty")
	ErrEmptyCategory     = errors.New("record category is empty")
	ErrNoRecords         = errors.New("no records to insert")
)

// MapHTTPStatus translates list-mode errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrEmptyDescription),
		errors.Is(err, ErrEmptyCategory),
		errors.Is(err, ErrNoRecords):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

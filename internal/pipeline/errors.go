package pipeline

import (
	"errors"
	"net/http"

	"causemap/internal/extraction"
	"causemap/internal/fishbone"
	"causemap/internal/listmode"
	"causemap/internal/review"
	"causemap/pkg/storage"
)

var (
	// ErrInvalidSession indicates the requested session name sanitizes to an
	// unusable identifier.
	ErrInvalidSession = errors.New("session name yields no valid identifier")
	// ErrEmptyImage indicates no image data was supplied.
	ErrEmptyImage = errors.New("image data is empty")
)

// MapHTTPStatus translates pipeline errors, including wrapped domain errors,
// to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSession),
		errors.Is(err, ErrEmptyImage),
		errors.Is(err, review.ErrGroupNumberRequired),
		errors.Is(err, review.ErrNoAccepted),
		errors.Is(err, review.ErrEmptyDescription),
		errors.Is(err, review.ErrEmptyCategory),
		errors.Is(err, review.ErrEmptyDetail),
		errors.Is(err, review.ErrEmptyMainCause),
		errors.Is(err, review.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, review.ErrNotFound),
		errors.Is(err, review.ErrExpired):
		return http.StatusNotFound
	case errors.Is(err, extraction.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, extraction.ErrMalformed),
		errors.Is(err, extraction.ErrMissingKey),
		errors.Is(err, extraction.ErrNoCandidates),
		errors.Is(err, extraction.ErrEmptyContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, listmode.ErrNotFound),
		errors.Is(err, fishbone.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, listmode.ErrInvalidIdentifier):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

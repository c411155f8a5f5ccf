// Package pipeline orchestrates the extraction workflow: archive the uploaded
// image, call the vision model, stage the result for human review, and persist
// accepted content once the reviewer signs off.
package pipeline

import (
	"log/slog"

	"causemap/internal/extraction"
	"causemap/internal/fishbone"
	"causemap/internal/listmode"
	"causemap/internal/review"
	"causemap/pkg/storage"
)

// Runtime wires the systems the pipeline operates across.
type Runtime struct {
	Lists     listmode.System
	Fishbone  fishbone.System
	Extractor extraction.System
	// Archive stores uploaded images for audit. Optional; archival failures
	// never block extraction.
	Archive storage.System
	Reviews *review.Store
	Logger  *slog.Logger
}

// Summary reports the outcome of completing a review.
type Summary struct {
	SessionID string   `json:"session_id"`
	Inserted  int      `json:"inserted"`
	Views     []string `json:"views,omitempty"`
}

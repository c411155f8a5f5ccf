package review

import "fmt"

// Stage is a step in the review workflow. A review advances strictly forward:
// setup, then one review stage determined by diagram mode, then saved.
type Stage string

const (
	// StageSetup covers upload and extraction; no reviewable content exists yet.
	StageSetup Stage = "setup"
	// StageCategorize is the flat-mode review stage: items are included,
	// edited, and assigned categories.
	StageCategorize Stage = "categorize"
	// StageVerify is the tree-mode review stage: flattened rows are confirmed
	// or excluded.
	StageVerify Stage = "verify"
	// StageSaved is terminal: accepted content has been persisted.
	StageSaved Stage = "saved"
)

// Event triggers a stage transition.
type Event string

const (
	// EventExtractedFlat fires when flat extraction produces reviewable items.
	EventExtractedFlat Event = "extracted_flat"
	// EventExtractedTree fires when tree extraction produces reviewable rows.
	EventExtractedTree Event = "extracted_tree"
	// EventSaved fires when accepted content is persisted.
	EventSaved Event = "saved"
)

// Transition returns the stage reached by applying event to current.
// Returns ErrInvalidTransition for any pair outside the workflow.
func Transition(current Stage, event Event) (Stage, error) {
	switch {
	case current == StageSetup && event == EventExtractedFlat:
		return StageCategorize, nil
	case current == StageSetup && event == EventExtractedTree:
		return StageVerify, nil
	case current == StageCategorize && event == EventSaved:
		return StageSaved, nil
	case current == StageVerify && event == EventSaved:
		return StageSaved, nil
	default:
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, event)
	}
}

// Terminal reports whether the stage accepts no further events.
func (s Stage) Terminal() bool {
	return s == StageSaved
}

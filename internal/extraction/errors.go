package extraction

import "errors"

var (
	// ErrTransport indicates the model endpoint could not be reached or
	// returned a failure. These errors are retryable.
	ErrTransport = errors.New("extraction transport failure")
	// ErrNoCandidates indicates the model returned no completion choices.
	ErrNoCandidates = errors.New("extraction returned no candidates")
	// ErrEmptyContent indicates the model returned a candidate with no content.
	ErrEmptyContent = errors.New("extraction returned empty content")
	// ErrMalformed indicates the model output could not be decoded into the
	// expected structure. These errors are not retryable; the same image will
	// likely produce the same output.
	ErrMalformed = errors.New("extraction output malformed")
	// ErrMissingKey indicates the decoded output lacks the required top-level key.
	ErrMissingKey = errors.New("extraction output missing required key")
)

// Retryable reports whether the error is worth retrying against the model
// endpoint. Malformed output is deterministic and not retryable.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransport)
}

package fishbone

import "errors"

var (
	ErrEmptySession   = errors.New("fishbone session name is empty")
	ErrEmptyMainCause = errors.New("fishbone row main cause is empty")
	ErrEmptyDetail    = errors.New("fishbone row detail is empty")
	ErrNoRows         = errors.New("fishbone session has no rows")
	ErrNotFound       = errors.New("fishbone session not found")
)

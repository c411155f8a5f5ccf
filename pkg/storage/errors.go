package storage

import "errors"

var (
	ErrNotFound   = errors.New("image not found")
	ErrEmptyKey   = errors.New("image key is empty")
	ErrInvalidKey = errors.New("image key contains invalid path segments")
)

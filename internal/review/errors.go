package review

import "errors"

var (
	ErrNotFound          = errors.New("review not found")
	ErrExpired           = errors.New("review expired")
	ErrInvalidTransition = errors.New("invalid review stage transition")
	ErrEmptyDescription  = errors.New("review item description is empty")
	ErrEmptyCategory     = errors.New("review item category is empty")
	ErrEmptyDetail       = errors.New("review item detail is empty")
	ErrEmptyMainCause    = errors.New("review item main cause is empty")
	ErrNoAccepted        = errors.New("no items accepted for saving")
	ErrGroupNumberRequired = errors.New("group number could not be derived and must be supplied")
)

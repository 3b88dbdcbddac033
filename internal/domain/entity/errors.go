package entity

import "errors"

var (
	ErrIDIsRequired       = errors.New("id is required")
	ErrStatusIsRequired   = errors.New("status is required")
	ErrDriverIsRequired   = errors.New("driver id is required")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrTimestampRequired  = errors.New("fix timestamp is required")
)

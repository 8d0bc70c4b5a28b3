package errors

import "errors"

var (
	ErrNotFound = errors.New("team member not found")

	ErrInvalidID = errors.New("invalid team member ID format")

	ErrInvalidPhone = errors.New("invalid phone number")
)

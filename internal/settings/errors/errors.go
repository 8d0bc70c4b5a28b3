package errors

import "errors"

var (
	ErrNotFound = errors.New("staff settings not found")
)

package errors

import "errors"

var (
	ErrSessionNotFound = errors.New("confirmation session not found")

	ErrRequestNotFound = errors.New("confirmation request not found")

	ErrInvalidID = errors.New("invalid staffing ID format")

	// ErrStatusConflict means a status-guarded update matched no document:
	// the request moved out of the expected status concurrently.
	ErrStatusConflict = errors.New("request status changed concurrently")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrStatusChanged means a conditional status update matched no document
	// because another request moved the booking first.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

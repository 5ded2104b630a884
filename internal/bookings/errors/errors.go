package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrAlreadyTerminal means the booking sits in a state that permits no
	// further transitions.
	ErrAlreadyTerminal = errors.New("booking is in a terminal state")
)

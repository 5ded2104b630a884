package errors

import "errors"

var (
	ErrZoneNotFound = errors.New("zone not found")

	ErrTableNotFound = errors.New("table not found")

	ErrSeatNotFound = errors.New("seat not found")

	// ErrSeatTaken means the seat exists but another booking holds it.
	ErrSeatTaken = errors.New("seat already booked")

	ErrDuplicateZone = errors.New("zone already exists")

	ErrDuplicateTable = errors.New("table already exists in zone")
)

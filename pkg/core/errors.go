package core

import "errors"

// Sentinel errors shared across packages. Check them with errors.Is.
var (
	// ErrInvalidArgument is returned when a mapper receives a record it cannot handle.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRecordNotFound is returned when a record id does not resolve to a published record.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotConnected is returned when a database operation runs before Connect.
	ErrNotConnected = errors.New("database connection not established")
)

package domain

import "errors"

var (
	// ErrSourceUnavailable means the hub provider could not be reached or
	// answered with a non-success status.
	ErrSourceUnavailable = errors.New("hub source unavailable")

	// ErrNotFound means a single-record lookup matched nothing.
	ErrNotFound = errors.New("not found")
)

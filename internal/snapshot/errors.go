package snapshot

import "errors"

var (
	// ErrNotFound is returned when a session has no stored snapshot.
	ErrNotFound = errors.New("no snapshot stored for session")

	// ErrInvalidPattern wraps a regex compile failure. It is reported to
	// the caller with the compiler's message and is never fatal.
	ErrInvalidPattern = errors.New("invalid search pattern")
)

package session

import "errors"

var (
	// ErrNotFound marks an unknown session id.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidArgument marks bad session parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady marks a subtitle artifact requested before the first
	// caption was written.
	ErrNotReady = errors.New("subtitles not ready")

	// ErrSourceFailure marks a segment source that could not be started.
	ErrSourceFailure = errors.New("segment source failure")
)

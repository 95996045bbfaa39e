package tiling

import "errors"

// Caller errors. Nothing has been changed on the host when these are returned.
var (
	// ErrTrackNotFound indicates the request addresses a track the host does not have.
	ErrTrackNotFound = errors.New("track does not exist")

	// ErrInvalidRequest indicates a malformed request, such as a non-positive target length.
	ErrInvalidRequest = errors.New("invalid resize request")
)

// Internal defects.
var (
	// ErrInconsistent indicates the host's state after a primitive call does not match what the arithmetic
	// predicted. Work stops before the next destructive call.
	ErrInconsistent = errors.New("arrangement state does not match the expected result")
)

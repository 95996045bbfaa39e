package host

import "errors"

var (
	// ErrTrackNotFound indicates the track index does not exist in the session.
	ErrTrackNotFound = errors.New("track not found")

	// ErrClipNotFound indicates the clip id is not placed on any track.
	ErrClipNotFound = errors.New("clip not found")

	// ErrWrongTrack indicates a clip was addressed through a track it is not placed on.
	ErrWrongTrack = errors.New("clip is not on this track")

	// ErrInvalidLength indicates a clip would have a non-positive placed length.
	ErrInvalidLength = errors.New("clip length must be positive")

	// ErrOverlapDefect indicates a duplicate was placed over an existing clip. The host's arrangement is
	// corrupt once this happens.
	ErrOverlapDefect = errors.New("duplicate destination overlaps an existing clip")

	// ErrOverlap indicates a seeded clip collides with one already placed.
	ErrOverlap = errors.New("clip overlaps an existing clip")

	// ErrUnknownProperty indicates the property name is not part of the clip property set.
	ErrUnknownProperty = errors.New("unknown clip property")

	// ErrReadOnlyProperty indicates the property cannot be written.
	ErrReadOnlyProperty = errors.New("clip property is read-only")

	// ErrNotLooping indicates a loop region write on a clip whose looping flag is off.
	ErrNotLooping = errors.New("loop region can only be written while looping is enabled")

	// ErrFileNotFound indicates an audio file reference the session does not know about.
	ErrFileNotFound = errors.New("audio file not registered")
)

package domain

import "errors"

var (
	// ErrSlotEmpty is returned by a progress slot that holds no data for the key.
	ErrSlotEmpty = errors.New("progress slot empty")
	// ErrRegionNotFound indicates the region content could not be loaded.
	ErrRegionNotFound = errors.New("region not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the region.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnsupportedVersion is returned when a persisted envelope is newer than this build understands.
	ErrUnsupportedVersion = errors.New("unsupported progress version")
	// ErrInvalidProfile is returned when a player profile fails form validation.
	ErrInvalidProfile = errors.New("invalid player profile")
)

package marker

import "errors"

var (
	// ErrNotInitialized is returned by operations that need a processed
	// template when Process has not been called yet.
	ErrNotInitialized = errors.New("marker: template has not been processed")

	// ErrInvalidName is returned when a marker or subpart name does not match
	// the naming grammar after normalization.
	ErrInvalidName = errors.New("marker: invalid name")

	// ErrNotFound is returned when a valid subpart name has no cached body.
	ErrNotFound = errors.New("marker: subpart not found")
)

package mosaic

import "errors"

var (
	// ErrInvalidArgument reports a non-positive tile size, an empty region or
	// an unsupported option. It is returned before anything is written.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfBounds reports a rectangle or coordinate outside a buffer.
	ErrOutOfBounds = errors.New("out of bounds")
)

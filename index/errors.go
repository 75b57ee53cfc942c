package index

import "errors"

var (
	// ErrInvalidK is returned when a search asks for fewer than one neighbor.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidVector indicates a vector with NaN or infinite components.
	ErrInvalidVector = errors.New("invalid vector")

	// ErrCorruptIndex indicates encoded index bytes could not be decoded.
	ErrCorruptIndex = errors.New("corrupt index data")
)

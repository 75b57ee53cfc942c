package corpus

import "errors"

var (
	// ErrMalformedFile is returned when a corpus file cannot be decoded.
	ErrMalformedFile = errors.New("malformed corpus file")

	// ErrNoPairs is returned when there is nothing to build from.
	ErrNoPairs = errors.New("corpus has no qa pairs")
)

package vectorize

import "errors"

var (
	// ErrNotFitted is returned by Transform before a vocabulary exists.
	ErrNotFitted = errors.New("vectorizer not fitted")

	// ErrEmptyCorpus is returned by Fit when no features can be learned.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrInvalidVocabulary indicates inconsistent vocabulary contents.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")
)

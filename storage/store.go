package storage

import (
	"fmt"

	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/index"
	"github.com/poiesic/qamatch/vectorize"
)

// Store is the immutable triple a retriever searches: the index, the
// vocabulary that produced its vectors and the corpus its rows point into.
type Store struct {
	index       *index.Flat
	vocab       *vectorize.Vocabulary
	corpus      *core.Corpus
	maxFeatures int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxFeatures records the vocabulary cap the store was built with.
func WithMaxFeatures(n int) StoreOption {
	return func(s *Store) {
		s.maxFeatures = n
	}
}

// NewStore groups an index, vocabulary and corpus. It does not check that
// they agree; call Validate for that.
func NewStore(idx *index.Flat, vocab *vectorize.Vocabulary, corpus *core.Corpus, opts ...StoreOption) *Store {
	s := &Store{
		index:       idx,
		vocab:       vocab,
		corpus:      corpus,
		maxFeatures: vectorize.DefaultMaxFeatures,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns the nearest-neighbor index.
func (s *Store) Index() *index.Flat { return s.index }

// Vocabulary returns the frozen vocabulary.
func (s *Store) Vocabulary() *vectorize.Vocabulary { return s.vocab }

// Corpus returns the QA corpus.
func (s *Store) Corpus() *core.Corpus { return s.corpus }

// MaxFeatures returns the vocabulary cap the store was built with.
func (s *Store) MaxFeatures() int { return s.maxFeatures }

// Rows returns the number of corpus rows.
func (s *Store) Rows() int { return s.corpus.Len() }

// Dimension returns the vector dimension, which equals the vocabulary size.
func (s *Store) Dimension() int { return s.vocab.Len() }

// Validate checks that all three components are present and agree on row
// count and dimension.
func (s *Store) Validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil store", ErrMissingArtifact)
	case s.index == nil:
		return fmt.Errorf("%w: index", ErrMissingArtifact)
	case s.vocab == nil:
		return fmt.Errorf("%w: vocabulary", ErrMissingArtifact)
	case s.corpus == nil:
		return fmt.Errorf("%w: corpus", ErrMissingArtifact)
	}
	if s.index.Len() != s.corpus.Len() {
		return fmt.Errorf("%w: index has %d rows, corpus has %d", core.ErrDimensionMismatch, s.index.Len(), s.corpus.Len())
	}
	if s.index.Len() > 0 && s.index.Dimension() != s.vocab.Len() {
		return fmt.Errorf("%w: index dimension %d, vocabulary size %d", core.ErrDimensionMismatch, s.index.Dimension(), s.vocab.Len())
	}
	return nil
}

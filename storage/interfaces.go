package storage

import (
	"context"

	"github.com/poiesic/qamatch/core"
)

// CorpusRepository persists QA pairs keyed by row id.
// Implementations must be thread-safe and support concurrent access.
type CorpusRepository interface {
	// PutCorpus stores every pair of corpus under its row id, replacing
	// whatever was stored before.
	PutCorpus(ctx context.Context, corpus *core.Corpus) error

	// GetPair retrieves the pair stored at row.
	// Returns ErrNotFound if the row doesn't exist.
	GetPair(ctx context.Context, row int) (core.QAPair, error)

	// LoadCorpus reads all rows back in row order.
	// Returns ErrCorruptArtifact if the stored rows are not contiguous from 0.
	LoadCorpus(ctx context.Context) (*core.Corpus, error)

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

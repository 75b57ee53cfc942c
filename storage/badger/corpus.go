package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/storage"
)

// CorpusRepository implements storage.CorpusRepository for BadgerDB.
type CorpusRepository struct {
	backend *Backend
	owned   bool
}

var _ storage.CorpusRepository = (*CorpusRepository)(nil)

// NewCorpusRepository creates a repository on top of an open backend.
// The caller keeps ownership of the backend.
func NewCorpusRepository(backend *Backend) *CorpusRepository {
	return &CorpusRepository{backend: backend}
}

// OpenCorpusRepository opens a writable repository at path. Closing the
// repository closes the underlying database.
func OpenCorpusRepository(path string) (*CorpusRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &CorpusRepository{backend: backend, owned: true}, nil
}

// OpenReadOnlyCorpusRepository opens an existing repository at path for
// reading. Closing the repository closes the underlying database.
func OpenReadOnlyCorpusRepository(path string) (*CorpusRepository, error) {
	backend, err := OpenReadOnlyBackend(path)
	if err != nil {
		return nil, err
	}
	return &CorpusRepository{backend: backend, owned: true}, nil
}

// Close closes the backend if the repository opened it.
func (r *CorpusRepository) Close() error {
	if !r.owned {
		return nil
	}
	return r.backend.Close()
}

// PutCorpus replaces the stored rows with corpus.
func (r *CorpusRepository) PutCorpus(ctx context.Context, corpus *core.Corpus) error {
	if err := r.backend.DropPrefix([]byte(qaRowPrefix)); err != nil {
		return err
	}

	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for row, pair := range corpus.Pairs() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Set(makeRowKey(row), storage.MarshalQAPair(pair)); err != nil {
				return err
			}
		}
		return wb.Set([]byte(qaCountKey), storage.MarshalRow(corpus.Len()))
	})
}

// GetPair retrieves the pair stored at row.
func (r *CorpusRepository) GetPair(ctx context.Context, row int) (core.QAPair, error) {
	if row < 0 || row > maxRow {
		return core.QAPair{}, fmt.Errorf("%w: row %d", storage.ErrNotFound, row)
	}

	var pair core.QAPair
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRowKey(row))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: row %d", storage.ErrNotFound, row)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			pair, err = storage.UnmarshalQAPair(val)
			return err
		})
	}, false)

	return pair, err
}

// LoadCorpus reads all rows back in row order.
func (r *CorpusRepository) LoadCorpus(ctx context.Context) (*core.Corpus, error) {
	var pairs []core.QAPair

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(qaRowPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()

			row, err := parseRowKey(item.Key())
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrCorruptArtifact, err)
			}
			if row != len(pairs) {
				return fmt.Errorf("%w: expected row %d, found %d", storage.ErrCorruptArtifact, len(pairs), row)
			}

			err = item.Value(func(val []byte) error {
				pair, err := storage.UnmarshalQAPair(val)
				if err != nil {
					return err
				}
				pairs = append(pairs, pair)
				return nil
			})
			if err != nil {
				return fmt.Errorf("%w: row %d: %w", storage.ErrCorruptArtifact, row, err)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	count, err := r.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: row count: %w", storage.ErrCorruptArtifact, err)
	}
	if count != len(pairs) {
		return nil, fmt.Errorf("%w: %d rows stored, count says %d", storage.ErrCorruptArtifact, len(pairs), count)
	}

	corpus, err := core.NewCorpus(pairs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrCorruptArtifact, err)
	}
	if corpus.Len() != len(pairs) {
		return nil, fmt.Errorf("%w: duplicate questions in stored rows", storage.ErrCorruptArtifact)
	}
	return corpus, nil
}

// Count returns the number of stored rows, or 0 if nothing was stored.
func (r *CorpusRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(qaCountKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			count, err = storage.UnmarshalRow(val)
			return err
		})
	}, false)

	return count, err
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package artifact saves and loads a complete qamatch store directory.
//
// A store directory holds four artifacts:
//
//	qa_index.bin     nearest-neighbor index (sparse rows, mus encoded)
//	vocabulary.bin   TF-IDF vocabulary (mus encoded)
//	metadata/        BadgerDB database of row id to QA pair
//	manifest.yaml    version, sizes and checksums of the files above
//
// Save writes everything into a sibling staging directory and only then
// swaps it into place, so a failed save never damages the previous store.
// Load is all or nothing: it returns a validated Store or an error.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/index"
	"github.com/poiesic/qamatch/storage"
	"github.com/poiesic/qamatch/storage/badger"
)

// Option configures Save and Load.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.Default().With("component", "artifact"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Save writes store to dir, replacing any store already there.
func Save(ctx context.Context, dir string, store *storage.Store, opts ...Option) error {
	o := newOptions(opts)
	if err := store.Validate(); err != nil {
		return err
	}

	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(parent, filepath.Base(dir)+".staging-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			os.RemoveAll(staging)
		}
	}()

	if err := writeArtifacts(ctx, staging, store, o); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := swap(staging, dir); err != nil {
		return err
	}
	committed = true

	o.logger.Info("store saved", "dir", dir, "rows", store.Rows(), "dimension", store.Dimension())
	return nil
}

func writeArtifacts(ctx context.Context, staging string, store *storage.Store, o *options) error {
	indexData, err := store.Index().MarshalBinary()
	if err != nil {
		return err
	}
	vocabData := storage.MarshalVocabulary(store.Vocabulary())

	indexSum, err := Checksum(indexData)
	if err != nil {
		return err
	}
	vocabSum, err := Checksum(vocabData)
	if err != nil {
		return err
	}

	if err := writeFile(filepath.Join(staging, IndexFile), indexData); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(staging, VocabularyFile), vocabData); err != nil {
		return err
	}

	repo, err := badger.OpenCorpusRepository(filepath.Join(staging, MetadataDir))
	if err != nil {
		return err
	}
	if err := repo.PutCorpus(ctx, store.Corpus()); err != nil {
		repo.Close()
		return err
	}
	if err := repo.Close(); err != nil {
		return err
	}
	metaSums, err := checksumMetadata(filepath.Join(staging, MetadataDir))
	if err != nil {
		return err
	}

	return WriteManifest(filepath.Join(staging, ManifestFile), &Manifest{
		Version:     FormatVersion,
		Rows:        store.Rows(),
		Dimension:   store.Dimension(),
		MaxFeatures: store.MaxFeatures(),
		CreatedAt:   o.now().UTC(),
		Checksums: Checksums{
			Index:      indexSum,
			Vocabulary: vocabSum,
			Metadata:   metaSums,
		},
	})
}

// swap moves staging to dir. An existing dir is renamed aside first and
// restored if the second rename fails.
func swap(staging, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return os.Rename(staging, dir)
	} else if err != nil {
		return err
	}

	aside := fmt.Sprintf("%s.old-%d", dir, time.Now().UnixNano())
	if err := os.Rename(dir, aside); err != nil {
		return err
	}
	if err := os.Rename(staging, dir); err != nil {
		if rerr := os.Rename(aside, dir); rerr != nil {
			return fmt.Errorf("%w (restoring previous store: %w)", err, rerr)
		}
		return err
	}
	return os.RemoveAll(aside)
}

// Load reads and validates the store in dir.
func Load(ctx context.Context, dir string, opts ...Option) (*storage.Store, error) {
	o := newOptions(opts)

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrMissingArtifact, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", storage.ErrMissingArtifact, dir)
	}

	manifest, err := ReadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	indexData, err := readArtifact(dir, IndexFile, manifest.Checksums.Index)
	if err != nil {
		return nil, err
	}
	idx := &index.Flat{}
	if err := idx.UnmarshalBinary(indexData); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptArtifact, IndexFile, err)
	}

	vocabData, err := readArtifact(dir, VocabularyFile, manifest.Checksums.Vocabulary)
	if err != nil {
		return nil, err
	}
	vocab, err := storage.UnmarshalVocabulary(vocabData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptArtifact, VocabularyFile, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metaDir := filepath.Join(dir, MetadataDir)
	if _, err := os.Stat(metaDir); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrMissingArtifact, MetadataDir)
	}
	if err := verifyMetadata(metaDir, manifest.Checksums.Metadata); err != nil {
		return nil, err
	}
	repo, err := badger.OpenReadOnlyCorpusRepository(metaDir)
	if err != nil {
		return nil, err
	}
	corpus, err := repo.LoadCorpus(ctx)
	repo.Close()
	if err != nil {
		return nil, err
	}

	switch {
	case idx.Len() != manifest.Rows:
		return nil, fmt.Errorf("%w: index has %d rows, manifest says %d", core.ErrDimensionMismatch, idx.Len(), manifest.Rows)
	case corpus.Len() != manifest.Rows:
		return nil, fmt.Errorf("%w: metadata has %d rows, manifest says %d", core.ErrDimensionMismatch, corpus.Len(), manifest.Rows)
	case vocab.Len() != manifest.Dimension:
		return nil, fmt.Errorf("%w: vocabulary has %d terms, manifest says %d", core.ErrDimensionMismatch, vocab.Len(), manifest.Dimension)
	}

	store := storage.NewStore(idx, vocab, corpus, storage.WithMaxFeatures(manifest.MaxFeatures))
	if err := store.Validate(); err != nil {
		return nil, err
	}

	o.logger.Info("store loaded", "dir", dir, "rows", store.Rows(), "dimension", store.Dimension())
	return store, nil
}

func readArtifact(dir, name, checksum string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrMissingArtifact, name)
		}
		return nil, err
	}
	if err := verify(name, data, checksum); err != nil {
		return nil, err
	}
	return data, nil
}

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


package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/index"
	"github.com/poiesic/qamatch/storage"
	"github.com/poiesic/qamatch/vectorize"
)

// Option configures Build.
type Option func(*builder)

type builder struct {
	poolSize    int
	maxFeatures int
	logger      *slog.Logger
	progress    io.Writer
}

// WithPoolSize sets the worker pool size for row vectorization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *builder) {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
	}
}

// WithMaxFeatures caps the vocabulary size.
func WithMaxFeatures(n int) Option {
	return func(b *builder) {
		b.maxFeatures = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// WithProgress reports vectorization progress to w.
func WithProgress(w io.Writer) Option {
	return func(b *builder) {
		b.progress = w
	}
}

func newBuilder(opts []Option) *builder {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	b := &builder{
		poolSize:    poolSize,
		maxFeatures: vectorize.DefaultMaxFeatures,
		logger:      slog.Default().With("component", "corpus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates a validated store from pairs. Pairs are deduplicated by
// normalized question with the first occurrence kept; row order follows the
// input order of the kept pairs.
func Build(ctx context.Context, pairs []core.QAPair, opts ...Option) (*storage.Store, error) {
	b := newBuilder(opts)

	corpus, err := core.NewCorpus(pairs...)
	if err != nil {
		return nil, err
	}
	if corpus.Len() == 0 {
		return nil, ErrNoPairs
	}
	if dropped := len(pairs) - corpus.Len(); dropped > 0 {
		b.logger.Info("dropped duplicate questions", "dropped", dropped, "kept", corpus.Len())
	}

	texts := corpus.Texts()
	v := vectorize.New(vectorize.WithMaxFeatures(b.maxFeatures))
	vocab, err := v.Fit(texts)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("vocabulary fitted", "features", vocab.Len())

	vectors, err := b.vectorizeRows(ctx, v, texts)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return nil, err
	}

	store := storage.NewStore(idx, vocab, corpus, storage.WithMaxFeatures(b.maxFeatures))
	if err := store.Validate(); err != nil {
		return nil, err
	}
	b.logger.Info("store built", "rows", store.Rows(), "dimension", store.Dimension())
	return store, nil
}

// vectorizeRows transforms every text on a worker pool. Results are written
// by row so the output order matches texts.
func (b *builder) vectorizeRows(ctx context.Context, v *vectorize.Vectorizer, texts []string) ([][]float32, error) {
	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var tracker *ProgressTracker
	if b.progress != nil {
		tracker = NewProgressTracker(b.progress, len(texts), max(len(texts)/100, 1))
		tracker.Start()
	}

	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for row, text := range texts {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			vec, err := v.Transform(text)
			if err != nil {
				fail(fmt.Errorf("row %d: %w", row, err))
				return
			}
			vectors[row] = vec
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if tracker != nil {
		tracker.Finish()
		b.logger.Info("rows vectorized", "rows", len(texts), "elapsed", tracker.Elapsed())
	}
	return vectors, nil
}

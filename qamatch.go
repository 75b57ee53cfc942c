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

// Package qamatch answers free-text questions from a fixed corpus of
// question/answer pairs. A lexical retrieval stage narrows the corpus to a
// few candidates and a generative oracle confirms or rejects them.
package qamatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/qamatch/ai"
	"github.com/poiesic/qamatch/ai/openai"
	"github.com/poiesic/qamatch/confirm"
	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/corpus"
	"github.com/poiesic/qamatch/retrieval"
	"github.com/poiesic/qamatch/storage"
	"github.com/poiesic/qamatch/storage/artifact"
)

// Matcher ties a loaded store to an oracle provider.
type Matcher struct {
	store     *storage.Store
	provider  ai.AIProvider
	oracle    ai.Oracle
	retriever *retrieval.Retriever
	gate      *confirm.Gate
	k         int
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*options)

type options struct {
	aiConfig       *ai.Config
	provider       ai.AIProvider
	oracleAttempts int
	retryDelay     time.Duration
	k              int
	gateOpts       []confirm.Option
	retrieverOpts  []retrieval.Option
	logger         *slog.Logger
}

// WithAIConfig sets the oracle configuration. Ignored when WithProvider is used.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an existing provider instead of creating one.
// The Matcher takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithOracleRetry retries failed oracle calls with exponential backoff.
func WithOracleRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *options) {
		o.oracleAttempts = maxAttempts
		o.retryDelay = baseDelay
	}
}

// WithK sets how many candidates Answer retrieves. Default is retrieval.DefaultK.
func WithK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.k = k
		}
	}
}

// WithGateOptions passes options to the confirmation gate.
func WithGateOptions(opts ...confirm.Option) Option {
	return func(o *options) {
		o.gateOpts = append(o.gateOpts, opts...)
	}
}

// WithRetrieverOptions passes options to the retriever.
func WithRetrieverOptions(opts ...retrieval.Option) Option {
	return func(o *options) {
		o.retrieverOpts = append(o.retrieverOpts, opts...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open loads the store persisted in dir and connects the oracle.
func Open(dir string, opts ...Option) (*Matcher, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		k:        retrieval.DefaultK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	store, err := artifact.Load(context.Background(), dir, artifact.WithLogger(o.logger))
	if err != nil {
		if o.provider != nil {
			o.provider.Close()
		}
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	m, err := newMatcher(store, provider, o)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return m, nil
}

func newMatcher(store *storage.Store, provider ai.AIProvider, o *options) (*Matcher, error) {
	retriever, err := retrieval.NewRetriever(store, o.retrieverOpts...)
	if err != nil {
		return nil, err
	}

	oracle := provider.Oracle()
	if o.oracleAttempts > 1 {
		oracle = ai.WithRetry(oracle, o.oracleAttempts, o.retryDelay)
	}
	gate, err := confirm.NewGate(oracle, o.gateOpts...)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		store:     store,
		provider:  provider,
		oracle:    oracle,
		retriever: retriever,
		gate:      gate,
		k:         o.k,
		logger:    o.logger,
	}, nil
}

// Close releases the oracle provider.
func (m *Matcher) Close() error {
	if err := m.provider.Close(); err != nil {
		m.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}

// Store returns the loaded store.
func (m *Matcher) Store() *storage.Store {
	return m.store
}

// Retriever returns the default retriever.
func (m *Matcher) Retriever() *retrieval.Retriever {
	return m.retriever
}

// Gate returns the default confirmation gate.
func (m *Matcher) Gate() *confirm.Gate {
	return m.gate
}

// NewRetriever creates an additional retriever over the loaded store.
func (m *Matcher) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(m.store, opts...)
}

// NewGate creates an additional gate over the same oracle as the default
// gate, retries included.
func (m *Matcher) NewGate(opts ...confirm.Option) (*confirm.Gate, error) {
	return confirm.NewGate(m.oracle, opts...)
}

// SearchCandidates runs the retrieval stage only.
func (m *Matcher) SearchCandidates(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	return m.retriever.SearchCandidates(ctx, query, k)
}

// Answer retrieves candidates for query and asks the oracle to confirm one.
//
// Retrieval errors are returned with a Rejected decision and no candidates.
// An oracle failure returns the candidates together with an error wrapping
// confirm.ErrOracleFailed, so the caller may fall back to the top candidate.
func (m *Matcher) Answer(ctx context.Context, query string) (confirm.Decision, []core.SearchResult, error) {
	candidates, err := m.retriever.SearchCandidates(ctx, query, m.k)
	if err != nil {
		return confirm.Reject, nil, err
	}
	decision, err := m.gate.Decide(ctx, query, candidates)
	if err != nil {
		if errors.Is(err, confirm.ErrOracleFailed) {
			m.logger.Warn("confirmation unavailable", "query", query, "candidates", len(candidates))
		}
		return decision, candidates, err
	}
	return decision, candidates, nil
}

// BuildAndSave builds a store from pairs and persists it to dir.
func BuildAndSave(ctx context.Context, pairs []core.QAPair, dir string, opts ...corpus.Option) (*storage.Store, error) {
	store, err := corpus.Build(ctx, pairs, opts...)
	if err != nil {
		return nil, err
	}
	if err := artifact.Save(ctx, dir, store); err != nil {
		return nil, err
	}
	return store, nil
}

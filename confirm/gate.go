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


package confirm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/qamatch/ai"
	"github.com/poiesic/qamatch/core"
)

const (
	// DefaultMaxCandidates is how many candidates the oracle sees.
	DefaultMaxCandidates = 5
	// DefaultThreshold is the equivalence percentage the oracle is asked for.
	DefaultThreshold = 80
)

// Gate asks an oracle to confirm one of the retrieval candidates.
// A Gate holds no mutable state and is safe for concurrent use.
type Gate struct {
	oracle        ai.Oracle
	maxCandidates int
	threshold     int
	systemPrompt  string
	logger        *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithMaxCandidates limits how many candidates are shown to the oracle.
// Values below 1 are ignored.
func WithMaxCandidates(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxCandidates = n
		}
	}
}

// WithThreshold sets the equivalence percentage named in the prompt.
// Values outside 1..100 are ignored.
func WithThreshold(percent int) Option {
	return func(g *Gate) {
		if percent > 0 && percent <= 100 {
			g.threshold = percent
		}
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(g *Gate) {
		if prompt != "" {
			g.systemPrompt = prompt
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate creates a gate backed by oracle.
func NewGate(oracle ai.Oracle, opts ...Option) (*Gate, error) {
	if oracle == nil {
		return nil, ErrOracleRequired
	}
	g := &Gate{
		oracle:        oracle,
		maxCandidates: DefaultMaxCandidates,
		threshold:     DefaultThreshold,
		systemPrompt:  DefaultSystemPrompt,
		logger:        slog.Default().With("component", "confirm-gate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// MaxCandidates returns the candidate cutoff.
func (g *Gate) MaxCandidates() int {
	return g.maxCandidates
}

// Threshold returns the equivalence percentage.
func (g *Gate) Threshold() int {
	return g.threshold
}

// Messages builds the oracle conversation for query and candidates.
func (g *Gate) Messages(query string, candidates []core.SearchResult) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: g.systemPrompt},
		{Role: ai.RoleUser, Content: buildUserPrompt(query, candidates, g.maxCandidates, g.threshold)},
	}
}

// Decide asks the oracle whether any candidate is equivalent to query.
//
// With no candidates the oracle is not called and the decision is Rejected.
// Unparseable replies are Rejected without error. If the oracle call fails the
// decision is Rejected and the returned error wraps ErrOracleFailed.
func (g *Gate) Decide(ctx context.Context, query string, candidates []core.SearchResult) (Decision, error) {
	if len(candidates) == 0 {
		g.logger.Debug("no candidates, skipping oracle")
		return Reject, nil
	}

	reply, err := g.oracle.Complete(ctx, g.Messages(query, candidates))
	if err != nil {
		g.logger.Warn("oracle call failed", "err", err)
		return Reject, fmt.Errorf("%w: %w", ErrOracleFailed, err)
	}

	decision := ParseVerdict(reply)
	g.logger.Debug("oracle decided",
		"verdict", decision.Verdict.String(),
		"candidates", min(len(candidates), g.maxCandidates),
		"reply_length", len(reply))
	return decision, nil
}

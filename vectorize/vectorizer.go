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


// Package vectorize turns normalized text into TF-IDF vectors.
//
// Features are unigrams and adjacent bigrams of tokens with at least two word
// runes. A Vectorizer learns a capped Vocabulary once with Fit and afterwards
// only reads it, so Transform is safe for concurrent use.
package vectorize

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/qamatch/core"
)

// DefaultMaxFeatures caps the vocabulary size when no option overrides it.
const DefaultMaxFeatures = 1000

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithMaxFeatures caps the vocabulary to the n most frequent terms.
// A non-positive n removes the cap.
func WithMaxFeatures(n int) Option {
	return func(v *Vectorizer) {
		v.maxFeatures = n
	}
}

// Vectorizer maps text to L2-normalized TF-IDF vectors.
type Vectorizer struct {
	maxFeatures int
	vocab       *Vocabulary
}

// New creates an unfitted vectorizer.
func New(opts ...Option) *Vectorizer {
	v := &Vectorizer{maxFeatures: DefaultMaxFeatures}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FromVocabulary creates a fitted vectorizer around a previously learned
// vocabulary.
func FromVocabulary(vocab *Vocabulary, opts ...Option) (*Vectorizer, error) {
	if vocab == nil || vocab.Len() == 0 {
		return nil, ErrNotFitted
	}
	v := New(opts...)
	v.vocab = vocab
	return v, nil
}

// MaxFeatures returns the configured vocabulary cap.
func (v *Vectorizer) MaxFeatures() int {
	return v.maxFeatures
}

// Vocabulary returns the learned vocabulary, or nil before Fit.
func (v *Vectorizer) Vocabulary() *Vocabulary {
	return v.vocab
}

// Dimension returns the length of produced vectors.
func (v *Vectorizer) Dimension() int {
	return v.vocab.Len()
}

// Fit learns the vocabulary and IDF weights from texts, replacing any
// previous vocabulary. Texts are expected to be normalized already.
func (v *Vectorizer) Fit(texts []string) (*Vocabulary, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyCorpus
	}

	counts := make(map[string]int)
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range features(text) {
			counts[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no tokens found", ErrEmptyCorpus)
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		slices.SortFunc(terms, func(a, b string) int {
			if c := cmp.Compare(counts[b], counts[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		terms = terms[:v.maxFeatures]
	}
	slices.Sort(terms)

	n := float64(len(texts))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vocab, err := NewVocabulary(terms, idf)
	if err != nil {
		return nil, err
	}
	v.vocab = vocab
	return vocab, nil
}

// Transform computes the TF-IDF vector of text. Terms outside the vocabulary
// are ignored; text without known terms yields the zero vector.
func (v *Vectorizer) Transform(text string) ([]float32, error) {
	if v.vocab == nil {
		return nil, ErrNotFitted
	}

	weights := make(map[int]float64)
	for _, term := range features(text) {
		if i, ok := v.vocab.Index(term); ok {
			weights[i] += v.vocab.Weight(i)
		}
	}

	vec := make([]float32, v.vocab.Len())
	if len(weights) == 0 {
		return vec, nil
	}

	norm := 0.0
	for _, w := range weights {
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec, nil
}

// features returns the unigram and bigram terms of text in order.
func features(text string) []string {
	tokens := core.Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(tokens)-1)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

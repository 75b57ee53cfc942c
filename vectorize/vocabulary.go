package vectorize

import (
	"fmt"
	"math"
	"slices"
)

// Vocabulary is a frozen term to feature-index mapping with one IDF weight per
// term. Terms are stored in ascending order and a term's position is its
// feature index.
type Vocabulary struct {
	terms []string
	idf   []float64
	index map[string]int
}

// NewVocabulary rebuilds a vocabulary from its terms and IDF weights.
// Terms must be strictly ascending and every weight must be finite and
// positive.
func NewVocabulary(terms []string, idf []float64) (*Vocabulary, error) {
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("%w: %d terms but %d weights", ErrInvalidVocabulary, len(terms), len(idf))
	}
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		if term == "" {
			return nil, fmt.Errorf("%w: empty term at %d", ErrInvalidVocabulary, i)
		}
		if i > 0 && terms[i-1] >= term {
			return nil, fmt.Errorf("%w: terms not strictly ascending at %d", ErrInvalidVocabulary, i)
		}
		w := idf[i]
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, fmt.Errorf("%w: bad weight %v for %q", ErrInvalidVocabulary, w, term)
		}
		index[term] = i
	}
	return &Vocabulary{
		terms: slices.Clone(terms),
		idf:   slices.Clone(idf),
		index: index,
	}, nil
}

// Len returns the number of features, which is also the vector dimension.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Index returns the feature index of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[term]
	return i, ok
}

// Terms returns a copy of the terms in feature order.
func (v *Vocabulary) Terms() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.terms)
}

// IDF returns a copy of the IDF weights in feature order.
func (v *Vocabulary) IDF() []float64 {
	if v == nil {
		return nil
	}
	return slices.Clone(v.idf)
}

// Weight returns the IDF weight of feature i.
func (v *Vocabulary) Weight(i int) float64 {
	return v.idf[i]
}

package vectorize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVocabulary(t *testing.T) {
	tests := []struct {
		name    string
		terms   []string
		idf     []float64
		wantErr bool
	}{
		{"valid", []string{"alpha", "beta"}, []float64{1, 1.5}, false},
		{"empty", nil, nil, false},
		{"length mismatch", []string{"alpha"}, []float64{1, 2}, true},
		{"unsorted", []string{"beta", "alpha"}, []float64{1, 1}, true},
		{"duplicate", []string{"alpha", "alpha"}, []float64{1, 1}, true},
		{"empty term", []string{""}, []float64{1}, true},
		{"nan weight", []string{"alpha"}, []float64{math.NaN()}, true},
		{"zero weight", []string{"alpha"}, []float64{0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vocab, err := NewVocabulary(tt.terms, tt.idf)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVocabulary)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.terms), vocab.Len())
		})
	}
}

func TestVocabulary_Copies(t *testing.T) {
	terms := []string{"alpha", "beta"}
	vocab, err := NewVocabulary(terms, []float64{1, 2})
	require.NoError(t, err)

	terms[0] = "mutated"
	assert.Equal(t, "alpha", vocab.Terms()[0])

	out := vocab.IDF()
	out[0] = 99
	assert.Equal(t, 1.0, vocab.Weight(0))
}

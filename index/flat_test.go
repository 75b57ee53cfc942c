package index

import (
	"math"
	"sync"
	"testing"

	"github.com/poiesic/qamatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 0, 0},
	}
}

func TestBuild(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		idx, err := Build(testVectors())
		require.NoError(t, err)
		assert.Equal(t, 4, idx.Len())
		assert.Equal(t, 3, idx.Dimension())
	})

	t.Run("empty", func(t *testing.T) {
		idx, err := Build(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, idx.Len())

		got, err := idx.Search([]float32{1, 2}, 3)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := Build([][]float32{{1, 2}, {1}})
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("nan component", func(t *testing.T) {
		_, err := Build([][]float32{{float32(math.NaN())}})
		assert.ErrorIs(t, err, ErrInvalidVector)
	})

	t.Run("copies input", func(t *testing.T) {
		vectors := [][]float32{{1, 0}}
		idx, err := Build(vectors)
		require.NoError(t, err)
		vectors[0][0] = 100

		got, err := idx.Search([]float32{1, 0}, 1)
		require.NoError(t, err)
		assert.Zero(t, got[0].Distance)
	})
}

func TestSearch(t *testing.T) {
	idx, err := Build(testVectors())
	require.NoError(t, err)

	tests := []struct {
		name  string
		query []float32
		k     int
		want  []Neighbor
	}{
		{
			name:  "exact match first, ties by row",
			query: []float32{1, 0, 0},
			k:     3,
			want: []Neighbor{
				{Row: 0, Distance: 0},
				{Row: 3, Distance: 0},
				{Row: 1, Distance: 2},
			},
		},
		{
			name:  "k larger than rows",
			query: []float32{0, 0, 1},
			k:     10,
			want: []Neighbor{
				{Row: 2, Distance: 0},
				{Row: 0, Distance: 2},
				{Row: 1, Distance: 2},
				{Row: 3, Distance: 2},
			},
		},
		{
			name:  "zero query is equidistant",
			query: []float32{0, 0, 0},
			k:     2,
			want: []Neighbor{
				{Row: 0, Distance: 1},
				{Row: 1, Distance: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Search(tt.query, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_Errors(t *testing.T) {
	idx, err := Build(testVectors())
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = idx.Search([]float32{1, 0, 0}, -1)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = idx.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestSearch_Concurrent(t *testing.T) {
	idx, err := Build(testVectors())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := idx.Search([]float32{0, 1, 0}, 1)
			assert.NoError(t, err)
			assert.Equal(t, []Neighbor{{Row: 1, Distance: 0}}, got)
		}()
	}
	wg.Wait()
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity(0))
	assert.Equal(t, 0.5, Similarity(1))
	assert.InDelta(t, 1.0/3.0, Similarity(2), 1e-12)
	assert.Greater(t, Similarity(0.1), Similarity(0.2))
}

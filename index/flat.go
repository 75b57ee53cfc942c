package index

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/qamatch/core"
)

// Neighbor is one search hit: a row id and its squared L2 distance to the
// query.
type Neighbor struct {
	Row      int
	Distance float64
}

// Flat is an exhaustive squared-L2 index.
type Flat struct {
	dim  int
	rows [][]float32
}

// Build creates a flat index over vectors. Row i of the index is vectors[i].
// Every vector must have the same length. The vectors are copied.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return &Flat{}, nil
	}
	dim := len(vectors[0])
	rows := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: row %d has %d components, want %d", core.ErrDimensionMismatch, i, len(v), dim)
		}
		for _, x := range v {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return nil, fmt.Errorf("%w: row %d", ErrInvalidVector, i)
			}
		}
		rows[i] = slices.Clone(v)
	}
	return &Flat{dim: dim, rows: rows}, nil
}

// Len returns the number of indexed rows.
func (f *Flat) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// Dimension returns the vector length shared by all rows.
func (f *Flat) Dimension() int {
	if f == nil {
		return 0
	}
	return f.dim
}

// Search returns the min(k, Len()) rows closest to query, ordered by
// ascending distance with ties broken by ascending row.
func (f *Flat) Search(query []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if f.Len() == 0 {
		return []Neighbor{}, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d components, index has %d", core.ErrDimensionMismatch, len(query), f.dim)
	}

	all := make([]Neighbor, len(f.rows))
	for i, row := range f.rows {
		all[i] = Neighbor{Row: i, Distance: squaredL2(query, row)}
	}
	slices.SortFunc(all, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})

	if k > len(all) {
		k = len(all)
	}
	return all[:k:k], nil
}

// Similarity maps a squared L2 distance onto (0, 1]. Identical vectors score 1.
func Similarity(distance float64) float64 {
	return 1 / (1 + distance)
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

package index

import (
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// TF-IDF rows are mostly zeros, so only non-zero components are written.
//
// Layout: dim, rows, then per row: nnz followed by nnz (column, value) pairs
// with strictly ascending columns. Counts and columns are varints, values are
// raw float32.

// Decoding limits. Rows are decoded densely, so the product of rows and
// dimension is bounded as well as the dimension itself.
const (
	maxDimension = 1 << 24
	maxCells     = 1 << 28
)

// MarshalBinary encodes the index.
func (f *Flat) MarshalBinary() ([]byte, error) {
	size := varint.Int.Size(f.Dimension()) + varint.Int.Size(f.Len())
	for _, row := range f.rows {
		nnz := 0
		for col, x := range row {
			if x != 0 {
				nnz++
				size += varint.Int.Size(col) + raw.Float32.Size(x)
			}
		}
		size += varint.Int.Size(nnz)
	}

	bs := make([]byte, size)
	n := varint.Int.Marshal(f.Dimension(), bs)
	n += varint.Int.Marshal(f.Len(), bs[n:])
	for _, row := range f.rows {
		nnz := 0
		for _, x := range row {
			if x != 0 {
				nnz++
			}
		}
		n += varint.Int.Marshal(nnz, bs[n:])
		for col, x := range row {
			if x != 0 {
				n += varint.Int.Marshal(col, bs[n:])
				n += raw.Float32.Marshal(x, bs[n:])
			}
		}
	}
	return bs[:n], nil
}

// UnmarshalBinary replaces the index contents with the decoded data.
func (f *Flat) UnmarshalBinary(data []byte) error {
	n := 0
	readInt := func(what string) (int, error) {
		v, m, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrCorruptIndex, what, err)
		}
		if v < 0 {
			return 0, fmt.Errorf("%w: negative %s", ErrCorruptIndex, what)
		}
		n += m
		return v, nil
	}

	dim, err := readInt("dimension")
	if err != nil {
		return err
	}
	if dim > maxDimension {
		return fmt.Errorf("%w: dimension %d too large", ErrCorruptIndex, dim)
	}
	count, err := readInt("row count")
	if err != nil {
		return err
	}
	// Every row takes at least one byte.
	if count > len(data)-n {
		return fmt.Errorf("%w: row count %d exceeds data", ErrCorruptIndex, count)
	}
	if dim > 0 && count > maxCells/dim {
		return fmt.Errorf("%w: %d rows of dimension %d too large", ErrCorruptIndex, count, dim)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		nnz, err := readInt("row length")
		if err != nil {
			return err
		}
		if nnz > dim {
			return fmt.Errorf("%w: row %d has %d entries for dimension %d", ErrCorruptIndex, i, nnz, dim)
		}
		row := make([]float32, dim)
		prev := -1
		for range nnz {
			col, err := readInt("column")
			if err != nil {
				return err
			}
			if col <= prev || col >= dim {
				return fmt.Errorf("%w: row %d column %d out of order", ErrCorruptIndex, i, col)
			}
			prev = col
			x, m, err := raw.Float32.Unmarshal(data[n:])
			if err != nil {
				return fmt.Errorf("%w: row %d value: %w", ErrCorruptIndex, i, err)
			}
			n += m
			row[col] = x
		}
		vectors[i] = row
	}
	if n != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptIndex, len(data)-n)
	}

	built, err := Build(vectors)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	}
	if count == 0 {
		built.dim = dim
	}
	*f = *built
	return nil
}

package core

import "fmt"

// Corpus is the ordered, immutable collection of QA pairs behind an index.
// The position of a pair is its row id.
type Corpus struct {
	pairs []QAPair
}

// NewCorpus validates pairs and removes duplicates by identity key.
// The first occurrence of a key wins and relative order is preserved.
func NewCorpus(pairs ...QAPair) (*Corpus, error) {
	seen := make(map[string]struct{}, len(pairs))
	kept := make([]QAPair, 0, len(pairs))
	for i, pair := range pairs {
		if err := ValidateQAPair(pair); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		key := pair.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, pair)
	}
	return &Corpus{pairs: kept}, nil
}

// Len returns the number of pairs.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pairs)
}

// At returns the pair stored at row.
func (c *Corpus) At(row int) (QAPair, error) {
	if row < 0 || row >= c.Len() {
		return QAPair{}, fmt.Errorf("%w: %d (corpus has %d rows)", ErrRowOutOfRange, row, c.Len())
	}
	return c.pairs[row], nil
}

// Pairs returns a copy of the pairs in row order.
func (c *Corpus) Pairs() []QAPair {
	if c == nil {
		return nil
	}
	out := make([]QAPair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Texts returns the indexed text of every pair in row order.
func (c *Corpus) Texts() []string {
	texts := make([]string, c.Len())
	for i, pair := range c.Pairs() {
		texts[i] = pair.Text()
	}
	return texts
}

package corpus

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/vectorize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedPairs(n int) []core.QAPair {
	pairs := make([]core.QAPair, n)
	for i := range pairs {
		pairs[i] = core.QAPair{
			Question: fmt.Sprintf("How does feature f%03d work?", i),
			Answer:   fmt.Sprintf("Feature f%03d works through mechanism m%d.", i, i%7),
		}
	}
	return pairs
}

func TestBuild(t *testing.T) {
	pairs := generatedPairs(200)
	store, err := Build(context.Background(), pairs, WithPoolSize(4))
	require.NoError(t, err)
	require.NoError(t, store.Validate())

	assert.Equal(t, 200, store.Rows())
	assert.Equal(t, store.Vocabulary().Len(), store.Index().Dimension())
	assert.LessOrEqual(t, store.Vocabulary().Len(), vectorize.DefaultMaxFeatures)
	assert.Equal(t, pairs, store.Corpus().Pairs())
}

func TestBuild_RowOrderMatchesVectors(t *testing.T) {
	pairs := generatedPairs(64)
	store, err := Build(context.Background(), pairs, WithPoolSize(8))
	require.NoError(t, err)

	v, err := vectorize.FromVocabulary(store.Vocabulary())
	require.NoError(t, err)

	for row, pair := range pairs {
		vec, err := v.Transform(pair.Text())
		require.NoError(t, err)
		got, err := store.Index().Search(vec, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, row, got[0].Row, "row %d", row)
		assert.InDelta(t, 0, got[0].Distance, 1e-9)
	}
}

func TestBuild_Deduplicates(t *testing.T) {
	pairs := []core.QAPair{
		{Question: "What is a closure?", Answer: "first"},
		{Question: "what is a closure", Answer: "second"},
		{Question: "What is hoisting?", Answer: "third"},
	}
	store, err := Build(context.Background(), pairs)
	require.NoError(t, err)

	require.Equal(t, 2, store.Rows())
	p, err := store.Corpus().At(0)
	require.NoError(t, err)
	assert.Equal(t, "first", p.Answer)
}

func TestBuild_MaxFeatures(t *testing.T) {
	store, err := Build(context.Background(), generatedPairs(50), WithMaxFeatures(16))
	require.NoError(t, err)
	assert.Equal(t, 16, store.Dimension())
	assert.Equal(t, 16, store.MaxFeatures())
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPairs)

	_, err = Build(context.Background(), []core.QAPair{{Question: "q", Answer: ""}})
	assert.ErrorIs(t, err, core.ErrInvalidQAPair)

	_, err = Build(context.Background(), []core.QAPair{{Question: "a", Answer: "b"}})
	assert.ErrorIs(t, err, vectorize.ErrEmptyCorpus)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Build(ctx, generatedPairs(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Progress(t *testing.T) {
	var buf bytes.Buffer
	_, err := Build(context.Background(), generatedPairs(20), WithProgress(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "20/20")
	assert.Contains(t, buf.String(), "100.0%")
}

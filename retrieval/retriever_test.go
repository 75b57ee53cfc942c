package retrieval

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/corpus"
	"github.com/poiesic/qamatch/index"
	"github.com/poiesic/qamatch/storage"
	"github.com/poiesic/qamatch/vectorize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jsPairs = []core.QAPair{
	{Question: "What is a closure in JavaScript?", Answer: "A function bundled with references to its surrounding state."},
	{Question: "What is hoisting in JavaScript?", Answer: "Declarations are moved to the top of their scope before execution."},
	{Question: "How does the event loop work?", Answer: "It runs queued callbacks once the call stack is empty."},
	{Question: "What is the difference between let and var?", Answer: "let is block scoped while var is function scoped."},
	{Question: "What is a promise?", Answer: "An object representing the eventual result of an asynchronous operation."},
	{Question: "What does the typeof operator return?", Answer: "A string naming the type of its operand."},
}

func newStore(t *testing.T, pairs ...core.QAPair) *storage.Store {
	t.Helper()
	store, err := corpus.Build(context.Background(), pairs, corpus.WithPoolSize(2))
	require.NoError(t, err)
	return store
}

func TestNewRetriever(t *testing.T) {
	store := newStore(t, jsPairs...)

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewRetriever(store)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with custom logger", func(t *testing.T) {
		r, err := NewRetriever(store, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		r, err := NewRetriever(store, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewRetriever(nil)
		assert.Equal(t, ErrStoreRequired, err)
	})
}

func TestSearchCandidates_SingleEntryCorpus(t *testing.T) {
	store := newStore(t, core.QAPair{
		Question: "What is a closure?",
		Answer:   "A function bundled with its lexical scope.",
	})
	r, err := NewRetriever(store)
	require.NoError(t, err)

	results, err := r.SearchCandidates(context.Background(), "closure", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Row)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "A function bundled with its lexical scope.", results[0].Answer)
}

func TestSearchCandidates_FewerRowsThanK(t *testing.T) {
	store := newStore(t, jsPairs[:2]...)
	r, err := NewRetriever(store)
	require.NoError(t, err)

	results, err := r.SearchCandidates(context.Background(), "javascript closure", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchCandidates_Properties(t *testing.T) {
	store := newStore(t, jsPairs...)
	r, err := NewRetriever(store)
	require.NoError(t, err)

	queries := []string{
		"What's a closure?",
		"explain the EVENT LOOP",
		"let vs var",
		"completely unrelated gardening tips",
		"",
		"？！",
	}

	for _, q := range queries {
		for _, k := range []int{1, 3, DefaultK, 100} {
			results, err := r.SearchCandidates(context.Background(), q, k)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(results), k)
			assert.LessOrEqual(t, len(results), store.Rows())

			for i, res := range results {
				assert.Equal(t, i+1, res.Rank)
				assert.Greater(t, res.Similarity, 0.0)
				assert.LessOrEqual(t, res.Similarity, 1.0)
				if i > 0 {
					assert.GreaterOrEqual(t, res.Distance, results[i-1].Distance)
				}
			}
		}
	}
}

func TestSearchCandidates_BestMatch(t *testing.T) {
	store := newStore(t, jsPairs...)
	r, err := NewRetriever(store)
	require.NoError(t, err)

	tests := []struct {
		query   string
		wantRow int
	}{
		{"What is a closure in JavaScript", 0},
		{"how does the event loop work?", 2},
		{"difference between LET and VAR", 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := r.SearchCandidates(context.Background(), tt.query, 3)
			require.NoError(t, err)
			require.NotEmpty(t, results)
			assert.Equal(t, tt.wantRow, results[0].Row)
		})
	}
}

func TestSearchCandidates_InvalidK(t *testing.T) {
	r, err := NewRetriever(newStore(t, jsPairs...))
	require.NoError(t, err)

	_, err = r.SearchCandidates(context.Background(), "closure", 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}

func TestSearchCandidates_DimensionMismatch(t *testing.T) {
	good := newStore(t, jsPairs...)

	// Vocabulary learned from a different corpus, so its size differs from
	// the index dimension.
	otherVocab, err := vectorize.New().Fit([]string{"entirely different words"})
	require.NoError(t, err)
	require.NotEqual(t, good.Dimension(), otherVocab.Len())

	mismatched := storage.NewStore(good.Index(), otherVocab, good.Corpus())
	r, err := NewRetriever(mismatched)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = r.SearchCandidatesWithMonitor(context.Background(), "closure", 5, monitor)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.False(t, monitor.started, "search must fail before any work")
}

func TestSearchCandidates_Cancelled(t *testing.T) {
	r, err := NewRetriever(newStore(t, jsPairs...))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.SearchCandidates(ctx, "closure", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchCandidates_Concurrent(t *testing.T) {
	r, err := NewRetriever(newStore(t, jsPairs...))
	require.NoError(t, err)

	want, err := r.SearchCandidates(context.Background(), "what is a promise", 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.SearchCandidates(context.Background(), "what is a promise", 3)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

type recordingMonitor struct {
	started    bool
	normalized string
	nonZero    int
	neighbors  []index.Neighbor
	results    []core.SearchResult
}

func (m *recordingMonitor) Start(_ string, _ int) {
	m.started = true
}

func (m *recordingMonitor) AfterNormalize(normalized string) {
	m.normalized = normalized
}

func (m *recordingMonitor) AfterTransform(nonZero int) {
	m.nonZero = nonZero
}

func (m *recordingMonitor) AfterIndexSearch(neighbors []index.Neighbor) {
	m.neighbors = neighbors
}

func (m *recordingMonitor) Finish(results []core.SearchResult) {
	m.results = results
}

func TestSearchCandidates_Monitor(t *testing.T) {
	monitor := &recordingMonitor{}
	r, err := NewRetriever(newStore(t, jsPairs...), WithMonitor(monitor))
	require.NoError(t, err)

	results, err := r.SearchCandidates(context.Background(), "What is a Promise?", 2)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, "what is a promise", monitor.normalized)
	assert.Positive(t, monitor.nonZero)
	assert.Len(t, monitor.neighbors, 2)
	assert.Equal(t, results, monitor.results)
}

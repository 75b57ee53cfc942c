package retrieval

import (
	"context"
	"log/slog"

	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/index"
	"github.com/poiesic/qamatch/storage"
	"github.com/poiesic/qamatch/vectorize"
)

// DefaultK is the candidate count used when callers have no preference.
const DefaultK = 5

// Retriever searches a store for candidate QA pairs.
type Retriever struct {
	store      *storage.Store
	vectorizer *vectorize.Vectorizer
	monitor    SearchMonitor
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor used by SearchCandidates.
func WithMonitor(monitor SearchMonitor) Option {
	return func(r *Retriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewRetriever creates a retriever over store. The store's consistency is
// checked on every search rather than here.
func NewRetriever(store *storage.Store, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	r := &Retriever{
		store:   store,
		monitor: &noopMonitor{},
		logger:  slog.Default().With("component", "retrieval"),
	}
	if vocab := store.Vocabulary(); vocab.Len() > 0 {
		v, err := vectorize.FromVocabulary(vocab)
		if err != nil {
			return nil, err
		}
		r.vectorizer = v
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// SearchCandidates returns up to k corpus entries closest to query, ranked
// from 1 by ascending distance.
func (r *Retriever) SearchCandidates(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	return r.SearchCandidatesWithMonitor(ctx, query, k, r.monitor)
}

// SearchCandidatesWithMonitor is SearchCandidates with a per-call monitor.
func (r *Retriever) SearchCandidatesWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := r.store.Validate(); err != nil {
		r.logger.Error("store failed validation", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitor.Start(query, k)

	normalized := core.Normalize(query)
	monitor.AfterNormalize(normalized)

	if r.store.Rows() == 0 {
		if k <= 0 {
			return nil, index.ErrInvalidK
		}
		monitor.Finish(nil)
		return []core.SearchResult{}, nil
	}

	vec, err := r.vectorizer.Transform(normalized)
	if err != nil {
		return nil, err
	}
	monitor.AfterTransform(nonZero(vec))

	neighbors, err := r.store.Index().Search(vec, k)
	if err != nil {
		r.logger.Error("error searching index", "k", k, "err", err)
		return nil, err
	}
	monitor.AfterIndexSearch(neighbors)

	corpus := r.store.Corpus()
	results := make([]core.SearchResult, 0, len(neighbors))
	for i, n := range neighbors {
		pair, err := corpus.At(n.Row)
		if err != nil {
			return nil, err
		}
		results = append(results, core.SearchResult{
			Rank:       i + 1,
			Row:        n.Row,
			Similarity: index.Similarity(n.Distance),
			Distance:   n.Distance,
			Question:   pair.Question,
			Answer:     pair.Answer,
		})
	}
	monitor.Finish(results)

	r.logger.Debug("candidates retrieved", "k", k, "results", len(results))
	return results, nil
}

func nonZero(vec []float32) int {
	n := 0
	for _, x := range vec {
		if x != 0 {
			n++
		}
	}
	return n
}

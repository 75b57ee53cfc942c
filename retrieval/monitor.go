package retrieval

import (
	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/index"
)

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, k int)
	AfterNormalize(normalized string)
	AfterTransform(nonZero int)
	AfterIndexSearch(neighbors []index.Neighbor)
	Finish(results []core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)               {}
func (n *noopMonitor) AfterNormalize(_ string)             {}
func (n *noopMonitor) AfterTransform(_ int)                {}
func (n *noopMonitor) AfterIndexSearch(_ []index.Neighbor) {}
func (n *noopMonitor) Finish(_ []core.SearchResult)        {}

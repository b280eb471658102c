// Package query provides the path cache for Kin.
package query

import (
	"context"
	"sync"

	"github.com/hagborg/kin-go/internal/graph"
	"github.com/hagborg/kin-go/internal/pathfind"
)

// PathCache stores precomputed source -> target -> PathResult lookups for
// one graph generation.
//
// The cache is owned by exactly one Service and tied to one generation; a
// rebuild produces a fresh cache rather than invalidating entries in place,
// so results from different generations can never mix. A lookup miss always
// falls back to a live PathFinder call at the service layer; the cache is
// an amortization, never an authority.
type PathCache struct {
	mu         sync.RWMutex
	generation int64
	maxDegree  int
	paths      map[string]map[string]*pathfind.PathResult
}

// NewPathCache creates an empty cache bound to the given graph generation
// and degree bound.
func NewPathCache(generation int64, maxDegree int) *PathCache {
	return &PathCache{
		generation: generation,
		maxDegree:  maxDegree,
		paths:      make(map[string]map[string]*pathfind.PathResult),
	}
}

// Generation returns the graph generation this cache is bound to.
func (c *PathCache) Generation() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Lookup returns the cached path from sourceID to targetID. ok is false on
// a cache miss; a miss says nothing about whether a path exists.
func (c *PathCache) Lookup(sourceID, targetID string) (*pathfind.PathResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets, ok := c.paths[sourceID]
	if !ok {
		return nil, false
	}
	res, ok := targets[targetID]
	return res, ok
}

// HasSource reports whether the given source node has been precomputed.
// For a precomputed source, a missing target means no path exists within
// the cache's degree bound.
func (c *PathCache) HasSource(sourceID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.paths[sourceID]
	return ok
}

// Store records the full shortest-path map for one source node.
func (c *PathCache) Store(sourceID string, targets map[string]*pathfind.PathResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths[sourceID] = targets
}

// SourceCount returns how many source nodes have been precomputed.
func (c *PathCache) SourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.paths)
}

// Snapshot returns a copy of the cache contents keyed by source then
// target, for persistence.
func (c *PathCache) Snapshot() map[string]map[string]*pathfind.PathResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]*pathfind.PathResult, len(c.paths))
	for src, targets := range c.paths {
		m := make(map[string]*pathfind.PathResult, len(targets))
		for dst, res := range targets {
			m[dst] = res
		}
		out[src] = m
	}
	return out
}

// Restore replaces the cache contents with a previously persisted snapshot.
// The caller is responsible for checking the snapshot's generation first.
func (c *PathCache) Restore(paths map[string]map[string]*pathfind.PathResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = make(map[string]map[string]*pathfind.PathResult, len(paths))
	for src, targets := range paths {
		c.paths[src] = targets
	}
}

// Precompute runs one full BFS per source node, in sorted ID order, until
// the budget of source nodes is exhausted. The work is chunked: the context
// is checked before each source so long precomputations stay cancellable.
func (c *PathCache) Precompute(ctx context.Context, g *graph.RelationshipGraph, budget int, progress func(done, total int)) error {
	ids := g.NodeIDs()
	if budget > 0 && len(ids) > budget {
		ids = ids[:budget]
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		paths, err := pathfind.FromSource(g, id, c.maxDegree)
		if err != nil {
			return err
		}
		c.Store(id, paths)

		if progress != nil {
			progress(i+1, len(ids))
		}
	}
	return nil
}

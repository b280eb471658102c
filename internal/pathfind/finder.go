// Package pathfind implements bounded breadth-first search over the
// relationship graph and the classification of found paths into
// human-meaningful relationship labels.
//
// BFS guarantees the first path found is of minimum degree; the graph's
// stable neighbor order (parents, spouses, children, siblings, sorted by
// ID) breaks ties deterministically. A visited set keyed by person ID
// guarantees termination even when remarriage or data defects create
// cycles.
package pathfind

import (
	"errors"

	"github.com/hagborg/kin-go/internal/graph"
)

// ErrNoPath is returned when no relationship path exists within the degree
// bound. It is a legitimate query outcome, distinct from an invalid input.
var ErrNoPath = errors.New("no relationship path within degree limit")

// ErrPersonNotFound is returned when a queried person ID is absent from the
// graph generation being searched.
var ErrPersonNotFound = errors.New("person not found in graph")

// PathResult is one relationship path between two people.
type PathResult struct {
	// SourceID is the person the path starts from.
	SourceID string `json:"sourceId"`

	// TargetID is the person the path leads to.
	TargetID string `json:"targetId"`

	// Steps are the typed hops from source to target, in order.
	Steps []graph.Step `json:"steps"`

	// Degree is the number of edges in the path.
	Degree int `json:"degree"`

	// Relationship is the classified label for the path.
	Relationship string `json:"relationship"`

	// Shortest marks the canonical BFS-shortest path, as opposed to one of
	// several paths surfaced by FindAllPaths.
	Shortest bool `json:"shortest"`
}

// FindPath returns the shortest relationship path from sourceID to targetID
// with at most maxDegree edges.
//
// The result is deterministic for a fixed graph: BFS order plus the graph's
// stable neighbor order breaks equal-degree ties. Returns ErrPersonNotFound
// if either ID is absent and ErrNoPath if the true shortest path exceeds
// maxDegree.
func FindPath(g *graph.RelationshipGraph, sourceID, targetID string, maxDegree int) (*PathResult, error) {
	if g.Node(sourceID) == nil || g.Node(targetID) == nil {
		return nil, ErrPersonNotFound
	}

	if sourceID == targetID {
		return newResult(sourceID, targetID, nil, true), nil
	}

	type entry struct {
		id    string
		steps []graph.Step
	}

	visited := map[string]bool{sourceID: true}
	queue := []entry{{id: sourceID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.steps) >= maxDegree {
			continue
		}

		for _, step := range g.Neighbors(cur.id) {
			if visited[step.To] {
				continue
			}
			visited[step.To] = true

			steps := appendStep(cur.steps, step)
			if step.To == targetID {
				return newResult(sourceID, targetID, steps, true), nil
			}
			queue = append(queue, entry{id: step.To, steps: steps})
		}
	}

	return nil, ErrNoPath
}

// FindAllPaths returns up to maxPaths distinct relationship paths from
// sourceID to targetID with at most maxDegree edges, in breadth-first
// order (shortest first).
//
// Unlike FindPath, nodes may be revisited via a different predecessor so
// qualitatively different relationships between the same two people are
// surfaced (blood relation and relation by marriage, say). A path never
// visits the same person twice, and maxPaths bounds the cost of the
// exhaustive search. Only the first result carries the Shortest flag.
func FindAllPaths(g *graph.RelationshipGraph, sourceID, targetID string, maxDegree, maxPaths int) ([]*PathResult, error) {
	if g.Node(sourceID) == nil || g.Node(targetID) == nil {
		return nil, ErrPersonNotFound
	}
	if maxPaths <= 0 {
		return nil, nil
	}

	if sourceID == targetID {
		return []*PathResult{newResult(sourceID, targetID, nil, true)}, nil
	}

	type entry struct {
		id     string
		steps  []graph.Step
		onPath map[string]bool
	}

	var results []*PathResult
	queue := []entry{{id: sourceID, onPath: map[string]bool{sourceID: true}}}

	for len(queue) > 0 && len(results) < maxPaths {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.steps) >= maxDegree {
			continue
		}

		for _, step := range g.Neighbors(cur.id) {
			if cur.onPath[step.To] {
				continue
			}

			steps := appendStep(cur.steps, step)
			if step.To == targetID {
				results = append(results, newResult(sourceID, targetID, steps, len(results) == 0))
				if len(results) >= maxPaths {
					break
				}
				continue
			}

			onPath := make(map[string]bool, len(cur.onPath)+1)
			for id := range cur.onPath {
				onPath[id] = true
			}
			onPath[step.To] = true
			queue = append(queue, entry{id: step.To, steps: steps, onPath: onPath})
		}
	}

	if len(results) == 0 {
		return nil, ErrNoPath
	}
	return results, nil
}

// Ancestors returns every person reachable from id by ascending parent
// edges only, up to maxDegree hops, mapped to the minimum hop count at
// which they were reached. The person itself is not included.
func Ancestors(g *graph.RelationshipGraph, id string, maxDegree int) (map[string]int, error) {
	return sweep(g, id, maxDegree, func(n *graph.Node) []string { return n.Parents() })
}

// Descendants returns every person reachable from id by descending child
// edges only, up to maxDepth hops, mapped to the minimum hop count at which
// they were reached. The person itself is not included.
func Descendants(g *graph.RelationshipGraph, id string, maxDepth int) (map[string]int, error) {
	return sweep(g, id, maxDepth, func(n *graph.Node) []string { return n.Children() })
}

// sweep is a single-direction bounded BFS shared by ancestor and
// descendant queries.
func sweep(g *graph.RelationshipGraph, id string, maxHops int, next func(*graph.Node) []string) (map[string]int, error) {
	if g.Node(id) == nil {
		return nil, ErrPersonNotFound
	}

	found := make(map[string]int)
	visited := map[string]bool{id: true}
	frontier := []string{id}

	for depth := 1; depth <= maxHops && len(frontier) > 0; depth++ {
		var nextFrontier []string
		for _, cur := range frontier {
			for _, to := range next(g.Node(cur)) {
				if visited[to] {
					continue
				}
				visited[to] = true
				found[to] = depth
				nextFrontier = append(nextFrontier, to)
			}
		}
		frontier = nextFrontier
	}

	return found, nil
}

// FromSource runs one BFS from sourceID and returns the shortest path to
// every person reachable within maxDegree. This is the precomputation
// primitive: one pass amortizes every later lookup against that source.
func FromSource(g *graph.RelationshipGraph, sourceID string, maxDegree int) (map[string]*PathResult, error) {
	if g.Node(sourceID) == nil {
		return nil, ErrPersonNotFound
	}

	type entry struct {
		id    string
		steps []graph.Step
	}

	paths := make(map[string]*PathResult)
	visited := map[string]bool{sourceID: true}
	queue := []entry{{id: sourceID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.steps) >= maxDegree {
			continue
		}

		for _, step := range g.Neighbors(cur.id) {
			if visited[step.To] {
				continue
			}
			visited[step.To] = true

			steps := appendStep(cur.steps, step)
			paths[step.To] = newResult(sourceID, step.To, steps, true)
			queue = append(queue, entry{id: step.To, steps: steps})
		}
	}

	return paths, nil
}

// newResult assembles a PathResult with its classified label.
func newResult(sourceID, targetID string, steps []graph.Step, shortest bool) *PathResult {
	return &PathResult{
		SourceID:     sourceID,
		TargetID:     targetID,
		Steps:        steps,
		Degree:       len(steps),
		Relationship: Classify(steps),
		Shortest:     shortest,
	}
}

// appendStep copies the path before extending it so queued entries never
// alias each other's backing arrays.
func appendStep(steps []graph.Step, step graph.Step) []graph.Step {
	out := make([]graph.Step, len(steps), len(steps)+1)
	copy(out, steps)
	return append(out, step)
}

// Package graph provides the immutable relationship graph for Kin.
//
// A RelationshipGraph is one generation: a snapshot of every person node and
// typed edge produced by a single build. Edges are always added reciprocally
// (parent implies child, spouse implies spouse) so the graph is internally
// consistent by construction. After Freeze the graph is read-only; a data
// change produces a new graph with a higher generation number rather than
// mutating this one in place.
package graph

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// generationCounter assigns each graph a process-unique generation number.
var generationCounter atomic.Int64

// RelationshipGraph is an immutable snapshot of people and their typed
// relationships.
type RelationshipGraph struct {
	generation int64
	nodes      map[string]*Node
	edgeCount  int
	frozen     bool
}

// New creates a new empty, unfrozen relationship graph with a fresh
// generation number.
func New() *RelationshipGraph {
	return &RelationshipGraph{
		generation: generationCounter.Add(1),
		nodes:      make(map[string]*Node),
	}
}

// Generation returns the graph's generation number. Caches and persisted
// path artifacts are always tied to exactly one generation.
func (g *RelationshipGraph) Generation() int64 {
	return g.generation
}

// NodeCount returns the number of person nodes.
func (g *RelationshipGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges, counting each reciprocal
// pair as two.
func (g *RelationshipGraph) EdgeCount() int {
	return g.edgeCount
}

// Node returns the node for the given person ID, or nil if absent.
func (g *RelationshipGraph) Node(id string) *Node {
	return g.nodes[id]
}

// NodeIDs returns all person IDs in sorted order.
func (g *RelationshipGraph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EnsureNode returns the node for the given person ID, creating it if the
// graph has not been frozen yet.
func (g *RelationshipGraph) EnsureNode(id string) *Node {
	if node, ok := g.nodes[id]; ok {
		return node
	}
	if g.frozen {
		return nil
	}
	node := newNode(id)
	g.nodes[id] = node
	return node
}

// AddParent records that parentID is a parent of childID, adding the
// reciprocal child edge in the same call. Reciprocity is an invariant of the
// graph, not a convenience. Self-references and post-freeze calls error.
func (g *RelationshipGraph) AddParent(childID, parentID string) error {
	if err := g.checkEdge(childID, parentID); err != nil {
		return err
	}
	child := g.EnsureNode(childID)
	parent := g.EnsureNode(parentID)
	if !child.parents[parentID] {
		child.parents[parentID] = true
		parent.children[childID] = true
		g.edgeCount += 2
	}
	return nil
}

// AddSpouse records a marriage between two people, adding both directions.
func (g *RelationshipGraph) AddSpouse(aID, bID string) error {
	if err := g.checkEdge(aID, bID); err != nil {
		return err
	}
	a := g.EnsureNode(aID)
	b := g.EnsureNode(bID)
	if !a.spouses[bID] {
		a.spouses[bID] = true
		b.spouses[aID] = true
		g.edgeCount += 2
	}
	return nil
}

// AddSibling records a derived sibling relation between two people, adding
// both directions. Siblings are computed from shared parent sets by the
// builder, never parsed from source data.
func (g *RelationshipGraph) AddSibling(aID, bID string) error {
	if err := g.checkEdge(aID, bID); err != nil {
		return err
	}
	a := g.EnsureNode(aID)
	b := g.EnsureNode(bID)
	if !a.siblings[bID] {
		a.siblings[bID] = true
		b.siblings[aID] = true
		g.edgeCount += 2
	}
	return nil
}

// Freeze marks the end of the build. Any later attempt to add nodes or
// edges fails, which is what guarantees readers never observe a partially
// built generation.
func (g *RelationshipGraph) Freeze() {
	g.frozen = true
}

// Frozen reports whether the graph has been frozen.
func (g *RelationshipGraph) Frozen() bool {
	return g.frozen
}

// Neighbors returns every one-hop step from the given person in the stable
// traversal order: parents, then spouses, then children, then siblings,
// each group sorted by ID. This order is the deterministic tie-break for
// equal-degree paths.
func (g *RelationshipGraph) Neighbors(id string) []Step {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}

	steps := make([]Step, 0,
		len(node.parents)+len(node.spouses)+len(node.children)+len(node.siblings))
	for _, to := range node.Parents() {
		steps = append(steps, Step{From: id, To: to, Type: EdgeParent})
	}
	for _, to := range node.Spouses() {
		steps = append(steps, Step{From: id, To: to, Type: EdgeSpouse})
	}
	for _, to := range node.Children() {
		steps = append(steps, Step{From: id, To: to, Type: EdgeChild})
	}
	for _, to := range node.Siblings() {
		steps = append(steps, Step{From: id, To: to, Type: EdgeSibling})
	}
	return steps
}

// Stats returns a summary of graph size.
func (g *RelationshipGraph) Stats() map[string]int {
	return map[string]int{
		"people": len(g.nodes),
		"edges":  g.edgeCount,
	}
}

func (g *RelationshipGraph) checkEdge(aID, bID string) error {
	if g.frozen {
		return fmt.Errorf("graph generation %d is frozen", g.generation)
	}
	if aID == "" || bID == "" {
		return fmt.Errorf("empty person ID in edge %q -> %q", aID, bID)
	}
	if aID == bID {
		return fmt.Errorf("self-referential edge for %q", aID)
	}
	return nil
}

func sortedIDs(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

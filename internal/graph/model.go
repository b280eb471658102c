// Package graph provides the relationship graph data model for Kin.
//
// It defines the node and edge types that represent people and the typed
// relationships between them (parent, child, spouse, sibling).
package graph

// EdgeType represents the type of relationship between two people.
type EdgeType string

const (
	EdgeParent  EdgeType = "parent"
	EdgeChild   EdgeType = "child"
	EdgeSpouse  EdgeType = "spouse"
	EdgeSibling EdgeType = "sibling"
)

// Inverse returns the edge type as seen from the other end of the edge.
// Parent/child invert to each other; spouse and sibling are symmetric.
func (t EdgeType) Inverse() EdgeType {
	switch t {
	case EdgeParent:
		return EdgeChild
	case EdgeChild:
		return EdgeParent
	default:
		return t
	}
}

// Node represents one person in the relationship graph.
//
// Relationship sets are modeled as unbounded even where the data implies a
// bound (at most two parents) to tolerate source-data irregularities.
// Sets are only mutated during a build; afterwards the node is read-only.
type Node struct {
	// ID is the person ID this node represents.
	ID string

	parents  map[string]bool
	children map[string]bool
	spouses  map[string]bool
	siblings map[string]bool
}

// newNode creates an empty node for the given person ID.
func newNode(id string) *Node {
	return &Node{
		ID:       id,
		parents:  make(map[string]bool),
		children: make(map[string]bool),
		spouses:  make(map[string]bool),
		siblings: make(map[string]bool),
	}
}

// Parents returns the parent IDs sorted for deterministic iteration.
func (n *Node) Parents() []string { return sortedIDs(n.parents) }

// Children returns the child IDs sorted for deterministic iteration.
func (n *Node) Children() []string { return sortedIDs(n.children) }

// Spouses returns the spouse IDs sorted for deterministic iteration.
func (n *Node) Spouses() []string { return sortedIDs(n.spouses) }

// Siblings returns the sibling IDs sorted for deterministic iteration.
func (n *Node) Siblings() []string { return sortedIDs(n.siblings) }

// HasParent reports whether the given ID is in the parent set.
func (n *Node) HasParent(id string) bool { return n.parents[id] }

// HasChild reports whether the given ID is in the child set.
func (n *Node) HasChild(id string) bool { return n.children[id] }

// HasSpouse reports whether the given ID is in the spouse set.
func (n *Node) HasSpouse(id string) bool { return n.spouses[id] }

// HasSibling reports whether the given ID is in the sibling set.
func (n *Node) HasSibling(id string) bool { return n.siblings[id] }

// Step is one typed hop in a relationship path, as traversed from the
// path's source toward its target.
type Step struct {
	// From is the person ID the step starts at.
	From string `json:"from"`

	// To is the person ID the step arrives at.
	To string `json:"to"`

	// Type is the relationship of To relative to From
	// (EdgeParent means To is a parent of From).
	Type EdgeType `json:"type"`
}

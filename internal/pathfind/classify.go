// Package pathfind provides relationship classification for Kin.
package pathfind

import (
	"fmt"
	"strings"

	"github.com/hagborg/kin-go/internal/graph"
)

// relationshipTable maps comma-joined edge-type sequences to labels.
//
// New patterns are additive data: adding a finer-grained rule (2nd cousin,
// once removed, ...) means adding a row here, not changing the algorithm.
// Sequences read from the path's source outward, so ("parent", "sibling")
// is "my parent's sibling", an aunt or uncle.
var relationshipTable = map[string]string{
	// Degree 1: direct edge types.
	"parent":  "parent",
	"child":   "child",
	"spouse":  "spouse",
	"sibling": "sibling",

	// Degree 2: blood relations.
	"parent,parent":  "grandparent",
	"child,child":    "grandchild",
	"parent,sibling": "aunt/uncle",
	"sibling,child":  "niece/nephew",

	// Degree 2: step and in-law relations.
	"parent,spouse":  "step-parent",
	"spouse,child":   "step-child",
	"spouse,parent":  "parent-in-law",
	"child,spouse":   "child-in-law",
	"spouse,sibling": "sibling-in-law",
	"sibling,spouse": "sibling-in-law",

	// Degree 3: the patterns the navigator names explicitly.
	"parent,parent,parent":  "great-grandparent",
	"child,child,child":     "great-grandchild",
	"parent,parent,sibling": "great-aunt/great-uncle",
	"sibling,child,child":   "great-niece/great-nephew",
	"parent,sibling,child":  "cousin",
	"spouse,parent,parent":  "grandparent-in-law",
	"child,child,spouse":    "grandchild-in-law",
}

// SelfLabel is the relationship of a person to themselves (degree 0).
const SelfLabel = "self"

// Classify maps an edge-type sequence to a relationship label.
//
// Degree 0 is "self"; known sequences come from the pattern table; anything
// else falls back to "{N} degrees of separation". Exhaustive cousin-degree
// naming is intentionally out of scope. Classifying a reversed path yields
// the inverse label where one is defined (parent/child, aunt-uncle/
// niece-nephew) and the identical label for inherently symmetric relations.
func Classify(steps []graph.Step) string {
	if len(steps) == 0 {
		return SelfLabel
	}

	if label, ok := relationshipTable[sequenceKey(steps)]; ok {
		return label
	}
	return fmt.Sprintf("%d degrees of separation", len(steps))
}

// sequenceKey joins the step types into the table lookup key.
func sequenceKey(steps []graph.Step) string {
	types := make([]string, len(steps))
	for i, step := range steps {
		types[i] = string(step.Type)
	}
	return strings.Join(types, ",")
}

// ReverseSteps returns the steps of the path as traversed from target back
// to source, with each edge type inverted. Classifying the result yields
// the relationship seen from the other end.
func ReverseSteps(steps []graph.Step) []graph.Step {
	out := make([]graph.Step, len(steps))
	for i, step := range steps {
		out[len(steps)-1-i] = graph.Step{
			From: step.To,
			To:   step.From,
			Type: step.Type.Inverse(),
		}
	}
	return out
}

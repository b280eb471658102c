// Package build constructs relationship graphs from person records.
//
// The builder runs two passes over the store, mirroring how the source data
// is structured: a first pass resolves father/mother/spouse references and
// adds reciprocal edges, a second pass derives sibling edges by grouping
// people on their resolved parent-set signature. Unresolved and ambiguous
// references are collected as diagnostics, never raised as errors; the
// genealogical source data is expected to be incomplete.
package build

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hagborg/kin-go/internal/graph"
	"github.com/hagborg/kin-go/internal/person"
	"github.com/hagborg/kin-go/internal/resolve"
)

// batchSize is how many records are processed between context checks so a
// full-population build stays cancellable.
const batchSize = 256

// ProgressCallback is called with phase name and progress (0.0-1.0).
type ProgressCallback func(phase string, progress float64)

// Result summarizes a build run.
type Result struct {
	People       int
	Edges        int
	SiblingPairs int
	Diagnostics  []resolve.Diagnostic
	DurationSecs float64
}

// Build constructs a frozen relationship graph from the store's records.
//
// Given the same input list (including order) the produced graph is
// identical; edge sets are unordered so insertion order never affects query
// results. The returned graph carries a fresh generation number.
func Build(ctx context.Context, store *person.Store, progress ProgressCallback) (*graph.RelationshipGraph, *Result, error) {
	start := time.Now()
	result := &Result{}
	resolver := resolve.NewResolver(store)
	g := graph.New()

	// Every person gets a node even when no reference resolves, so point
	// queries can distinguish "person exists, no known relatives" from
	// "person unknown".
	for _, rec := range store.All() {
		g.EnsureNode(rec.ID)
	}

	if err := linkReferences(ctx, store, resolver, g, result, progress); err != nil {
		return nil, nil, err
	}
	if err := deriveSiblings(ctx, store, g, result, progress); err != nil {
		return nil, nil, err
	}

	g.Freeze()
	result.People = g.NodeCount()
	result.Edges = g.EdgeCount()
	result.DurationSecs = time.Since(start).Seconds()
	return g, result, nil
}

// linkReferences is the first pass: resolve father/mother and every spouse
// slot, adding reciprocal edges for each successful resolution.
func linkReferences(ctx context.Context, store *person.Store, resolver *resolve.Resolver, g *graph.RelationshipGraph, result *Result, progress ProgressCallback) error {
	report(progress, "Linking references", 0.0)

	records := store.All()
	for i, rec := range records {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			report(progress, "Linking references", float64(i)/float64(len(records)))
		}

		link := func(reference, field string, add func(id string) error) {
			id, diag, ok := resolver.Resolve(reference)
			if diag != nil {
				diag.PersonID = rec.ID
				diag.Field = field
				result.Diagnostics = append(result.Diagnostics, *diag)
			}
			if !ok {
				return
			}
			if err := add(id); err != nil {
				// Self-references are data defects, recorded like any
				// other quality issue.
				result.Diagnostics = append(result.Diagnostics, resolve.Diagnostic{
					Kind:      resolve.DiagUnresolved,
					Reference: reference,
					PersonID:  rec.ID,
					Field:     field,
				})
			}
		}

		link(rec.Father, "father", func(id string) error { return g.AddParent(rec.ID, id) })
		link(rec.Mother, "mother", func(id string) error { return g.AddParent(rec.ID, id) })
		for si, spouse := range rec.Spouses {
			field := "spouse"
			if si > 0 {
				field = fmt.Sprintf("spouse%d", si+1)
			}
			link(spouse, field, func(id string) error { return g.AddSpouse(rec.ID, id) })
		}
	}

	report(progress, "Linking references", 1.0)
	return nil
}

// deriveSiblings is the second pass: group people by the sorted signature of
// their resolved parent set and cross-link every group of size two or more.
// People with no resolved parents are excluded so "no parents" never reads
// as a shared-parent relation.
func deriveSiblings(ctx context.Context, store *person.Store, g *graph.RelationshipGraph, result *Result, progress ProgressCallback) error {
	report(progress, "Deriving siblings", 0.0)

	groups := make(map[string][]string)
	records := store.All()
	for i, rec := range records {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		node := g.Node(rec.ID)
		if node == nil {
			continue
		}
		parents := node.Parents()
		if len(parents) == 0 {
			continue
		}
		sig := strings.Join(parents, "\x00")
		groups[sig] = append(groups[sig], rec.ID)
	}

	sigs := make([]string, 0, len(groups))
	for sig := range groups {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	for i, sig := range sigs {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			report(progress, "Deriving siblings", float64(i)/float64(len(sigs)))
		}
		members := groups[sig]
		if len(members) < 2 {
			continue
		}
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				if err := g.AddSibling(members[a], members[b]); err == nil {
					result.SiblingPairs++
				}
			}
		}
	}

	report(progress, "Deriving siblings", 1.0)
	return nil
}

func report(progress ProgressCallback, phase string, pct float64) {
	if progress != nil {
		progress(phase, pct)
	}
}

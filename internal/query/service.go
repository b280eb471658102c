// Package query exposes the public relationship query surface for Kin.
//
// A Service owns exactly one graph generation plus the cache built against
// it. UI collaborators (sidebar family panels, relationship finder dialogs,
// tree highlighting) consume the five operations here and receive plain
// data structures. Swapping in a rebuilt graph happens atomically at the
// Service pointer level: in-flight queries keep reading the generation they
// started on, new queries see the new one exclusively.
package query

import (
	"sort"

	"github.com/hagborg/kin-go/internal/graph"
	"github.com/hagborg/kin-go/internal/pathfind"
	"github.com/hagborg/kin-go/internal/person"
)

// Config carries the query bounds. The source material never fixes
// canonical defaults, so they are configuration, not constants baked into
// the algorithms.
type Config struct {
	// MaxDegree bounds every path search.
	MaxDegree int

	// MaxPaths caps how many distinct paths FindAllRelationships returns.
	MaxPaths int

	// PrecomputeBudget caps how many source nodes Precompute processes.
	PrecomputeBudget int
}

// DefaultConfig returns the bounds used when the caller does not override
// them.
func DefaultConfig() Config {
	return Config{
		MaxDegree:        6,
		MaxPaths:         8,
		PrecomputeBudget: 512,
	}
}

// Family is the one-hop neighborhood of a person. Slices are sorted by ID
// and always non-nil, so they serialize as [] rather than null.
type Family struct {
	PersonID string   `json:"personId"`
	Parents  []string `json:"parents"`
	Spouses  []string `json:"spouses"`
	Children []string `json:"children"`
	Siblings []string `json:"siblings"`
}

// Relative is one person found by an ancestor or descendant sweep.
type Relative struct {
	PersonID string `json:"personId"`

	// Degree is the hop count from the queried person.
	Degree int `json:"degree"`
}

// CommonAncestor is one shared ancestor of two people.
type CommonAncestor struct {
	PersonID string `json:"personId"`

	// DegreeFromFirst and DegreeFromSecond are the parent-edge hop counts
	// from each queried person.
	DegreeFromFirst  int `json:"degreeFromFirst"`
	DegreeFromSecond int `json:"degreeFromSecond"`
}

// Service composes the path finder, classifier, and cache over one graph
// generation.
type Service struct {
	cfg   Config
	graph *graph.RelationshipGraph
	store *person.Store
	cache *PathCache
}

// NewService creates a query service over a frozen graph. The service owns
// the cache it creates; no other component mutates it.
func NewService(g *graph.RelationshipGraph, store *person.Store, cfg Config) *Service {
	return &Service{
		cfg:   cfg,
		graph: g,
		store: store,
		cache: NewPathCache(g.Generation(), cfg.MaxDegree),
	}
}

// Graph returns the graph generation this service answers from.
func (s *Service) Graph() *graph.RelationshipGraph {
	return s.graph
}

// Cache returns the path cache owned by this service.
func (s *Service) Cache() *PathCache {
	return s.cache
}

// Config returns the service's query bounds.
func (s *Service) Config() Config {
	return s.cfg
}

// Record returns the person record behind an ID, or nil if unknown.
func (s *Service) Record(id string) *person.Record {
	if s.store == nil {
		return nil
	}
	return s.store.Get(id)
}

// ImmediateFamily returns the direct one-hop relationships of a person.
// No path finding is involved. Returns ErrPersonNotFound for unknown IDs.
func (s *Service) ImmediateFamily(personID string) (*Family, error) {
	node := s.graph.Node(personID)
	if node == nil {
		return nil, pathfind.ErrPersonNotFound
	}

	return &Family{
		PersonID: personID,
		Parents:  emptyNotNil(node.Parents()),
		Spouses:  emptyNotNil(node.Spouses()),
		Children: emptyNotNil(node.Children()),
		Siblings: emptyNotNil(node.Siblings()),
	}, nil
}

// FindRelationship returns the shortest relationship path between two
// people, cache-first with a live PathFinder fallback.
//
// Errors distinguish "one of the IDs is invalid" (ErrPersonNotFound) from
// "both exist but are not related within the degree bound" (ErrNoPath).
func (s *Service) FindRelationship(personID1, personID2 string) (*pathfind.PathResult, error) {
	if s.graph.Node(personID1) == nil || s.graph.Node(personID2) == nil {
		return nil, pathfind.ErrPersonNotFound
	}

	if res, ok := s.cache.Lookup(personID1, personID2); ok {
		return res, nil
	}
	if personID1 != personID2 && s.cache.HasSource(personID1) {
		// The source was fully precomputed, so absence is a definitive
		// no-path answer within the degree bound.
		return nil, pathfind.ErrNoPath
	}

	res, err := pathfind.FindPath(s.graph, personID1, personID2, s.cfg.MaxDegree)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FindAllRelationships returns up to MaxPaths distinct relationship paths
// between two people, shortest first.
func (s *Service) FindAllRelationships(personID1, personID2 string) ([]*pathfind.PathResult, error) {
	return pathfind.FindAllPaths(s.graph, personID1, personID2, s.cfg.MaxDegree, s.cfg.MaxPaths)
}

// CommonAncestors ascends parent edges from both people up to maxDegree and
// intersects the visited ancestor sets. Results are sorted by combined
// degree, nearest ancestors first, then by ID.
func (s *Service) CommonAncestors(personID1, personID2 string, maxDegree int) ([]CommonAncestor, error) {
	first, err := pathfind.Ancestors(s.graph, personID1, maxDegree)
	if err != nil {
		return nil, err
	}
	second, err := pathfind.Ancestors(s.graph, personID2, maxDegree)
	if err != nil {
		return nil, err
	}

	var shared []CommonAncestor
	for id, d1 := range first {
		if d2, ok := second[id]; ok {
			shared = append(shared, CommonAncestor{
				PersonID:         id,
				DegreeFromFirst:  d1,
				DegreeFromSecond: d2,
			})
		}
	}

	sort.Slice(shared, func(i, j int) bool {
		si := shared[i].DegreeFromFirst + shared[i].DegreeFromSecond
		sj := shared[j].DegreeFromFirst + shared[j].DegreeFromSecond
		if si != sj {
			return si < sj
		}
		return shared[i].PersonID < shared[j].PersonID
	})
	return shared, nil
}

// Descendants runs a bounded forward BFS over child edges only. Results
// are sorted by degree, then by ID.
func (s *Service) Descendants(personID string, maxDepth int) ([]Relative, error) {
	found, err := pathfind.Descendants(s.graph, personID, maxDepth)
	if err != nil {
		return nil, err
	}

	out := make([]Relative, 0, len(found))
	for id, degree := range found {
		out = append(out, Relative{PersonID: id, Degree: degree})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree < out[j].Degree
		}
		return out[i].PersonID < out[j].PersonID
	})
	return out, nil
}

func emptyNotNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

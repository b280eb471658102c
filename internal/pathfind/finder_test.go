package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagborg/kin-go/internal/graph"
)

// testFamily builds a three-generation family:
//
//	gp + gm are married, their children are dad and uncle.
//	dad + mom are married, their children are me and sis.
func testFamily(t *testing.T) *graph.RelationshipGraph {
	t.Helper()
	g := graph.New()

	require.NoError(t, g.AddSpouse("gp", "gm"))
	require.NoError(t, g.AddParent("dad", "gp"))
	require.NoError(t, g.AddParent("dad", "gm"))
	require.NoError(t, g.AddParent("uncle", "gp"))
	require.NoError(t, g.AddParent("uncle", "gm"))
	require.NoError(t, g.AddSibling("dad", "uncle"))

	require.NoError(t, g.AddSpouse("dad", "mom"))
	require.NoError(t, g.AddParent("me", "dad"))
	require.NoError(t, g.AddParent("me", "mom"))
	require.NoError(t, g.AddParent("sis", "dad"))
	require.NoError(t, g.AddParent("sis", "mom"))
	require.NoError(t, g.AddSibling("me", "sis"))

	g.Freeze()
	return g
}

func TestFindPath(t *testing.T) {
	t.Parallel()

	t.Run("Self", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		res, err := FindPath(g, "me", "me", 6)
		require.NoError(t, err)

		assert.Equal(t, 0, res.Degree)
		assert.Empty(t, res.Steps)
		assert.Equal(t, SelfLabel, res.Relationship)
		assert.True(t, res.Shortest)
	})

	t.Run("DirectParent", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		res, err := FindPath(g, "me", "dad", 6)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Degree)
		assert.Equal(t, "parent", res.Relationship)
		assert.Equal(t, []graph.Step{{From: "me", To: "dad", Type: graph.EdgeParent}}, res.Steps)
	})

	t.Run("Grandparent", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		res, err := FindPath(g, "me", "gm", 6)
		require.NoError(t, err)

		assert.Equal(t, 2, res.Degree)
		assert.Equal(t, "grandparent", res.Relationship)
	})

	t.Run("AuntUncle", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		res, err := FindPath(g, "me", "uncle", 6)
		require.NoError(t, err)

		assert.Equal(t, 2, res.Degree)
		assert.Equal(t, "aunt/uncle", res.Relationship)
	})

	t.Run("PersonNotFound", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		_, err := FindPath(g, "me", "stranger", 6)
		assert.ErrorIs(t, err, ErrPersonNotFound)

		_, err = FindPath(g, "stranger", "me", 6)
		assert.ErrorIs(t, err, ErrPersonNotFound)
	})

	t.Run("DegreeBoundExclusive", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		// me -> gm is degree 2: found at the bound, not beyond it.
		_, err := FindPath(g, "me", "gm", 1)
		assert.ErrorIs(t, err, ErrNoPath)

		res, err := FindPath(g, "me", "gm", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Degree)
	})

	t.Run("DisconnectedComponents", func(t *testing.T) {
		t.Parallel()
		g := graph.New()
		require.NoError(t, g.AddSpouse("a", "b"))
		g.EnsureNode("island")
		g.Freeze()

		_, err := FindPath(g, "a", "island", 10)
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("CycleTermination", func(t *testing.T) {
		t.Parallel()
		// Remarriage triangle: a-b, b-c, c-a all spouses.
		g := graph.New()
		require.NoError(t, g.AddSpouse("a", "b"))
		require.NoError(t, g.AddSpouse("b", "c"))
		require.NoError(t, g.AddSpouse("c", "a"))
		g.EnsureNode("island")
		g.Freeze()

		_, err := FindPath(g, "a", "island", 100)
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("DeterministicTieBreak", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		// me -> gp has several degree-2 routes; BFS with the stable
		// neighbor order must always pick the same one.
		first, err := FindPath(g, "me", "gp", 6)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := FindPath(g, "me", "gp", 6)
			require.NoError(t, err)
			assert.Equal(t, first.Steps, again.Steps)
		}
		// Parents sort before spouses, and "dad" < "mom".
		assert.Equal(t, "dad", first.Steps[0].To)
	})

	t.Run("DegreeSymmetry", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		forward, err := FindPath(g, "me", "uncle", 6)
		require.NoError(t, err)
		backward, err := FindPath(g, "uncle", "me", 6)
		require.NoError(t, err)

		assert.Equal(t, forward.Degree, backward.Degree)
		assert.Equal(t, "niece/nephew", backward.Relationship)
	})
}

func TestFindAllPaths(t *testing.T) {
	t.Parallel()

	t.Run("ShortestFirst", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		results, err := FindAllPaths(g, "me", "sis", 4, 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		assert.Equal(t, 1, results[0].Degree)
		assert.Equal(t, "sibling", results[0].Relationship)
		assert.True(t, results[0].Shortest)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].Degree, results[i-1].Degree)
			assert.False(t, results[i].Shortest)
		}
	})

	t.Run("FindsAlternateRoutes", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		// Direct sibling edge plus parent,child routes via dad and mom.
		results, err := FindAllPaths(g, "me", "sis", 2, 10)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(results), 3)
	})

	t.Run("MaxPathsCap", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		results, err := FindAllPaths(g, "me", "sis", 4, 2)
		require.NoError(t, err)

		assert.Len(t, results, 2)
	})

	t.Run("NoRevisitsWithinOnePath", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		results, err := FindAllPaths(g, "me", "gm", 6, 50)
		require.NoError(t, err)

		for _, res := range results {
			seen := map[string]bool{res.SourceID: true}
			for _, step := range res.Steps {
				assert.False(t, seen[step.To], "path revisits %s", step.To)
				seen[step.To] = true
			}
		}
	})

	t.Run("NoPath", func(t *testing.T) {
		t.Parallel()
		g := graph.New()
		g.EnsureNode("a")
		g.EnsureNode("b")
		g.Freeze()

		_, err := FindAllPaths(g, "a", "b", 6, 10)
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("ZeroBudget", func(t *testing.T) {
		t.Parallel()
		g := testFamily(t)

		results, err := FindAllPaths(g, "me", "sis", 6, 0)
		require.NoError(t, err)
		assert.Nil(t, results)
	})
}

func TestAncestors(t *testing.T) {
	t.Parallel()

	g := testFamily(t)

	found, err := Ancestors(g, "me", 6)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"dad": 1, "mom": 1,
		"gp": 2, "gm": 2,
	}, found)

	t.Run("DepthBound", func(t *testing.T) {
		t.Parallel()
		found, err := Ancestors(g, "me", 1)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"dad": 1, "mom": 1}, found)
	})

	t.Run("NotFound", func(t *testing.T) {
		t.Parallel()
		_, err := Ancestors(g, "stranger", 6)
		assert.ErrorIs(t, err, ErrPersonNotFound)
	})
}

func TestDescendants(t *testing.T) {
	t.Parallel()

	g := testFamily(t)

	found, err := Descendants(g, "gp", 6)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"dad": 1, "uncle": 1,
		"me": 2, "sis": 2,
	}, found)
}

func TestFromSource(t *testing.T) {
	t.Parallel()

	g := testFamily(t)

	paths, err := FromSource(g, "me", 6)
	require.NoError(t, err)

	// Everyone else in the family is reachable; self is not included.
	assert.Len(t, paths, 6)
	assert.NotContains(t, paths, "me")

	for target, res := range paths {
		assert.Equal(t, "me", res.SourceID)
		assert.Equal(t, target, res.TargetID)
		assert.True(t, res.Shortest)

		direct, err := FindPath(g, "me", target, 6)
		require.NoError(t, err)
		assert.Equal(t, direct.Steps, res.Steps, "target %s", target)
	}

	t.Run("DegreeBound", func(t *testing.T) {
		t.Parallel()
		paths, err := FromSource(g, "me", 1)
		require.NoError(t, err)

		for _, res := range paths {
			assert.Equal(t, 1, res.Degree)
		}
		assert.Contains(t, paths, "dad")
		assert.NotContains(t, paths, "gp")
	})
}

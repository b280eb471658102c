package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagborg/kin-go/internal/graph"
	"github.com/hagborg/kin-go/internal/pathfind"
	"github.com/hagborg/kin-go/internal/person"
	"github.com/hagborg/kin-go/internal/resolve"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Generation: 7,
		BuiltAt:    time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		DataDir:    "/data/lineages",
		Records: []*person.Record{
			{ID: "p1", Name: "First Person", LineageName: "Fam"},
			{ID: "p2", Name: "Second Person", LineageName: "Fam", Father: "First Person [Fam]"},
		},
		Diagnostics: []resolve.Diagnostic{
			{Kind: resolve.DiagUnresolved, Reference: "Ghost [Fam]", PersonID: "p2", Field: "mother"},
		},
	}
}

func testPaths() map[string]map[string]*pathfind.PathResult {
	return map[string]map[string]*pathfind.PathResult{
		"p1": {
			"p2": {
				SourceID: "p1", TargetID: "p2", Degree: 1,
				Steps:        []graph.Step{{From: "p1", To: "p2", Type: graph.EdgeChild}},
				Relationship: "child", Shortest: true,
			},
		},
	}
}

func TestBadgerBackend_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbPath := t.TempDir()

	b := NewBadgerBackend()
	require.NoError(t, b.Initialize(dbPath, false))

	require.NoError(t, b.SaveSnapshot(ctx, testSnapshot()))
	require.NoError(t, b.Close())

	// Reopen to prove the snapshot survives the process boundary.
	b = NewBadgerBackend()
	require.NoError(t, b.Initialize(dbPath, true))
	defer func() { _ = b.Close() }()

	snap, err := b.LoadSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, snap.SchemaVersion)
	assert.Equal(t, int64(7), snap.Generation)
	assert.Equal(t, "/data/lineages", snap.DataDir)
	assert.True(t, snap.BuiltAt.Equal(testSnapshot().BuiltAt))

	// Record order is load order and must survive persistence.
	require.Len(t, snap.Records, 2)
	assert.Equal(t, "p1", snap.Records[0].ID)
	assert.Equal(t, "p2", snap.Records[1].ID)

	require.Len(t, snap.Diagnostics, 1)
	assert.Equal(t, resolve.DiagUnresolved, snap.Diagnostics[0].Kind)
}

func TestBadgerBackend_LoadSnapshotEmpty(t *testing.T) {
	t.Parallel()

	b := NewBadgerBackend()
	require.NoError(t, b.Initialize(t.TempDir(), false))
	defer func() { _ = b.Close() }()

	_, err := b.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestBadgerBackend_SaveReplacesSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := NewBadgerBackend()
	require.NoError(t, b.Initialize(t.TempDir(), false))
	defer func() { _ = b.Close() }()

	require.NoError(t, b.SaveSnapshot(ctx, testSnapshot()))

	second := testSnapshot()
	second.Generation = 8
	second.Records = second.Records[:1]
	require.NoError(t, b.SaveSnapshot(ctx, second))

	snap, err := b.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), snap.Generation)
	assert.Len(t, snap.Records, 1)
}

func TestBadgerBackend_Paths(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		t.Parallel()
		b := NewBadgerBackend()
		require.NoError(t, b.Initialize(t.TempDir(), false))
		defer func() { _ = b.Close() }()

		require.NoError(t, b.SavePaths(ctx, 7, testPaths()))

		paths, err := b.LoadPaths(ctx, 7)
		require.NoError(t, err)

		require.Contains(t, paths, "p1")
		res := paths["p1"]["p2"]
		require.NotNil(t, res)
		assert.Equal(t, "child", res.Relationship)
		assert.Equal(t, []graph.Step{{From: "p1", To: "p2", Type: graph.EdgeChild}}, res.Steps)
		assert.True(t, res.Shortest)
	})

	t.Run("StaleGenerationYieldsEmpty", func(t *testing.T) {
		t.Parallel()
		b := NewBadgerBackend()
		require.NoError(t, b.Initialize(t.TempDir(), false))
		defer func() { _ = b.Close() }()

		require.NoError(t, b.SavePaths(ctx, 7, testPaths()))

		paths, err := b.LoadPaths(ctx, 8)
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("NoPathsStored", func(t *testing.T) {
		t.Parallel()
		b := NewBadgerBackend()
		require.NoError(t, b.Initialize(t.TempDir(), false))
		defer func() { _ = b.Close() }()

		paths, err := b.LoadPaths(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("SaveDropsStaleSources", func(t *testing.T) {
		t.Parallel()
		b := NewBadgerBackend()
		require.NoError(t, b.Initialize(t.TempDir(), false))
		defer func() { _ = b.Close() }()

		require.NoError(t, b.SavePaths(ctx, 7, testPaths()))
		require.NoError(t, b.SavePaths(ctx, 9, map[string]map[string]*pathfind.PathResult{
			"p9": {},
		}))

		paths, err := b.LoadPaths(ctx, 9)
		require.NoError(t, err)
		assert.NotContains(t, paths, "p1")
		assert.Contains(t, paths, "p9")
	})
}

func TestBadgerBackend_CloseIdempotent(t *testing.T) {
	t.Parallel()

	b := NewBadgerBackend()
	require.NoError(t, b.Initialize(t.TempDir(), false))
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

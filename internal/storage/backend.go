// Package storage provides the persistence backend interface for Kin.
//
// It defines the Backend protocol that storage implementations satisfy,
// along with the versioned snapshot artifact that lets a session reload a
// previously built population instead of re-parsing the lineage partitions.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hagborg/kin-go/internal/pathfind"
	"github.com/hagborg/kin-go/internal/person"
	"github.com/hagborg/kin-go/internal/resolve"
)

// SchemaVersion is the snapshot artifact schema version. A stored snapshot
// with a different version is rejected with ErrSchemaMismatch so a schema
// change triggers a full rebuild rather than silent misuse.
const SchemaVersion = 1

// ErrSchemaMismatch is returned when a stored snapshot was written with a
// different schema version.
var ErrSchemaMismatch = errors.New("snapshot schema version mismatch")

// ErrNoSnapshot is returned when the backend holds no snapshot.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Snapshot is the persisted form of one build: the person records in load
// order (sufficient to rebuild the graph deterministically) plus the build
// diagnostics.
type Snapshot struct {
	// SchemaVersion is the artifact schema version at write time.
	SchemaVersion int `json:"schemaVersion"`

	// Generation is the graph generation the snapshot was taken from.
	Generation int64 `json:"generation"`

	// BuiltAt is when the build completed.
	BuiltAt time.Time `json:"builtAt"`

	// DataDir is the lineage data directory the records were loaded from.
	DataDir string `json:"dataDir"`

	// DataRevision identifies the data directory's version control
	// revision at build time, when one is available.
	DataRevision string `json:"dataRevision,omitempty"`

	// Records are the person records in load order. Load order matters:
	// it is the deterministic tie-break for ambiguous name resolution.
	Records []*person.Record `json:"records"`

	// Diagnostics are the data-quality issues found during the build.
	Diagnostics []resolve.Diagnostic `json:"diagnostics,omitempty"`
}

// Backend defines the interface for persistence implementations.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Initialize opens or creates the backend at the given path.
	// If readOnly is true, the backend is opened in read-only mode.
	Initialize(path string, readOnly bool) error

	// Close releases all resources held by the backend.
	Close() error

	// SaveSnapshot replaces any stored snapshot with the given one.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// LoadSnapshot returns the stored snapshot. Returns ErrNoSnapshot when
	// none exists and ErrSchemaMismatch when the stored schema version
	// differs from SchemaVersion.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	// SavePaths replaces the stored precomputed paths with the given
	// source -> target -> path map, tagged with its graph generation.
	SavePaths(ctx context.Context, generation int64, paths map[string]map[string]*pathfind.PathResult) error

	// LoadPaths returns the stored precomputed paths if they were written
	// for the given generation; any other generation yields an empty map,
	// never stale paths.
	LoadPaths(ctx context.Context, generation int64) (map[string]map[string]*pathfind.PathResult, error)
}

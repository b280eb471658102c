// Package storage provides the persistence backend for Kin.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hagborg/kin-go/internal/pathfind"
)

// Key layout for the snapshot artifact.
const (
	keyMeta        = "m:snapshot"  // snapshot metadata (schema version, generation)
	keyRecords     = "s:records"   // person records blob, load order preserved
	keyDiagnostics = "s:diags"     // build diagnostics blob
	keyPathsMeta   = "c:meta"      // precomputed paths metadata
	prefixPaths    = "c:src:"      // per-source precomputed path maps
)

// snapshotMeta is the small header checked before the record blob is
// decoded, so a schema mismatch is detected cheaply.
type snapshotMeta struct {
	SchemaVersion int    `json:"schemaVersion"`
	Generation    int64  `json:"generation"`
	BuiltAt       string `json:"builtAt"`
	DataDir       string `json:"dataDir"`
	DataRevision  string `json:"dataRevision,omitempty"`
}

// pathsMeta tags the stored path set with the generation it was computed
// against.
type pathsMeta struct {
	Generation int64 `json:"generation"`
	Sources    int   `json:"sources"`
}

// BadgerBackend is a BadgerDB-backed persistence implementation.
type BadgerBackend struct {
	mu          sync.RWMutex
	db          *badger.DB
	initialized bool
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}

	b.initialized = true
	return nil
}

// Close releases all resources held by the backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.initialized = false
	return err
}

// SaveSnapshot replaces any stored snapshot with the given one.
func (b *BadgerBackend) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	meta := snapshotMeta{
		SchemaVersion: SchemaVersion,
		Generation:    snap.Generation,
		BuiltAt:       snap.BuiltAt.UTC().Format(time.RFC3339),
		DataDir:       snap.DataDir,
		DataRevision:  snap.DataRevision,
	}

	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling snapshot meta: %w", err)
	}
	recordData, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	diagData, err := json.Marshal(snap.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshaling diagnostics: %w", err)
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Set([]byte(keyMeta), metaData); err != nil {
		return fmt.Errorf("setting snapshot meta: %w", err)
	}
	if err := wb.Set([]byte(keyRecords), recordData); err != nil {
		return fmt.Errorf("setting records: %w", err)
	}
	if err := wb.Set([]byte(keyDiagnostics), diagData); err != nil {
		return fmt.Errorf("setting diagnostics: %w", err)
	}

	return wb.Flush()
}

// LoadSnapshot returns the stored snapshot, checking the schema version
// before decoding the record blob.
func (b *BadgerBackend) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := &Snapshot{}

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyMeta))
		if err == badger.ErrKeyNotFound {
			return ErrNoSnapshot
		}
		if err != nil {
			return err
		}

		var meta snapshotMeta
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("decoding snapshot meta: %w", err)
		}

		if meta.SchemaVersion != SchemaVersion {
			return fmt.Errorf("%w: stored %d, supported %d",
				ErrSchemaMismatch, meta.SchemaVersion, SchemaVersion)
		}

		snap.SchemaVersion = meta.SchemaVersion
		snap.Generation = meta.Generation
		snap.DataDir = meta.DataDir
		snap.DataRevision = meta.DataRevision
		if t, err := parseBuiltAt(meta.BuiltAt); err == nil {
			snap.BuiltAt = t
		}

		item, err = txn.Get([]byte(keyRecords))
		if err == badger.ErrKeyNotFound {
			return ErrNoSnapshot
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap.Records)
		}); err != nil {
			return fmt.Errorf("decoding records: %w", err)
		}

		item, err = txn.Get([]byte(keyDiagnostics))
		if err == badger.ErrKeyNotFound {
			return nil // Older artifacts may lack diagnostics.
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap.Diagnostics)
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SavePaths replaces the stored precomputed paths with the given map.
func (b *BadgerBackend) SavePaths(ctx context.Context, generation int64, paths map[string]map[string]*pathfind.PathResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.dropPrefix(prefixPaths); err != nil {
		return fmt.Errorf("dropping stale paths: %w", err)
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for src, targets := range paths {
		data, err := json.Marshal(targets)
		if err != nil {
			return fmt.Errorf("marshaling paths for %s: %w", src, err)
		}
		if err := wb.Set([]byte(prefixPaths+src), data); err != nil {
			return fmt.Errorf("setting paths for %s: %w", src, err)
		}
	}

	metaData, err := json.Marshal(pathsMeta{Generation: generation, Sources: len(paths)})
	if err != nil {
		return fmt.Errorf("marshaling paths meta: %w", err)
	}
	if err := wb.Set([]byte(keyPathsMeta), metaData); err != nil {
		return fmt.Errorf("setting paths meta: %w", err)
	}

	return wb.Flush()
}

// LoadPaths returns the stored precomputed paths for the given generation.
// Paths written against any other generation yield an empty map.
func (b *BadgerBackend) LoadPaths(ctx context.Context, generation int64) (map[string]map[string]*pathfind.PathResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	paths := make(map[string]map[string]*pathfind.PathResult)

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPathsMeta))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var meta pathsMeta
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("decoding paths meta: %w", err)
		}
		if meta.Generation != generation {
			return nil // Stale paths from another build are never served.
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixPaths)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			src := string(item.Key()[len(prefixPaths):])

			var targets map[string]*pathfind.PathResult
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &targets)
			}); err != nil {
				return fmt.Errorf("decoding paths for %s: %w", src, err)
			}
			paths[src] = targets
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func parseBuiltAt(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

// dropPrefix deletes every key under the given prefix. Must be called with
// the write lock held.
func (b *BadgerBackend) dropPrefix(prefix string) error {
	var keys [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return wb.Flush()
}

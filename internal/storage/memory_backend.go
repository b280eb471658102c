// Package storage provides the persistence backend for Kin.
package storage

import (
	"context"
	"sync"

	"github.com/hagborg/kin-go/internal/pathfind"
)

// MemoryBackend is an in-memory implementation of Backend for testing.
type MemoryBackend struct {
	mu              sync.RWMutex
	initialized     bool
	snapshot        *Snapshot
	pathsGeneration int64
	paths           map[string]map[string]*pathfind.PathResult
}

// NewMemoryBackend creates a new in-memory persistence backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Initialize implements Backend.
func (m *MemoryBackend) Initialize(path string, readOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	m.paths = nil
	m.initialized = false
	return nil
}

// SaveSnapshot implements Backend.
func (m *MemoryBackend) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *snap
	stored.SchemaVersion = SchemaVersion
	m.snapshot = &stored
	return nil
}

// LoadSnapshot implements Backend.
func (m *MemoryBackend) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	if m.snapshot.SchemaVersion != SchemaVersion {
		return nil, ErrSchemaMismatch
	}
	snap := *m.snapshot
	return &snap, nil
}

// SavePaths implements Backend.
func (m *MemoryBackend) SavePaths(ctx context.Context, generation int64, paths map[string]map[string]*pathfind.PathResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pathsGeneration = generation
	m.paths = make(map[string]map[string]*pathfind.PathResult, len(paths))
	for src, targets := range paths {
		m.paths[src] = targets
	}
	return nil
}

// LoadPaths implements Backend.
func (m *MemoryBackend) LoadPaths(ctx context.Context, generation int64) (map[string]map[string]*pathfind.PathResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]map[string]*pathfind.PathResult)
	if m.paths == nil || m.pathsGeneration != generation {
		return out, nil
	}
	for src, targets := range m.paths {
		out[src] = targets
	}
	return out, nil
}

// IsInitialized reports whether Initialize has been called.
func (m *MemoryBackend) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	pkgio "github.com/matzehuels/nestboard/pkg/io"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]pkgio.Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]pkgio.Snapshot)}
}

func (s *MemoryStore) Load(_ context.Context, name string) (pkgio.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[name]
	if !ok {
		return pkgio.Snapshot{}, notFound(name)
	}
	return clone(snap), nil
}

func (s *MemoryStore) Save(_ context.Context, name string, snap pkgio.Snapshot) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[name] = clone(snap)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[name]; !ok {
		return notFound(name)
	}
	delete(s.snaps, name)
	return nil
}

func (s *MemoryStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.snaps)), nil
}

func (s *MemoryStore) Close() error { return nil }

// clone deep-copies the slices of a snapshot so callers cannot mutate
// stored state.
func clone(s pkgio.Snapshot) pkgio.Snapshot {
	s.Nodes = slices.Clone(s.Nodes)
	for i := range s.Nodes {
		n := &s.Nodes[i]
		n.Children = slices.Clone(n.Children)
		n.Connections = slices.Clone(n.Connections)
		if n.View != nil {
			v := *n.View
			n.View = &v
		}
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

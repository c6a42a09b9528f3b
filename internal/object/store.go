package object

import (
	"sync"

	"github.com/tessera-run/tessera/internal/model"
)

// Store is the per-context remote object store: a device-qualified id to
// value-cell mapping shared by every request handled under one
// distributed context. It provides its own synchronization; callers issue
// plain Get/Set without further coordination.
type Store struct {
	mu      sync.Mutex
	objects map[model.RemoteObjectID]*Pending
}

// NewStore creates an empty object store.
func NewStore() *Store {
	return &Store{objects: make(map[model.RemoteObjectID]*Pending)}
}

// Get returns the cell published under id. When nothing has been
// published yet it creates and records an unresolved placeholder, so a
// consumer can register continuations against a value a peer publishes
// later.
func (s *Store) Get(id model.RemoteObjectID) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.objects[id]; ok {
		return p
	}
	p := NewPending()
	s.objects[id] = p
	return p
}

// Set records cell under id, before the cell is necessarily ready, so
// peers polling the store see a placeholder they can wait on with no race
// against publication. If an unresolved placeholder already exists under
// id (a consumer got there first), the new cell's settlement is forwarded
// into it so existing waiters still fire. A settled existing cell is
// replaced: republishing under a reused id is last-write-wins, matching
// the program cache.
func (s *Store) Set(id model.RemoteObjectID, cell *Pending) {
	s.mu.Lock()
	existing, ok := s.objects[id]
	if ok && existing != cell && !existing.Settled() {
		s.mu.Unlock()
		cell.OnReady(func() {
			v, err := cell.Value()
			if err != nil {
				existing.Fail(err)
				return
			}
			existing.Resolve(v)
		})
		return
	}
	s.objects[id] = cell
	s.mu.Unlock()
}

// Len returns the number of ids with a published or placeholder cell.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Contains reports whether id has a cell recorded, without creating a
// placeholder.
func (s *Store) Contains(id model.RemoteObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[id]
	return ok
}

// Package registry tracks which live map instance currently answers to each
// map id.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/glmap"
)

// ErrTaken indicates a map id already has a live instance.
var ErrTaken = errors.New("registry: map id already registered")

// Registry maps map ids to live map instances. At most one instance is held
// per id.
type Registry struct {
	mu   sync.RWMutex
	maps map[action.MapID]glmap.Map
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		maps: make(map[action.MapID]glmap.Map),
	}
}

// Register associates id with m, replacing any previous entry.
func (r *Registry) Register(id action.MapID, m glmap.Map) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps[id] = m
}

// Claim associates id with m only if id is free.
// Returns ErrTaken when another instance already holds id.
func (r *Registry) Claim(id action.MapID, m glmap.Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.maps[id]; ok {
		return ErrTaken
	}
	r.maps[id] = m
	return nil
}

// Unregister removes the entry for id. It is a no-op if id is absent.
func (r *Registry) Unregister(id action.MapID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.maps, id)
}

// Release removes the entry for id only while it still holds m, so a
// replaced instance cannot evict its successor. It reports whether an entry
// was removed.
func (r *Registry) Release(id action.MapID, m glmap.Map) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.maps[id]; !ok || cur != m {
		return false
	}
	delete(r.maps, id)
	return true
}

// Lookup returns the instance registered for id.
func (r *Registry) Lookup(id action.MapID) (glmap.Map, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[id]
	return m, ok
}

// IDs returns all registered map ids in sorted order.
func (r *Registry) IDs() []action.MapID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]action.MapID, 0, len(r.maps))
	for id := range r.maps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered maps.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.maps)
}

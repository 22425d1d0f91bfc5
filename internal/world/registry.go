package world

import (
	"log/slog"
	"sync"

	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
)

// Registry owns every live creature of a zone and hands out generation-checked
// handles. A handle to a despawned creature never resolves, even after its
// slot is reused.
type Registry struct {
	mu    sync.RWMutex
	slots []slot
	free  []uint32 // reusable slot indexes (LIFO)
	count int
}

type slot struct {
	gen      uint32
	creature *model.Creature
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Spawn registers a new creature and returns it.
func (r *Registry) Spawn(name string, kind model.Kind, loc model.Location) *model.Creature {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[idx]
	s.gen++
	if s.gen == 0 { // wrapped; zero generation is reserved for the invalid handle
		s.gen = 1
	}

	c := model.NewCreature(model.Handle{Index: idx, Gen: s.gen}, name, kind, loc)
	s.creature = c
	r.count++
	return c
}

// Despawn removes the creature behind h. Outstanding handles become stale.
// Returns false if h was already stale.
func (r *Registry) Despawn(h model.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validLocked(h) {
		return false
	}

	s := &r.slots[h.Index]
	s.creature = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	r.free = append(r.free, h.Index)
	r.count--

	slog.Debug("creature despawned", "handle", h)
	return true
}

// Get resolves a handle. Returns nil, false for stale or zero handles.
func (r *Registry) Get(h model.Handle) (*model.Creature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.validLocked(h) {
		return nil, false
	}
	return r.slots[h.Index].creature, true
}

// Resolver adapts the registry for hate lists.
func (r *Registry) Resolver() hate.ResolveFunc {
	return func(h model.Handle) (hate.Mob, bool) {
		c, ok := r.Get(h)
		if !ok {
			return nil, false
		}
		return c, true
	}
}

// Count returns the number of live creatures.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// ForEach calls fn for every live creature until fn returns false.
// fn must not spawn or despawn.
func (r *Registry) ForEach(fn func(*model.Creature) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.slots {
		if c := r.slots[i].creature; c != nil {
			if !fn(c) {
				return
			}
		}
	}
}

func (r *Registry) validLocked(h model.Handle) bool {
	if h.IsZero() || int(h.Index) >= len(r.slots) {
		return false
	}
	s := r.slots[h.Index]
	return s.creature != nil && s.gen == h.Gen
}

package model

import "fmt"

// Handle is a weak reference to a creature owned by a world.Registry.
// Index addresses the registry slot, Gen must match the slot generation
// for the handle to resolve. Generations start at 1, so the zero Handle
// never resolves.
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether h is the invalid handle.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

// ID returns the slot index, used as the entity id in listings.
func (h Handle) ID() uint32 {
	return h.Index
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.Index, h.Gen)
}

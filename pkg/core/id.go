package core

import "fmt"

// ElementID is a stable handle into the tree's slab storage. The zero value
// means "no element", so an optional id costs no extra storage. Slots are
// reused after removal with a bumped generation, so a holder must not retain
// an id past the element's disposal without revalidating it on lookup.
type ElementID uint64

// NoElement is the absent-id value.
const NoElement ElementID = 0

func makeElementID(index, generation uint32) ElementID {
	// index+1 keeps the zero value free for NoElement.
	return ElementID(uint64(generation)<<32 | uint64(index+1))
}

// IsNone returns true for the absent-id value.
func (id ElementID) IsNone() bool {
	return id == NoElement
}

func (id ElementID) slabIndex() uint32 {
	return uint32(id&0xffffffff) - 1
}

func (id ElementID) generation() uint32 {
	return uint32(id >> 32)
}

func (id ElementID) String() string {
	if id.IsNone() {
		return "none"
	}
	return fmt.Sprintf("e%d.%d", id.slabIndex(), id.generation())
}

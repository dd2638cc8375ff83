package core

import "fmt"

// IDPool hands out small integer identifiers for owners and recycles released slots.
// Identifier 0 is never handed out so it can be used as the "none" handle.
type IDPool[T any] struct {
	owners []*T
}

func NewIDPool[T any]() *IDPool[T] {
	return &IDPool[T]{
		owners: make([]*T, 1, 100),
	}
}

func (p *IDPool[T]) Acquire(owner *T) uint32 {
	length := uint32(len(p.owners))
	for i := uint32(1); i < length; i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return i
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IDPool[T]) Get(id uint32) (*T, bool) {
	if id == 0 || id >= uint32(len(p.owners)) {
		return nil, false
	}
	o := p.owners[id]
	return o, o != nil
}

func (p *IDPool[T]) Release(id uint32) error {
	length := uint32(len(p.owners))
	if id == 0 || id >= length {
		return fmt.Errorf("release id: id '%d' out of range (max=%d). Nothing was done", id, length)
	}
	// Just zero out the entry, making it available for use.
	p.owners[id] = nil
	return nil
}

// Len returns the number of live identifiers.
func (p *IDPool[T]) Len() int {
	n := 0
	for _, o := range p.owners {
		if o != nil {
			n++
		}
	}
	return n
}

// Each visits every live owner.
func (p *IDPool[T]) Each(fn func(id uint32, owner *T)) {
	for i, o := range p.owners {
		if o != nil {
			fn(uint32(i), o)
		}
	}
}

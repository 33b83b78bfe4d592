package ecs

import (
	"iter"
	"reflect"
)

// ComponentRegistry records which component types an ECS instance accepts and
// how to build a column for each. Storages built from different registries do
// not share anything.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentColumn
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentColumn),
	}
}

// RegisterComponent makes T usable as a component in storages that use r.
// Registering the same type twice is harmless.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() componentColumn {
		return &blockColumn[T]{}
	}
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) factory(t reflect.Type) func() componentColumn {
	return r.factories[t]
}

// componentColumn is the type-erased view of one component column inside an
// archetype. Indices are slot numbers shared by every column of the archetype.
type componentColumn interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}

const blockSize = 64

// blockColumn stores values of T in fixed-size blocks so that pointers handed
// out by Get stay valid while the column grows. Deleted slots are recycled.
type blockColumn[T any] struct {
	blocks    []*[blockSize]T
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
}

func locate(index int) (block, slot int) {
	return index / blockSize, index % blockSize
}

func (c *blockColumn[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(c.freeSlots); n > 0 {
		index = c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
	} else {
		index = c.nextIndex
		c.nextIndex++
	}

	block, slot := locate(index)
	for block >= len(c.blocks) {
		c.blocks = append(c.blocks, new([blockSize]T))
		c.filled = append(c.filled, [blockSize]bool{})
	}

	c.blocks[block][slot] = value
	c.filled[block][slot] = true
	return index
}

// Get returns a *T for the slot, or nil when the slot is empty.
func (c *blockColumn[T]) Get(index int) any {
	if !c.Has(index) {
		return nil
	}
	block, slot := locate(index)
	return &c.blocks[block][slot]
}

func (c *blockColumn[T]) Has(index int) bool {
	if index < 0 {
		return false
	}
	block, slot := locate(index)
	if block >= len(c.filled) {
		return false
	}
	return c.filled[block][slot]
}

func (c *blockColumn[T]) Delete(index int) {
	if !c.Has(index) {
		return
	}
	block, slot := locate(index)
	var zero T
	c.blocks[block][slot] = zero
	c.filled[block][slot] = false
	c.freeSlots = append(c.freeSlots, index)
}

// Len is the number of occupied slots.
func (c *blockColumn[T]) Len() int {
	return c.nextIndex - len(c.freeSlots)
}

// Compact packs occupied slots to the front, preserving their relative order,
// and returns the old->new index mapping.
func (c *blockColumn[T]) Compact() map[int]int {
	moved := make(map[int]int, c.Len())
	live := c.Len()
	if live == 0 {
		c.blocks, c.filled = nil, nil
		c.freeSlots = nil
		c.nextIndex = 0
		return moved
	}

	blocks := make([]*[blockSize]T, (live+blockSize-1)/blockSize)
	filled := make([][blockSize]bool, len(blocks))
	for i := range blocks {
		blocks[i] = new([blockSize]T)
	}

	write := 0
	for read := range c.Iter() {
		rb, rs := locate(read)
		wb, ws := locate(write)
		blocks[wb][ws] = c.blocks[rb][rs]
		filled[wb][ws] = true
		moved[read] = write
		write++
	}

	c.blocks = blocks
	c.filled = filled
	c.freeSlots = nil
	c.nextIndex = write
	return moved
}

// Iter yields occupied slot indices in ascending order.
func (c *blockColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.nextIndex; i++ {
			block, slot := locate(i)
			if block >= len(c.filled) || !c.filled[block][slot] {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}

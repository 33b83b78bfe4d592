package ecs

import (
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype holds every entity that has exactly one particular set of component
// types. Each type gets a column; an entity occupies the same slot in all of them.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []componentColumn
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype builds an archetype for the given types, which must already be
// sorted by name and registered in registry.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]componentColumn, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](64),
	}

	for i, typ := range types {
		factory := registry.factory(typ)
		if factory == nil {
			panic("ecs: component type " + typ.String() + " not registered")
		}
		a.columns[i] = factory()
	}

	return a
}

func (a *Archetype) column(compType reflect.Type) int {
	return slices.Index(a.types, compType)
}

// Spawn stores one entity's components and returns its slot.
func (a *Archetype) Spawn(components []any) uint32 {
	slot := -1
	for _, comp := range components {
		if comp == nil {
			continue
		}
		idx := a.column(componentType(comp))
		if idx == -1 {
			continue
		}
		slot = a.columns[idx].Append(comp)
	}
	return uint32(slot)
}

// GetComponent returns a pointer to the entity's component of compType, or
// nil if the archetype has no such column or the slot is empty.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	idx := a.column(compType)
	if idx == -1 {
		return nil
	}
	return a.columns[idx].Get(int(entityIndex))
}

// Delete frees the entity's slot and invalidates any EntityRef pointing at it.
// Other entities keep their slots.
func (a *Archetype) Delete(entityIndex uint32) {
	id := NewEntityId(a.id, entityIndex)
	if ptr, ok := a.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(id)
	}

	for _, col := range a.columns {
		col.Delete(int(entityIndex))
	}
}

// HasComponent reports whether compType is one of the archetype's columns.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return a.column(compType) != -1
}

// ID returns the archetype id.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the archetype's component types, sorted by name.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len is the number of live entities.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].Len()
}

// Compact removes holes left by deletions. Live EntityRefs are moved to the
// new slots; EntityIds obtained before compaction are no longer valid.
func (a *Archetype) Compact() {
	if len(a.columns) == 0 {
		return
	}

	moved := a.columns[0].Compact()
	for _, col := range a.columns[1:] {
		col.Compact()
	}

	refs := intmap.New[EntityId, weak.Pointer[EntityRef]](a.refs.Len())
	for from, to := range moved {
		oldId := NewEntityId(a.id, uint32(from))
		ptr, ok := a.refs.Get(oldId)
		if !ok {
			continue
		}
		ref := ptr.Value()
		if ref == nil {
			continue
		}
		ref.Id = NewEntityId(a.id, uint32(to))
		refs.Put(ref.Id, ptr)
	}
	a.refs = refs
}

// Iter yields the ids of live entities in slot order.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}
		for index := range a.columns[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}

// live reports whether the slot holds an entity.
func (a *Archetype) live(index int) bool {
	return len(a.columns) > 0 && a.columns[0].Has(index)
}

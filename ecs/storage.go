package ecs

import (
	"reflect"
	"sort"
	"unsafe"
	"weak"
)

// Storage owns every archetype (and so every entity) plus the singleton
// resources of one ECS instance.
type Storage struct {
	archetypes map[uint32]*Archetype
	registry   *ComponentRegistry

	// order lists archetypes by creation; iteration follows it so query results
	// are deterministic.
	order []*Archetype

	singletons map[reflect.Type]*singletonEntry

	// singletonGen changes whenever a resource is added or removed, telling
	// Singleton handles to re-resolve their pointer.
	singletonGen uint64
}

// NewStorage creates an empty storage that accepts the components in registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

// Registry returns the component registry the storage was built with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Archetypes returns all archetypes in creation order.
func (s *Storage) Archetypes() []*Archetype {
	return s.order
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypesToUint32(types)
	if archetype, ok := s.archetypes[id]; ok {
		return archetype
	}
	archetype := NewArchetype(id, types, s.registry)
	s.archetypes[id] = archetype
	s.order = append(s.order, archetype)
	return archetype
}

// CreateEntityRef returns the EntityRef tracking id, creating one if needed.
// Returns nil if id does not name a known archetype.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil {
		return nil
	}

	if ptr, ok := archetype.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the current id of the referenced entity.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Id == 0 {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef detaches ref from its entity. Returns false if it was
// already invalid.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if ref == nil || ref.Id == 0 {
		return false
	}

	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}

	ref.Id = 0
	ref.Archetype = nil
	return true
}

// GetArchetype returns the archetype holding exactly the types of components,
// or nil.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.archetypes[hashTypesToUint32(extractComponentTypes(components))]
}

// GetArchetypeByTypes is GetArchetype keyed by reflect.Type. types is sorted in place.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sort.Sort(byTypeName(types))
	return s.archetypes[hashTypesToUint32(types)]
}

// Spawn creates an entity carrying the given components and returns its id.
// Components may be passed by value or by pointer; the value is copied.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}

	archetype := s.archetypeFor(extractComponentTypes(components))
	return NewEntityId(archetype.id, archetype.Spawn(components))
}

// Delete removes the entity and all its components. Unknown ids are ignored.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id.Index())
	}
}

// AddComponent moves the entity into the archetype that also has component's
// type and returns its new id.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	from := s.archetypes[id.ArchetypeId()]
	if from == nil {
		return 0
	}

	added := componentType(component)
	types := make([]reflect.Type, 0, len(from.types)+1)
	for _, typ := range from.types {
		if typ != added {
			types = append(types, typ)
		}
	}
	types = append(types, added)
	sort.Sort(byTypeName(types))

	return s.move(id, from, types, func(typ reflect.Type) any {
		if typ == added {
			return component
		}
		return from.GetComponent(id.Index(), typ)
	})
}

// RemoveComponent moves the entity into the archetype without compType and
// returns its new id. Removing the last component deletes the entity and
// returns 0.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	from := s.archetypes[id.ArchetypeId()]
	if from == nil {
		return 0
	}

	types := make([]reflect.Type, 0, len(from.types))
	for _, typ := range from.types {
		if typ != compType {
			types = append(types, typ)
		}
	}

	if len(types) == 0 {
		from.Delete(id.Index())
		return 0
	}

	return s.move(id, from, types, func(typ reflect.Type) any {
		return from.GetComponent(id.Index(), typ)
	})
}

func (s *Storage) move(id EntityId, from *Archetype, types []reflect.Type, component func(reflect.Type) any) EntityId {
	to := s.archetypeFor(types)

	components := make([]any, 0, len(types))
	for _, typ := range types {
		components = append(components, component(typ))
	}
	newId := NewEntityId(to.id, to.Spawn(components))

	if ptr, ok := from.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = to
			to.refs.Put(newId, ptr)
		}
		from.refs.Del(id)
	}

	from.Delete(id.Index())
	return newId
}

// GetComponent returns a pointer to the entity's component of compType, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the entity's archetype has compType.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// EntityCount returns the number of live entities across all archetypes.
func (s *Storage) EntityCount() int {
	n := 0
	for _, archetype := range s.order {
		n += archetype.Len()
	}
	return n
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// extractComponentTypes returns the sorted value types of components.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		t := componentType(comp)
		switch t.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("ecs: components cannot be pointers, maps, channels, or functions")
		}
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	for i := 1; i < len(types); i++ {
		if types[i] == types[i-1] {
			panic("ecs: component type " + types[i].String() + " given more than once")
		}
	}
	return types
}

// hashTypesToUint32 is FNV-1a over the runtime type pointers of a sorted type set.
func hashTypesToUint32(types []reflect.Type) uint32 {
	const prime uint32 = 16777619
	var h uint32 = 2166136261

	for _, t := range types {
		ptr := uintptr(dataPointer(t))
		val := uint32(ptr)
		if unsafe.Sizeof(ptr) == 8 {
			val ^= uint32(uint64(ptr) >> 32)
		}
		h ^= val
		h *= prime
	}

	return h
}

// ComponentReader is anything that can look up a component by entity and type.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent is a typed GetComponent. Returns nil when absent.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	c, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return c
}

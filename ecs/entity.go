package ecs

// EntityId identifies an entity. The upper 32 bits hold the id of the archetype
// the entity lives in, the lower 32 bits its slot within that archetype.
type EntityId uint64

// NewEntityId packs an archetype id and slot index into an EntityId.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId returns the archetype half of the id.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index returns the slot half of the id.
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// EntityRef follows an entity across archetype moves. A zero Id means the
// entity it pointed at is gone.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}

package ecs

// EntityId packs the archetype ID into the upper 32 bits and the row inside
// that archetype into the lower 32 bits. Rows are never reused, so an id stays
// valid for the lifetime of the Storage.
type EntityId uint64

// NewEntityId creates an EntityId from an archetype ID and row index.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId extracts the archetype ID from the entity ID.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index extracts the row index from the entity ID.
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// EntityRef is a shared handle to an entity. Storage hands out at most one
// live EntityRef per entity and tracks it weakly, so holders can compare refs
// by pointer.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}

// Ref returns the shared EntityRef for id, creating it on first use. It
// returns nil if id does not belong to a known archetype.
func (s *Storage) Ref(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil || !archetype.contains(id.Index()) {
		return nil
	}

	if weakPtr, ok := archetype.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.trackRef(ref)
	return ref
}

// Resolve returns the id behind ref, or false for a nil or released ref.
func (s *Storage) Resolve(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Archetype == nil {
		return 0, false
	}
	return ref.Id, true
}

// Release detaches ref from its entity. Later Resolve calls report false and
// the next Ref call for the same entity builds a fresh handle.
func (s *Storage) Release(ref *EntityRef) bool {
	if ref == nil || ref.Archetype == nil {
		return false
	}
	ref.Archetype.refs.Del(ref.Id)
	ref.Archetype = nil
	return true
}

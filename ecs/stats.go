package ecs

// StorageStats summarises the contents of a Storage.
type StorageStats struct {
	ArchetypeCount   int
	TotalEntityCount int
	SingletonCount   int
	LiveRefCount     int
	Archetypes       []ArchetypeStats
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	Id          uint32
	EntityCount int
	Components  []string
}

// CollectStats walks the storage and reports entity, archetype and ref
// counts.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		ArchetypeCount: len(s.order),
		SingletonCount: len(s.singletons),
		Archetypes:     make([]ArchetypeStats, 0, len(s.order)),
	}

	for _, archetype := range s.order {
		names := make([]string, len(archetype.types))
		for i, t := range archetype.types {
			names[i] = t.String()
		}

		stats.TotalEntityCount += archetype.rows
		stats.LiveRefCount += archetype.liveRefs()
		stats.Archetypes = append(stats.Archetypes, ArchetypeStats{
			Id:          archetype.id,
			EntityCount: archetype.rows,
			Components:  names,
		})
	}

	return stats
}

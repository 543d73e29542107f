package ecs

import "iter"

// Query wraps a View with per-frame caching. The Scheduler refreshes every
// Query field of a system right before that system runs, so Iter always sees
// the entities spawned by earlier systems in the same frame.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	cachedArchetypes []*Archetype
	archetypeCount   int

	entities   []EntityId
	components []T
	valid      bool
}

// NewQuery creates a new Query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to storage. Called by the Scheduler during
// registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cachedArchetypes = nil
	q.archetypeCount = -1
	q.valid = false
}

// Execute rebuilds the cached entity list.
func (q *Query[T]) Execute() {
	if len(q.storage.order) != q.archetypeCount {
		q.cachedArchetypes = q.cachedArchetypes[:0]
		for _, archetype := range q.storage.order {
			if q.view.matchesArchetype(archetype) {
				q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			}
		}
		q.archetypeCount = len(q.storage.order)
	}

	q.entities = q.entities[:0]
	q.components = q.components[:0]
	for _, archetype := range q.cachedArchetypes {
		for id, item := range q.view.iterArchetype(archetype) {
			q.entities = append(q.entities, id)
			q.components = append(q.components, item)
		}
	}

	q.valid = true
}

// Len returns the number of cached entities.
func (q *Query[T]) Len() int {
	return len(q.entities)
}

// Iter returns an iterator over entity IDs and component data.
// Panics if Execute has not been called.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.valid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.entities {
			if !yield(q.entities[i], q.components[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute has not been called.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.valid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.components {
			if !yield(q.components[i]) {
				return
			}
		}
	}
}

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

// Archetype holds every entity sharing one exact set of component types.
// Rows are appended in spawn order and never removed.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []column
	rows    int
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype creates an archetype for the given sorted component types.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]column, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](64),
	}

	for idx, typ := range types {
		factory := registry.factory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.columns[idx] = factory()
	}

	return a
}

// Spawn appends one row built from components and returns its index.
func (a *Archetype) Spawn(components []any) uint32 {
	for _, comp := range components {
		idx := a.columnIndex(componentType(comp))
		if idx < 0 {
			panic("component type " + componentType(comp).String() + " does not belong to archetype")
		}
		a.columns[idx].append(comp)
	}

	row := a.rows
	a.rows++
	return uint32(row)
}

// GetComponent returns a pointer to the component of compType stored at row,
// or nil.
func (a *Archetype) GetComponent(row uint32, compType reflect.Type) any {
	idx := a.columnIndex(compType)
	if idx < 0 {
		return nil
	}
	return a.columns[idx].get(int(row))
}

// HasComponent checks if this archetype has the given component type.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's identifier.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of entities stored in the archetype.
func (a *Archetype) Len() int {
	return a.rows
}

// Iter yields every entity of the archetype in spawn order.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		for row := 0; row < a.rows; row++ {
			if !yield(NewEntityId(a.id, uint32(row))) {
				return
			}
		}
	}
}

func (a *Archetype) columnIndex(compType reflect.Type) int {
	for i, typ := range a.types {
		if typ == compType {
			return i
		}
	}
	return -1
}

func (a *Archetype) contains(row uint32) bool {
	return int(row) < a.rows
}

func (a *Archetype) trackRef(ref *EntityRef) {
	a.refs.Put(ref.Id, weak.Make(ref))
}

// liveRefs counts refs whose holders are still reachable.
func (a *Archetype) liveRefs() int {
	live := 0
	a.refs.ForEach(func(_ EntityId, ptr weak.Pointer[EntityRef]) bool {
		if ptr.Value() != nil {
			live++
		}
		return true
	})
	return live
}

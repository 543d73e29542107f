package sim

import (
	"iter"

	"github.com/kamstrup/intmap"
	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/piece"
)

// Registry is the ordered, append-only list of every piece of a session.
// Landed pieces stay registered for the life of the session; the order of
// registration decides which piece the oracle reports for a shared cell.
type Registry struct {
	storage  *ecs.Storage
	view     *ecs.View[PieceEntity]
	entities []PieceEntity
	index    *intmap.Map[ecs.EntityId, int]
}

// NewRegistry creates an empty registry over storage. The piece components
// must already be registered with the storage's component registry.
func NewRegistry(storage *ecs.Storage) *Registry {
	return &Registry{
		storage: storage,
		view:    ecs.NewView[PieceEntity](storage),
		index:   intmap.New[ecs.EntityId, int](64),
	}
}

// Spawn appends p and returns its position in the registry. An invalid
// variant is a programming error and panics before anything is stored.
func (r *Registry) Spawn(p Piece) int {
	p.Variant.MustValid()

	id := r.view.Spawn(PieceEntity{
		Anchor: &Anchor{Row: p.Row, Col: p.Col},
		Shape:  &Shape{Variant: p.Variant},
		Motion: &Motion{Falling: p.Falling},
	})

	entity := r.view.Get(id)
	if entity == nil {
		panic("sim: spawned piece is not readable")
	}

	r.entities = append(r.entities, *entity)
	r.index.Put(id, len(r.entities)-1)
	return len(r.entities) - 1
}

// Len returns the number of registered pieces.
func (r *Registry) Len() int {
	return len(r.entities)
}

// At returns the i-th registered piece. The component pointers are live.
func (r *Registry) At(i int) PieceEntity {
	return r.entities[i]
}

// IndexOf returns the registry position of id.
func (r *Registry) IndexOf(id ecs.EntityId) (int, bool) {
	return r.index.Get(id)
}

// Pieces returns a detached copy of every piece in registry order.
func (r *Registry) Pieces() []Piece {
	pieces := make([]Piece, len(r.entities))
	for i, e := range r.entities {
		pieces[i] = e.Piece()
	}
	return pieces
}

// All yields pieces oldest first.
func (r *Registry) All() iter.Seq2[int, PieceEntity] {
	return func(yield func(int, PieceEntity) bool) {
		for i, e := range r.entities {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Backward yields pieces newest first.
func (r *Registry) Backward() iter.Seq2[int, PieceEntity] {
	return func(yield func(int, PieceEntity) bool) {
		for i := len(r.entities) - 1; i >= 0; i-- {
			if !yield(i, r.entities[i]) {
				return
			}
		}
	}
}

// LatestFalling returns the most recently registered piece that is still
// falling.
func (r *Registry) LatestFalling() (int, bool) {
	for i, e := range r.Backward() {
		if e.Falling {
			return i, true
		}
	}
	return 0, false
}

// Occupant is the collision oracle: it returns the first piece, in
// registration order, whose footprint covers cell. Every query scans the
// whole registry, so a full board pass costs O(pieces × rows × cols).
func (r *Registry) Occupant(cell piece.Cell) (int, bool) {
	return r.occupant(cell, -1)
}

func (r *Registry) occupant(cell piece.Cell, skip int) (int, bool) {
	for i, e := range r.entities {
		if i == skip {
			continue
		}
		if e.Variant.Covers(e.Anchor.Cell(), cell) {
			return i, true
		}
	}
	return 0, false
}

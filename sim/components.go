package sim

import (
	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/piece"
)

// Anchor is the reference cell a piece's footprint is computed from.
type Anchor struct {
	Row, Col int
}

// Cell returns the anchor as a piece.Cell.
func (a Anchor) Cell() piece.Cell {
	return piece.Cell{Row: a.Row, Col: a.Col}
}

// Shape holds the piece's current variant.
type Shape struct {
	Variant piece.Variant
}

// Motion records whether gravity still acts on the piece. Once Falling is
// false it never becomes true again.
type Motion struct {
	Falling bool
}

// PieceEntity is the ECS view of one registered piece.
type PieceEntity struct {
	ecs.EntityId
	*Anchor
	*Shape
	*Motion
}

// Piece is a detached copy of a piece's state.
type Piece struct {
	Variant piece.Variant
	Row     int
	Col     int
	Falling bool
}

// Piece copies the entity's current state.
func (e PieceEntity) Piece() Piece {
	return Piece{
		Variant: e.Variant,
		Row:     e.Row,
		Col:     e.Col,
		Falling: e.Falling,
	}
}

// Board is the singleton holding the resolved board geometry.
type Board struct {
	Width     int
	Height    int
	SpawnRow  int
	ShowScore bool
}

// GameState is the singleton holding score and termination.
type GameState struct {
	Score    int
	Spawned  int
	GameOver bool
	Quit     bool
}

// ActivePiece is the singleton naming the piece that receives moves.
type ActivePiece struct {
	Ref *ecs.EntityRef
}

// TickReport is the singleton describing what the current tick did. It is
// reset at the start of every tick.
type TickReport struct {
	Intents  int
	Applied  int
	Advanced int
	Frozen   int
	Spawned  bool
	Cleared  int
}

// RegisterComponents registers the piece components with registry.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Anchor](registry)
	ecs.RegisterComponent[Shape](registry)
	ecs.RegisterComponent[Motion](registry)
}

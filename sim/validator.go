package sim

import "github.com/plus3/blockfall/piece"

// Validator decides whether a registered piece may move, and applies the
// move when it may.
type Validator struct {
	registry *Registry
	width    int
	height   int
	mode     MovementMode
}

// NewValidator creates a validator for a width×height board.
func NewValidator(registry *Registry, width, height int, mode MovementMode) *Validator {
	return &Validator{
		registry: registry,
		width:    width,
		height:   height,
		mode:     mode,
	}
}

// CanMove reports whether piece i may move in direction d.
func (v *Validator) CanMove(i int, d piece.Direction) bool {
	e := v.registry.At(i)
	if v.mode == MovementLegacy {
		return v.legacy(e, d)
	}
	return v.exact(i, e, d)
}

// Move applies d to piece i if CanMove allows it. On refusal nothing changes.
func (v *Validator) Move(i int, d piece.Direction) bool {
	if !v.CanMove(i, d) {
		return false
	}

	e := v.registry.At(i)
	variant, anchor := d.Apply(e.Variant, e.Anchor.Cell())
	e.Variant = variant
	e.Row = anchor.Row
	e.Col = anchor.Col
	return true
}

// exact checks every cell of the resulting footprint. Cells above the top
// edge are allowed; the side and bottom edges are not.
func (v *Validator) exact(i int, e PieceEntity, d piece.Direction) bool {
	variant, anchor := d.Apply(e.Variant, e.Anchor.Cell())

	for _, cell := range variant.Footprint(anchor) {
		if cell.Col < 0 || cell.Col >= v.width || cell.Row >= v.height {
			return false
		}
		if cell.Row < 0 {
			continue
		}
		if _, hit := v.registry.occupant(cell, i); hit {
			return false
		}
	}
	return true
}

func (v *Validator) legacy(e PieceEntity, d piece.Direction) bool {
	anchor := e.Anchor.Cell()
	rule := piece.Legacy(e.Variant, d)

	for _, probe := range rule.Probes {
		if _, hit := v.registry.Occupant(anchor.Add(probe)); hit {
			return false
		}
	}
	return rule.Bounds(anchor, v.width, v.height)
}

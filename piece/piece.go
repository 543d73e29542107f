// Package piece describes the eight fixed block shapes: their footprints
// relative to an anchor cell, their rotation partners, and their score
// weights. It has no notion of a board; see package sim for that.
package piece

import (
	"fmt"
	"math/rand/v2"
)

// Cell is a (row, column) board coordinate or an offset from an anchor.
// Rows grow downward.
type Cell struct {
	Row, Col int
}

// Add returns c translated by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Variant is one of the eight shape/orientation tags.
type Variant uint8

const (
	// HLine is a horizontal line of three cells.
	//	o o o
	HLine Variant = iota
	// VLine is a vertical line of three cells.
	VLine
	// LFlat is an L with its long leg lying flat.
	//	o
	//	o o o
	LFlat
	// LTall is an L with its long leg upright.
	//	o
	//	o
	//	o o
	LTall
	// TDown is a T with its stem pointing down.
	//	o o o
	//	  o
	//	  o
	TDown
	// TRight is a T with its bar on the left and stem pointing right.
	//	o
	//	o o o
	//	o
	TRight
	// TUp is a T with its stem pointing up.
	//	  o
	//	  o
	//	o o o
	TUp
	// TLeft is a T with its bar on the right and stem pointing left.
	//	    o
	//	o o o
	//	    o
	TLeft

	// Count is the number of valid variants.
	Count int = iota
)

// Family groups variants that share a score weight.
type Family uint8

const (
	FamilyLine Family = iota
	FamilyL
	FamilyT
)

type shape struct {
	name   string
	family Family
	next   Variant
	cells  []Cell
}

// shapes is indexed by Variant. The anchor is always the first cell listed.
var shapes = [Count]shape{
	HLine: {
		name:   "hline",
		family: FamilyLine,
		next:   VLine,
		cells:  []Cell{{0, 0}, {0, 1}, {0, 2}},
	},
	VLine: {
		name:   "vline",
		family: FamilyLine,
		next:   HLine,
		cells:  []Cell{{0, 0}, {1, 0}, {2, 0}},
	},
	LFlat: {
		name:   "lflat",
		family: FamilyL,
		next:   LTall,
		cells:  []Cell{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	LTall: {
		name:   "ltall",
		family: FamilyL,
		next:   LFlat,
		cells:  []Cell{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
	},
	TDown: {
		name:   "tdown",
		family: FamilyT,
		next:   TLeft,
		cells:  []Cell{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {2, 1}},
	},
	TRight: {
		name:   "tright",
		family: FamilyT,
		next:   TDown,
		cells:  []Cell{{0, 0}, {1, 0}, {2, 0}, {1, 1}, {1, 2}},
	},
	TUp: {
		name:   "tup",
		family: FamilyT,
		next:   TRight,
		cells:  []Cell{{0, 0}, {1, 0}, {2, 0}, {2, -1}, {2, 1}},
	},
	TLeft: {
		name:   "tleft",
		family: FamilyT,
		next:   TUp,
		cells:  []Cell{{0, 0}, {0, 1}, {0, 2}, {-1, 2}, {1, 2}},
	},
}

var familyWeights = [...]int{
	FamilyLine: 3,
	FamilyL:    4,
	FamilyT:    5,
}

// Valid reports whether v is one of the eight variants.
func (v Variant) Valid() bool {
	return int(v) < Count
}

func (v Variant) String() string {
	if !v.Valid() {
		return fmt.Sprintf("Variant(%d)", v)
	}
	return shapes[v].name
}

// MustValid panics if v is not a valid variant.
func (v Variant) MustValid() Variant {
	if !v.Valid() {
		panic(fmt.Sprintf("piece: invalid variant %d", v))
	}
	return v
}

// Offsets returns the footprint of v relative to its anchor. The slice is
// shared and must not be modified.
func (v Variant) Offsets() []Cell {
	return shapes[v.MustValid()].cells
}

// Footprint returns the cells v covers when anchored at anchor.
func (v Variant) Footprint(anchor Cell) []Cell {
	offsets := v.Offsets()
	cells := make([]Cell, len(offsets))
	for i, off := range offsets {
		cells[i] = anchor.Add(off)
	}
	return cells
}

// Covers reports whether v anchored at anchor covers target.
func (v Variant) Covers(anchor, target Cell) bool {
	d := Cell{Row: target.Row - anchor.Row, Col: target.Col - anchor.Col}
	for _, off := range v.Offsets() {
		if off == d {
			return true
		}
	}
	return false
}

// Next returns the orientation v rotates into. Lines and Ls swap with their
// partner; Ts cycle TDown → TLeft → TUp → TRight → TDown.
func (v Variant) Next() Variant {
	return shapes[v.MustValid()].next
}

// Family returns the weight family of v.
func (v Variant) Family() Family {
	return shapes[v.MustValid()].family
}

// Weight returns the score credited when v is spawned.
func (v Variant) Weight() int {
	return familyWeights[v.Family()]
}

// Extent is the bounding box of a footprint in anchor-relative offsets.
type Extent struct {
	MinRow, MaxRow, MinCol, MaxCol int
}

// Extent returns the bounding box of v's offsets.
func (v Variant) Extent() Extent {
	offsets := v.Offsets()
	e := Extent{
		MinRow: offsets[0].Row, MaxRow: offsets[0].Row,
		MinCol: offsets[0].Col, MaxCol: offsets[0].Col,
	}
	for _, off := range offsets[1:] {
		e.MinRow = min(e.MinRow, off.Row)
		e.MaxRow = max(e.MaxRow, off.Row)
		e.MinCol = min(e.MinCol, off.Col)
		e.MaxCol = max(e.MaxCol, off.Col)
	}
	return e
}

// All returns every variant in declaration order.
func All() []Variant {
	all := make([]Variant, Count)
	for i := range all {
		all[i] = Variant(i)
	}
	return all
}

// Random picks a variant uniformly. The upper bound is Count, exclusive, so
// the result is always valid.
func Random(rng *rand.Rand) Variant {
	return Variant(rng.IntN(Count)).MustValid()
}

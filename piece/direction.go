package piece

import "fmt"

// Direction is a requested move of a piece.
type Direction uint8

const (
	Left Direction = iota
	Right
	Down
	Rotate
)

var directionNames = [...]string{
	Left:   "left",
	Right:  "right",
	Down:   "down",
	Rotate: "rotate",
}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", d)
	}
	return directionNames[d]
}

// Delta returns the anchor translation for d. Rotate does not translate.
func (d Direction) Delta() Cell {
	switch d {
	case Left:
		return Cell{Col: -1}
	case Right:
		return Cell{Col: 1}
	case Down:
		return Cell{Row: 1}
	}
	return Cell{}
}

// Apply returns the anchor and variant a piece would have after moving d.
func (d Direction) Apply(v Variant, anchor Cell) (Variant, Cell) {
	if d == Rotate {
		return v.Next(), anchor
	}
	return v, anchor.Add(d.Delta())
}

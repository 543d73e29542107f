package sim

import (
	"fmt"

	"github.com/plus3/blockfall/piece"
)

// Intent is an abstract player request, applied by the tick driver.
type Intent uint8

const (
	MoveLeft Intent = iota
	MoveRight
	MoveDown
	Rotate
	Quit
)

var intentNames = [...]string{
	MoveLeft:  "move-left",
	MoveRight: "move-right",
	MoveDown:  "move-down",
	Rotate:    "rotate",
	Quit:      "quit",
}

func (i Intent) String() string {
	if int(i) >= len(intentNames) {
		return fmt.Sprintf("Intent(%d)", i)
	}
	return intentNames[i]
}

// Direction maps a movement intent to a piece direction. Quit has none.
func (i Intent) Direction() (piece.Direction, bool) {
	switch i {
	case MoveLeft:
		return piece.Left, true
	case MoveRight:
		return piece.Right, true
	case MoveDown:
		return piece.Down, true
	case Rotate:
		return piece.Rotate, true
	}
	return 0, false
}

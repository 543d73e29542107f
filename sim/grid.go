package sim

import "github.com/plus3/blockfall/piece"

// Grid is the occupancy matrix derived from the registry every tick. It is
// never written back: compaction only changes what the current frame shows.
type Grid struct {
	Width  int
	Height int
	Cells  [][]bool
}

// NewGrid allocates an empty width×height grid.
func NewGrid(width, height int) *Grid {
	cells := make([][]bool, height)
	backing := make([]bool, width*height)
	for r := range cells {
		cells[r] = backing[r*width : (r+1)*width : (r+1)*width]
	}
	return &Grid{Width: width, Height: height, Cells: cells}
}

// Recompute rebuilds every cell from the collision oracle.
func (g *Grid) Recompute(registry *Registry) {
	for r, row := range g.Cells {
		for c := range row {
			_, row[c] = registry.Occupant(piece.Cell{Row: r, Col: c})
		}
	}
}

// Full reports whether every cell of row r is occupied.
func (g *Grid) Full(r int) bool {
	for _, occupied := range g.Cells[r] {
		if !occupied {
			return false
		}
	}
	return true
}

// FullRows returns the indices of every fully occupied row, top first.
func (g *Grid) FullRows() []int {
	var rows []int
	for r := range g.Cells {
		if g.Full(r) {
			rows = append(rows, r)
		}
	}
	return rows
}

// Compact scans rows top to bottom. Each full row is removed by shifting
// every row above it down by one and clearing the top row. It returns the
// number of rows cleared.
func (g *Grid) Compact() int {
	cleared := 0
	for r := range g.Cells {
		if !g.Full(r) {
			continue
		}
		for above := r; above > 0; above-- {
			copy(g.Cells[above], g.Cells[above-1])
		}
		clear(g.Cells[0])
		cleared++
	}
	return cleared
}

// Clone returns a deep copy of the cells.
func (g *Grid) Clone() [][]bool {
	out := NewGrid(g.Width, g.Height)
	for r, row := range g.Cells {
		copy(out.Cells[r], row)
	}
	return out.Cells
}

// Occupied counts the occupied cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, row := range g.Cells {
		for _, occupied := range row {
			if occupied {
				n++
			}
		}
	}
	return n
}

package sim

import (
	"strconv"
	"strings"
)

// Snapshot is the render model handed to renderers once per tick. Cells is
// the compacted occupancy grid, row-major, Height rows of Width columns.
type Snapshot struct {
	Tick      uint64   `msgpack:"tick"`
	Width     int      `msgpack:"width"`
	Height    int      `msgpack:"height"`
	Cells     [][]bool `msgpack:"cells"`
	Score     int      `msgpack:"score"`
	ShowScore bool     `msgpack:"show_score"`
	GameOver  bool     `msgpack:"game_over"`
	Pieces    int      `msgpack:"pieces"`
}

// Text lays the board out for a plain terminal: an underscore
// bar, one "| o o |" line per row, a closing bar and the score if shown.
func (s Snapshot) Text() string {
	bar := " " + strings.Repeat("_", s.Width*2) + "\n"

	var b strings.Builder
	b.Grow(len(bar)*2 + s.Height*(s.Width*2+4) + 16)

	b.WriteString(bar)
	for _, row := range s.Cells {
		b.WriteString("| ")
		for _, occupied := range row {
			if occupied {
				b.WriteString("o ")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString(bar)

	if s.ShowScore {
		b.WriteString("SCORE: ")
		b.WriteString(strconv.Itoa(s.Score))
		b.WriteByte('\n')
	}
	return b.String()
}

// Renderer consumes snapshots. Render is called from the tick loop after
// every tick; implementations must not block for long.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

// MultiRenderer fans one snapshot out to several renderers in order.
type MultiRenderer []Renderer

func (m MultiRenderer) Render(s Snapshot) {
	for _, r := range m {
		r.Render(s)
	}
}

package main

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/blockfall/sim"
)

const (
	cellSize   = 16
	border     = 4
	statusRows = 2
	lineHeight = 16
)

var (
	backgroundColor = color.RGBA{24, 24, 32, 255}
	wellColor       = color.RGBA{40, 40, 52, 255}
	blockColor      = color.RGBA{179, 229, 252, 255}
	gameOverColor   = color.RGBA{255, 120, 120, 255}
)

// game adapts a running session to ebiten. The session ticks on its own
// goroutine; Update only forwards keys and Draw only reads snapshots.
type game struct {
	session *sim.Session
	events  chan sim.KeyEvent
	done    chan struct{}
	err     error
	keys    []ebiten.Key
	perf    *perfOverlay
}

func newGame(session *sim.Session) *game {
	return &game{
		session: session,
		events:  make(chan sim.KeyEvent, 16),
		done:    make(chan struct{}),
		perf:    newPerfOverlay(60),
	}
}

func (g *game) run(ctx context.Context) {
	defer close(g.done)
	g.err = g.session.Run(ctx, g.events)
}

func (g *game) wait() error {
	<-g.done
	return g.err
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.perf.toggle()
	}

	select {
	case <-g.done:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			return ebiten.Termination
		}
		return nil
	default:
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		key, ok := translate(k)
		if !ok {
			continue
		}
		select {
		case g.events <- sim.KeyEvent{Key: key, Pressed: true}:
		default:
		}
	}
	return nil
}

func translate(k ebiten.Key) (sim.Key, bool) {
	switch k {
	case ebiten.KeyArrowLeft:
		return sim.KeyLeft, true
	case ebiten.KeyArrowRight:
		return sim.KeyRight, true
	case ebiten.KeyArrowDown:
		return sim.KeyDown, true
	case ebiten.KeyArrowUp:
		return sim.KeyUp, true
	case ebiten.KeyEscape:
		return sim.KeyEscape, true
	case ebiten.KeySpace:
		return sim.KeySpace, true
	}

	name := strings.TrimPrefix(k.String(), "Digit")
	if len(name) != 1 {
		return "", false
	}
	return sim.Key(name), true
}

func (g *game) Draw(screen *ebiten.Image) {
	snap := g.session.Snapshot()
	screen.Fill(backgroundColor)

	vector.DrawFilledRect(screen, border, border,
		float32(snap.Width*cellSize), float32(snap.Height*cellSize), wellColor, false)

	for r, row := range snap.Cells {
		for c, occupied := range row {
			if !occupied {
				continue
			}
			x := float32(border + c*cellSize)
			y := float32(border + r*cellSize)
			vector.DrawFilledRect(screen, x+1, y+1, cellSize-2, cellSize-2, blockColor, false)
		}
	}

	y := border*2 + snap.Height*cellSize
	if snap.ShowScore {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SCORE: %d", snap.Score), border, y)
	}
	if snap.GameOver {
		vector.StrokeRect(screen, border, border,
			float32(snap.Width*cellSize), float32(snap.Height*cellSize), 2, gameOverColor, false)
		ebitenutil.DebugPrintAt(screen, "GAME OVER", border, y+lineHeight)
	}

	g.perf.sample(time.Now())
	g.perf.draw(screen, snap)
}

func (g *game) Layout(_, _ int) (int, int) {
	cfg := g.session.Config()
	return border*2 + cfg.Width*cellSize, border*3 + cfg.Height*cellSize + statusRows*lineHeight
}

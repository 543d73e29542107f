package main

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/blockfall/sim"
)

var (
	boardStyle    = tcell.StyleDefault
	blockStyle    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	gameOverStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// terminal draws snapshots on a tcell screen and turns its key events into
// sim.KeyEvents.
type terminal struct {
	screen tcell.Screen
	quit   sim.Key
}

func newTerminal(screen tcell.Screen, quit sim.Key) *terminal {
	return &terminal{screen: screen, quit: quit}
}

// Render draws the board text at the top left corner.
func (t *terminal) Render(snap sim.Snapshot) {
	t.screen.Clear()

	lines := strings.Split(strings.TrimSuffix(snap.Text(), "\n"), "\n")
	for y, line := range lines {
		x := 0
		for _, r := range line {
			style := boardStyle
			if r == 'o' {
				style = blockStyle
			}
			t.screen.SetContent(x, y, r, nil, style)
			x++
		}
	}

	if snap.GameOver {
		t.drawString(0, len(lines)+1, "GAME OVER", gameOverStyle)
	}
	t.screen.Show()
}

func (t *terminal) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// pollKeys forwards key presses until the screen is finalised or done is
// closed. Ctrl-C is reported as the quit key.
func (t *terminal) pollKeys(events chan<- sim.KeyEvent, done <-chan struct{}) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			key, ok := t.translate(ev)
			if !ok {
				continue
			}
			select {
			case events <- sim.KeyEvent{Key: key, Pressed: true}:
			case <-done:
				return
			}
		}
	}
}

func (t *terminal) translate(ev *tcell.EventKey) (sim.Key, bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return sim.KeyLeft, true
	case tcell.KeyRight:
		return sim.KeyRight, true
	case tcell.KeyDown:
		return sim.KeyDown, true
	case tcell.KeyUp:
		return sim.KeyUp, true
	case tcell.KeyEscape:
		return sim.KeyEscape, true
	case tcell.KeyCtrlC:
		return t.quit, true
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return sim.KeySpace, true
		}
		if unicode.IsPrint(r) {
			return sim.Key(string(unicode.ToUpper(r))), true
		}
	}
	return "", false
}

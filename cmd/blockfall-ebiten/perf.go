package main

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/plus3/blockfall/sim"
)

// perfOverlay keeps a ring of recent draw intervals and prints them with the
// session's tick and piece counts.
type perfOverlay struct {
	visible bool
	history []time.Duration
	index   int
	last    time.Time
}

func newPerfOverlay(historyFrames int) *perfOverlay {
	return &perfOverlay{history: make([]time.Duration, historyFrames)}
}

func (p *perfOverlay) toggle() {
	p.visible = !p.visible
}

// sample records the time since the previous call.
func (p *perfOverlay) sample(now time.Time) {
	if !p.last.IsZero() {
		p.history[p.index] = now.Sub(p.last)
		p.index = (p.index + 1) % len(p.history)
	}
	p.last = now
}

func (p *perfOverlay) average() time.Duration {
	var total time.Duration
	n := 0
	for _, d := range p.history {
		if d > 0 {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

func (p *perfOverlay) lines(snap sim.Snapshot) []string {
	avg := p.average()
	fps := 0.0
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}
	return []string{
		fmt.Sprintf("tick %d  pieces %d", snap.Tick, snap.Pieces),
		fmt.Sprintf("frame %.2fms (%.0f fps)", float64(avg)/float64(time.Millisecond), fps),
		fmt.Sprintf("tps %.0f", ebiten.ActualTPS()),
	}
}

func (p *perfOverlay) draw(screen *ebiten.Image, snap sim.Snapshot) {
	if !p.visible {
		return
	}
	for i, line := range p.lines(snap) {
		ebitenutil.DebugPrintAt(screen, line, border*2, border*2+i*lineHeight)
	}
}

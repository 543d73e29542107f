package sim_test

import (
	"strconv"
	"testing"

	"github.com/plus3/blockfall/piece"
	"github.com/plus3/blockfall/sim"
)

func filledRegistry(n, width int) *sim.Registry {
	reg := newRegistry()
	for i := range n {
		reg.Spawn(sim.Piece{
			Variant: piece.Variant(i % piece.Count),
			Row:     (i / width) * 3,
			Col:     i % width,
		})
	}
	return reg
}

func BenchmarkOccupant(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		reg := filledRegistry(n, 20)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			cell := piece.Cell{Row: 19, Col: 19}
			for b.Loop() {
				reg.Occupant(cell)
			}
		})
	}
}

func BenchmarkGridRecompute(b *testing.B) {
	reg := filledRegistry(100, 20)
	g := sim.NewGrid(20, 20)
	for b.Loop() {
		g.Recompute(reg)
	}
}

func BenchmarkStep(b *testing.B) {
	cfg := testConfig(20, 20)
	s := newSession(b, cfg)
	for b.Loop() {
		if s.GameOver() {
			s = newSession(b, cfg)
		}
		s.Step()
	}
}

package sim_test

import (
	"testing"

	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/piece"
	"github.com/plus3/blockfall/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *sim.Registry {
	components := ecs.NewComponentRegistry()
	sim.RegisterComponents(components)
	return sim.NewRegistry(ecs.NewStorage(components))
}

func TestRegistrySpawnKeepsOrder(t *testing.T) {
	reg := newRegistry()

	pieces := []sim.Piece{
		{Variant: piece.HLine, Row: 4, Col: 0},
		{Variant: piece.TDown, Row: 1, Col: 3, Falling: true},
		{Variant: piece.LTall, Row: 0, Col: 7, Falling: true},
	}
	for i, p := range pieces {
		assert.Equal(t, i, reg.Spawn(p))
	}

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, pieces, reg.Pieces())

	for i, e := range reg.All() {
		idx, ok := reg.IndexOf(e.EntityId)
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}

	var backward []int
	for i := range reg.Backward() {
		backward = append(backward, i)
	}
	assert.Equal(t, []int{2, 1, 0}, backward)

	latest, ok := reg.LatestFalling()
	require.True(t, ok)
	assert.Equal(t, 2, latest)
}

func TestRegistryEntitiesAreLive(t *testing.T) {
	reg := newRegistry()
	i := reg.Spawn(sim.Piece{Variant: piece.VLine, Row: 0, Col: 2, Falling: true})

	e := reg.At(i)
	e.Row = 5
	e.Falling = false

	assert.Equal(t, sim.Piece{Variant: piece.VLine, Row: 5, Col: 2}, reg.At(i).Piece())
	_, ok := reg.LatestFalling()
	assert.False(t, ok)
}

func TestRegistryRejectsInvalidVariant(t *testing.T) {
	reg := newRegistry()
	assert.Panics(t, func() {
		reg.Spawn(sim.Piece{Variant: piece.Variant(piece.Count)})
	})
	assert.Equal(t, 0, reg.Len())
}

func TestOccupantFirstInsertionWins(t *testing.T) {
	reg := newRegistry()
	reg.Spawn(sim.Piece{Variant: piece.HLine, Row: 2, Col: 1})
	reg.Spawn(sim.Piece{Variant: piece.VLine, Row: 0, Col: 2})

	i, ok := reg.Occupant(piece.Cell{Row: 2, Col: 2})
	require.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = reg.Occupant(piece.Cell{Row: 0, Col: 2})
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = reg.Occupant(piece.Cell{Row: 3, Col: 3})
	assert.False(t, ok)
}

func TestValidatorRejectsLeftAtColumnZero(t *testing.T) {
	for _, mode := range []sim.MovementMode{sim.MovementExact, sim.MovementLegacy} {
		t.Run(mode.String(), func(t *testing.T) {
			reg := newRegistry()
			i := reg.Spawn(sim.Piece{Variant: piece.HLine, Row: 2, Col: 0, Falling: true})
			v := sim.NewValidator(reg, 5, 5, mode)

			assert.False(t, v.CanMove(i, piece.Left))
			assert.False(t, v.Move(i, piece.Left))
			assert.Equal(t, sim.Piece{Variant: piece.HLine, Row: 2, Col: 0, Falling: true}, reg.At(i).Piece())
		})
	}
}

func TestValidatorExact(t *testing.T) {
	reg := newRegistry()
	reg.Spawn(sim.Piece{Variant: piece.VLine, Row: 1, Col: 3})
	hline := reg.Spawn(sim.Piece{Variant: piece.HLine, Row: 1, Col: 0, Falling: true})
	v := sim.NewValidator(reg, 5, 5, sim.MovementExact)

	tests := []struct {
		name string
		dir  piece.Direction
		want bool
	}{
		{"left edge", piece.Left, false},
		{"right blocked by vline", piece.Right, false},
		{"down free", piece.Down, true},
		{"rotate free", piece.Rotate, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.CanMove(hline, tt.dir))
		})
	}

	require.True(t, v.Move(hline, piece.Down))
	assert.Equal(t, 2, reg.At(hline).Row)

	require.True(t, v.Move(hline, piece.Rotate))
	assert.Equal(t, piece.VLine, reg.At(hline).Variant)

	// The vertical line now spans rows 2..4: nothing below the board.
	assert.False(t, v.CanMove(hline, piece.Down))
}

func TestValidatorExactAllowsCellsAboveTop(t *testing.T) {
	reg := newRegistry()
	i := reg.Spawn(sim.Piece{Variant: piece.TDown, Row: 0, Col: 0, Falling: true})
	v := sim.NewValidator(reg, 5, 5, sim.MovementExact)

	require.True(t, v.Move(i, piece.Rotate))
	assert.Equal(t, piece.TLeft, reg.At(i).Variant)
}

func TestValidatorLegacyDiffersFromExact(t *testing.T) {
	t.Run("t rotation ignores the target footprint", func(t *testing.T) {
		reg := newRegistry()
		reg.Spawn(sim.Piece{Variant: piece.VLine, Row: 3, Col: 6})
		i := reg.Spawn(sim.Piece{Variant: piece.TDown, Row: 2, Col: 4, Falling: true})

		exact := sim.NewValidator(reg, 10, 10, sim.MovementExact)
		legacy := sim.NewValidator(reg, 10, 10, sim.MovementLegacy)

		assert.False(t, exact.CanMove(i, piece.Rotate))
		assert.True(t, legacy.CanMove(i, piece.Rotate))
	})

	t.Run("tall l rotation bound uses the width", func(t *testing.T) {
		reg := newRegistry()
		i := reg.Spawn(sim.Piece{Variant: piece.LTall, Row: 8, Col: 2, Falling: true})

		exact := sim.NewValidator(reg, 10, 12, sim.MovementExact)
		legacy := sim.NewValidator(reg, 10, 12, sim.MovementLegacy)

		assert.True(t, exact.CanMove(i, piece.Rotate))
		assert.False(t, legacy.CanMove(i, piece.Rotate))
	})
}

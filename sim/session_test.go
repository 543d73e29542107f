package sim_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/plus3/blockfall/piece"
	"github.com/plus3/blockfall/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(width, height int) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	cfg.TickInterval = time.Millisecond
	cfg.Seed = 42
	return cfg
}

func newSession(t testing.TB, cfg sim.Config, opts ...sim.Option) *sim.Session {
	t.Helper()
	s, err := sim.NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestSeedPiece(t *testing.T) {
	s := newSession(t, testConfig(5, 5))

	require.Equal(t, []sim.Piece{
		{Variant: piece.HLine, Row: 1, Col: 1, Falling: true},
	}, s.Pieces())

	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.Tick)
	assert.Equal(t, []bool{false, true, true, true, false}, snap.Cells[1])
	assert.Zero(t, snap.Score)
	assert.False(t, snap.GameOver)
}

func TestSeedPieceFallsOneRowPerTick(t *testing.T) {
	s := newSession(t, testConfig(5, 5))

	snap := s.Step()
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, 2, s.Pieces()[0].Row)
	assert.Equal(t, []bool{false, true, true, true, false}, snap.Cells[2])
	assert.False(t, s.LastTick().Spawned)
	assert.Zero(t, snap.Score)

	s.Step()
	s.Step()
	require.Equal(t, 4, s.Pieces()[0].Row)
	require.True(t, s.Pieces()[0].Falling)

	snap = s.Step()
	report := s.LastTick()
	assert.Equal(t, 1, report.Frozen)
	assert.True(t, report.Spawned)
	assert.False(t, s.Pieces()[0].Falling)
	assert.Len(t, s.Pieces(), 2)
	assert.Contains(t, []int{3, 4, 5}, snap.Score)
	assert.False(t, snap.GameOver)
}

func TestIntentsApplyBeforeGravity(t *testing.T) {
	s := newSession(t, testConfig(10, 10), sim.WithoutSeedPiece())
	s.Place(sim.Piece{Variant: piece.HLine, Row: 2, Col: 4, Falling: true})

	require.True(t, s.Submit(sim.MoveLeft))
	require.True(t, s.Submit(sim.MoveDown))
	s.Step()

	assert.Equal(t, sim.Piece{Variant: piece.HLine, Row: 4, Col: 3, Falling: true}, s.Pieces()[0])

	report := s.LastTick()
	assert.Equal(t, 2, report.Intents)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Advanced)
}

func TestIntentLeftAtColumnZeroIsIgnored(t *testing.T) {
	s := newSession(t, testConfig(5, 8), sim.WithoutSeedPiece())
	s.Place(sim.Piece{Variant: piece.HLine, Row: 2, Col: 0, Falling: true})

	s.Submit(sim.MoveLeft)
	s.Step()

	assert.Equal(t, sim.Piece{Variant: piece.HLine, Row: 3, Col: 0, Falling: true}, s.Pieces()[0])
	assert.Equal(t, 1, s.LastTick().Intents)
	assert.Zero(t, s.LastTick().Applied)
}

func TestIntentsTargetNewestFallingPiece(t *testing.T) {
	s := newSession(t, testConfig(10, 10), sim.WithoutSeedPiece())
	s.Place(sim.Piece{Variant: piece.VLine, Row: 0, Col: 2, Falling: true})
	s.Place(sim.Piece{Variant: piece.VLine, Row: 0, Col: 6, Falling: true})

	s.Submit(sim.MoveRight)
	s.Step()

	pieces := s.Pieces()
	assert.Equal(t, 2, pieces[0].Col)
	assert.Equal(t, 7, pieces[1].Col)
	assert.Equal(t, 1, pieces[0].Row)
	assert.Equal(t, 1, pieces[1].Row)
}

func TestRotateIntent(t *testing.T) {
	s := newSession(t, testConfig(10, 10), sim.WithoutSeedPiece())
	s.Place(sim.Piece{Variant: piece.TDown, Row: 2, Col: 4, Falling: true})

	s.Submit(sim.Rotate)
	s.Step()

	assert.Equal(t, sim.Piece{Variant: piece.TLeft, Row: 3, Col: 4, Falling: true}, s.Pieces()[0])
}

func TestLineClearIsCosmetic(t *testing.T) {
	s := newSession(t, testConfig(3, 6), sim.WithoutSeedPiece())
	s.Place(sim.Piece{Variant: piece.HLine, Row: 5, Col: 0})
	s.Place(sim.Piece{Variant: piece.VLine, Row: 0, Col: 0, Falling: true})

	snap := s.Step()
	require.Equal(t, 1, s.LastTick().Cleared)
	assert.Equal(t, [][]bool{
		{false, false, false},
		{false, false, false},
		{true, false, false},
		{true, false, false},
		{true, false, false},
		{false, false, false},
	}, snap.Cells)

	// The landed line is still registered and the next tick shows it again.
	assert.Equal(t, sim.Piece{Variant: piece.HLine, Row: 5, Col: 0}, s.Pieces()[0])
	s.Step()
	assert.Equal(t, 1, s.LastTick().Cleared)
	assert.Equal(t, 2, s.Pieces()[1].Row)
}

func TestGameOverWhenPieceLandsOnSpawnRow(t *testing.T) {
	s := newSession(t, testConfig(5, 5), sim.WithoutSeedPiece())
	s.Place(sim.Piece{Variant: piece.HLine, Row: 2, Col: 1})
	s.Place(sim.Piece{Variant: piece.HLine, Row: 1, Col: 1, Falling: true})

	snap := s.Step()
	assert.True(t, snap.GameOver)
	assert.False(t, s.Pieces()[1].Falling)
	assert.True(t, s.LastTick().Spawned)
	assert.Contains(t, []int{3, 4, 5}, snap.Score)

	after := s.Step()
	assert.Equal(t, snap.Tick, after.Tick)
	assert.Equal(t, snap.Score, after.Score)
}

func TestQuitIntentEndsGame(t *testing.T) {
	s := newSession(t, testConfig(10, 10))
	s.Submit(sim.Quit)

	snap := s.Step()
	assert.True(t, snap.GameOver)
	assert.True(t, s.GameOver())
	assert.Equal(t, 1, s.Pieces()[0].Row)
	assert.Zero(t, s.LastTick().Advanced)
	assert.False(t, s.LastTick().Spawned)
}

func TestSubmitReportsFullQueue(t *testing.T) {
	cfg := testConfig(10, 10)
	cfg.QueueSize = 2
	s := newSession(t, cfg)

	assert.True(t, s.Submit(sim.MoveLeft))
	assert.True(t, s.Submit(sim.MoveLeft))
	assert.False(t, s.Submit(sim.MoveLeft))

	s.Step()
	assert.True(t, s.Submit(sim.MoveLeft))
}

// TestTickProperties plays a seeded game with random input and checks every
// tick against the rules of the board.
func TestTickProperties(t *testing.T) {
	for _, mode := range []sim.MovementMode{sim.MovementExact, sim.MovementLegacy} {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := testConfig(10, 12)
			cfg.Movement = mode
			s := newSession(t, cfg)
			input := rand.New(rand.NewPCG(7, 11))
			moves := []sim.Intent{sim.MoveLeft, sim.MoveRight, sim.MoveDown, sim.Rotate}

			prev := s.Pieces()
			prevScore := s.Score()

			for tick := 0; tick < 5000 && !s.GameOver(); tick++ {
				for range input.IntN(3) {
					s.Submit(moves[input.IntN(len(moves))])
				}

				snap := s.Step()
				pieces := s.Pieces()
				report := s.LastTick()

				require.GreaterOrEqual(t, len(pieces), len(prev))
				for i, p := range prev {
					if !p.Falling {
						require.Equal(t, p, pieces[i], "landed piece %d moved", i)
					}
				}

				require.Equal(t, report.Advanced == 0, report.Spawned)
				if report.Spawned {
					require.Len(t, pieces, len(prev)+1)
					spawned := pieces[len(pieces)-1]
					require.Equal(t, cfg.SpawnRow, spawned.Row)
					require.True(t, spawned.Falling)
					require.Equal(t, spawned.Variant.Weight(), snap.Score-prevScore)
					require.Contains(t, []int{3, 4, 5}, snap.Score-prevScore)

					e := spawned.Variant.Extent()
					require.GreaterOrEqual(t, spawned.Col+e.MinCol, 0)
					require.Less(t, spawned.Col+e.MaxCol, cfg.Width)
				} else {
					require.Len(t, pieces, len(prev))
					require.Equal(t, prevScore, snap.Score)
				}

				landedOnSpawnRow := false
				for _, p := range pieces {
					if !p.Falling && p.Row == cfg.SpawnRow {
						landedOnSpawnRow = true
					}
				}
				require.Equal(t, landedOnSpawnRow, snap.GameOver)

				prev, prevScore = pieces, snap.Score
			}

			assert.True(t, s.GameOver())
		})
	}
}

func TestSameSeedSameGame(t *testing.T) {
	play := func() []sim.Piece {
		s := newSession(t, testConfig(8, 10))
		for range 200 {
			s.Step()
		}
		return s.Pieces()
	}
	assert.Equal(t, play(), play())
}

func TestRunQuitsOnEscape(t *testing.T) {
	s := newSession(t, testConfig(20, 20))

	events := make(chan sim.KeyEvent, 1)
	events <- sim.KeyEvent{Key: sim.KeyEscape, Pressed: true}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx, events))
	assert.True(t, s.GameOver())
}

func TestRunDeliversFinalSnapshot(t *testing.T) {
	var frames []sim.Snapshot
	s := newSession(t, testConfig(5, 5),
		sim.WithoutSeedPiece(),
		sim.WithRenderer(sim.RendererFunc(func(snap sim.Snapshot) {
			frames = append(frames, snap)
		})),
	)
	s.Place(sim.Piece{Variant: piece.HLine, Row: 1, Col: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx, nil))
	require.Len(t, frames, 1)
	assert.True(t, frames[0].GameOver)

	// A finished session returns immediately.
	require.NoError(t, s.Run(ctx, nil))
	assert.Len(t, frames, 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	s := newSession(t, testConfig(20, 40), sim.WithRenderer(sim.RendererFunc(func(sim.Snapshot) {
		frames++
		if frames == 3 {
			cancel()
		}
	})))

	err := s.Run(ctx, make(chan sim.KeyEvent))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.GameOver())
}

func TestRunTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	var once sync.Once
	s := newSession(t, testConfig(20, 40), sim.WithRenderer(sim.RendererFunc(func(sim.Snapshot) {
		once.Do(func() { close(started) })
	})))

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx, nil) }()

	<-started
	assert.ErrorIs(t, s.Run(ctx, nil), sim.ErrRunning)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestMultiRenderer(t *testing.T) {
	var a, b []uint64
	s := newSession(t, testConfig(5, 5),
		sim.WithRenderer(sim.RendererFunc(func(snap sim.Snapshot) { a = append(a, snap.Tick) })),
		sim.WithRenderer(sim.RendererFunc(func(snap sim.Snapshot) { b = append(b, snap.Tick) })),
	)
	s.Step()
	s.Step()

	assert.Equal(t, []uint64{1, 2}, a)
	assert.Equal(t, a, b)
}

func TestWithRendererRejectsNil(t *testing.T) {
	assert.Panics(t, func() { sim.WithRenderer(nil) })
}

func TestStats(t *testing.T) {
	s := newSession(t, testConfig(5, 5))
	s.Step()

	stats := s.Stats()
	assert.Equal(t, 7, stats.Scheduler.SystemCount)
	assert.Equal(t, uint64(1), stats.Scheduler.Frames)
	assert.Equal(t, 1, stats.Storage.TotalEntityCount)
	assert.Equal(t, 1, stats.Storage.ArchetypeCount)
	assert.Equal(t, 4, stats.Storage.SingletonCount)
}

package sim

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/piece"
)

// world is the state shared by the tick systems of one session. Only the
// tick loop touches it.
type world struct {
	storage   *ecs.Storage
	registry  *Registry
	validator *Validator
	grid      *Grid
	queue     <-chan Intent
	rng       *rand.Rand
	renderer  Renderer
	snapshot  *atomic.Pointer[Snapshot]
}

// activeIndex resolves the piece that receives moves. A cached ref that
// still names a falling piece wins; otherwise the newest falling piece is
// selected and cached.
func (w *world) activeIndex(active *ActivePiece) (int, bool) {
	if id, ok := w.storage.Resolve(active.Ref); ok {
		if i, ok := w.registry.IndexOf(id); ok && w.registry.At(i).Falling {
			return i, true
		}
	}

	i, ok := w.registry.LatestFalling()
	if !ok {
		active.Ref = nil
		return 0, false
	}
	w.setActive(active, i)
	return i, true
}

func (w *world) setActive(active *ActivePiece, i int) {
	active.Ref = w.storage.Ref(w.registry.At(i).EntityId)
}

// spawnRange returns the inclusive anchor columns at which v fits
// horizontally. Boards too narrow for v fall back to every column.
func spawnRange(v piece.Variant, width int) (lo, hi int) {
	e := v.Extent()
	lo, hi = -e.MinCol, width-1-e.MaxCol
	if lo > hi {
		return 0, width - 1
	}
	return lo, hi
}

// IntentSystem drains the intent queue in arrival order and applies each
// intent to the active piece.
type IntentSystem struct {
	Board  ecs.Singleton[Board]
	State  ecs.Singleton[GameState]
	Active ecs.Singleton[ActivePiece]
	Report ecs.Singleton[TickReport]

	world *world
}

func (s *IntentSystem) Execute(frame *ecs.UpdateFrame) {
	report := s.Report.Get()
	*report = TickReport{}

	for {
		select {
		case intent := <-s.world.queue:
			report.Intents++
			if s.apply(intent) {
				report.Applied++
			}
		default:
			return
		}
	}
}

func (s *IntentSystem) apply(intent Intent) bool {
	state := s.State.Get()
	if state.GameOver {
		return false
	}
	if intent == Quit {
		state.Quit = true
		state.GameOver = true
		return true
	}

	dir, ok := intent.Direction()
	if !ok {
		return false
	}
	i, ok := s.world.activeIndex(s.Active.Get())
	if !ok {
		return false
	}

	board := s.Board.Get()
	e := s.world.registry.At(i)
	switch dir {
	case piece.Left:
		if e.Col <= 0 {
			return false
		}
	case piece.Right:
		if e.Col >= board.Width-1 {
			return false
		}
	case piece.Down:
		if e.Row >= board.Height-1 {
			return false
		}
	}
	return s.world.validator.Move(i, dir)
}

// GravitySystem moves every falling piece down one row, oldest first, and
// freezes the ones that cannot move.
type GravitySystem struct {
	State  ecs.Singleton[GameState]
	Active ecs.Singleton[ActivePiece]
	Report ecs.Singleton[TickReport]

	world *world
}

func (s *GravitySystem) Execute(frame *ecs.UpdateFrame) {
	if s.State.Get().GameOver {
		return
	}

	report := s.Report.Get()
	for i, e := range s.world.registry.All() {
		if !e.Falling {
			continue
		}
		if s.world.validator.Move(i, piece.Down) {
			report.Advanced++
			continue
		}
		e.Falling = false
		report.Frozen++
	}

	if report.Frozen > 0 {
		s.world.activeIndex(s.Active.Get())
	}
}

// SpawnSystem adds a random piece when nothing advanced this tick and
// credits its weight to the score.
type SpawnSystem struct {
	Board  ecs.Singleton[Board]
	State  ecs.Singleton[GameState]
	Active ecs.Singleton[ActivePiece]
	Report ecs.Singleton[TickReport]

	world *world
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	report := s.Report.Get()
	if state.GameOver || report.Advanced > 0 {
		return
	}

	board := s.Board.Get()
	variant := piece.Random(s.world.rng)
	lo, hi := spawnRange(variant, board.Width)

	i := s.world.registry.Spawn(Piece{
		Variant: variant,
		Row:     board.SpawnRow,
		Col:     lo + s.world.rng.IntN(hi-lo+1),
		Falling: true,
	})
	s.world.setActive(s.Active.Get(), i)

	state.Score += variant.Weight()
	state.Spawned++
	report.Spawned = true
}

// OccupancySystem rebuilds the grid from the registry.
type OccupancySystem struct {
	world *world
}

func (s *OccupancySystem) Execute(frame *ecs.UpdateFrame) {
	s.world.grid.Recompute(s.world.registry)
}

// LineClearSystem compacts full rows of this tick's grid. Pieces are not
// touched, so the next recompute shows the rows again.
type LineClearSystem struct {
	Report ecs.Singleton[TickReport]

	world *world
}

func (s *LineClearSystem) Execute(frame *ecs.UpdateFrame) {
	s.Report.Get().Cleared = s.world.grid.Compact()
}

type landing struct {
	*Anchor
	*Motion
}

// GameOverSystem ends the session once a landed piece rests on the spawn
// row, and halts the scheduler when the game is over for any reason.
type GameOverSystem struct {
	Board  ecs.Singleton[Board]
	State  ecs.Singleton[GameState]
	Pieces ecs.Query[landing]
}

func (s *GameOverSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	spawnRow := s.Board.Get().SpawnRow

	for p := range s.Pieces.Values() {
		if !p.Falling && p.Row == spawnRow {
			state.GameOver = true
			break
		}
	}

	if state.GameOver {
		frame.Halt()
	}
}

// RenderSystem publishes the tick's snapshot and hands it to the renderer
// once the frame is complete.
type RenderSystem struct {
	Board ecs.Singleton[Board]
	State ecs.Singleton[GameState]

	world *world
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	board := s.Board.Get()
	state := s.State.Get()

	snap := Snapshot{
		Tick:      frame.Frame,
		Width:     board.Width,
		Height:    board.Height,
		Cells:     s.world.grid.Clone(),
		Score:     state.Score,
		ShowScore: board.ShowScore,
		GameOver:  state.GameOver,
		Pieces:    s.world.registry.Len(),
	}
	s.world.snapshot.Store(&snap)

	if r := s.world.renderer; r != nil {
		frame.Commands.Defer(func() { r.Render(snap) })
	}
}

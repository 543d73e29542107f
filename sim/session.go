package sim

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/piece"
	"golang.org/x/sync/errgroup"
)

// Session is one game: the piece registry, the tick systems and the intent
// queue feeding them. Between Run calls a Session may be driven manually
// with Place, Submit and Step from a single goroutine.
type Session struct {
	cfg        Config
	storage    *ecs.Storage
	scheduler  *ecs.Scheduler
	world      *world
	queue      chan Intent
	dispatcher *Dispatcher

	board  *ecs.Singleton[Board]
	state  *ecs.Singleton[GameState]
	active *ecs.Singleton[ActivePiece]
	report *ecs.Singleton[TickReport]

	snapshot atomic.Pointer[Snapshot]
	running  atomic.Bool
}

// Option customises a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	renderers []Renderer
	rng       *rand.Rand
	noSeed    bool
}

// WithRenderer adds a renderer that receives every tick's snapshot.
func WithRenderer(r Renderer) Option {
	if r == nil {
		panic("sim: nil renderer")
	}
	return func(o *sessionOptions) {
		o.renderers = append(o.renderers, r)
	}
}

// WithoutSeedPiece starts the session with an empty registry instead of the
// horizontal line at the spawn row.
func WithoutSeedPiece() Option {
	return func(o *sessionOptions) {
		o.noSeed = true
	}
}

// WithRand replaces the spawn RNG. Config.Seed is ignored.
func WithRand(rng *rand.Rand) Option {
	return func(o *sessionOptions) {
		o.rng = rng
	}
}

// NewSession validates cfg and builds a ready-to-run session.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		o.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	components := ecs.NewComponentRegistry()
	RegisterComponents(components)
	storage := ecs.NewStorage(components)
	registry := NewRegistry(storage)

	s := &Session{
		cfg:       cfg,
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		queue:     make(chan Intent, cfg.QueueSize),
	}
	s.dispatcher = NewDispatcher(cfg.Bindings, s.queue)

	s.world = &world{
		storage:   storage,
		registry:  registry,
		validator: NewValidator(registry, cfg.Width, cfg.Height, cfg.Movement),
		grid:      NewGrid(cfg.Width, cfg.Height),
		queue:     s.queue,
		rng:       o.rng,
		snapshot:  &s.snapshot,
	}
	switch len(o.renderers) {
	case 0:
	case 1:
		s.world.renderer = o.renderers[0]
	default:
		s.world.renderer = MultiRenderer(o.renderers)
	}

	s.board = ecs.NewSingleton(storage, Board{
		Width:     cfg.Width,
		Height:    cfg.Height,
		SpawnRow:  cfg.SpawnRow,
		ShowScore: cfg.ShowScore,
	})
	s.state = ecs.NewSingleton[GameState](storage)
	s.active = ecs.NewSingleton[ActivePiece](storage)
	s.report = ecs.NewSingleton[TickReport](storage)

	s.scheduler.Register(&IntentSystem{world: s.world})
	s.scheduler.Register(&GravitySystem{world: s.world})
	s.scheduler.Register(&SpawnSystem{world: s.world})
	s.scheduler.Register(&OccupancySystem{world: s.world})
	s.scheduler.Register(&LineClearSystem{world: s.world})
	s.scheduler.Register(&GameOverSystem{})
	s.scheduler.Register(&RenderSystem{world: s.world})

	if !o.noSeed {
		lo, hi := spawnRange(piece.HLine, cfg.Width)
		s.Place(Piece{
			Variant: piece.HLine,
			Row:     cfg.SpawnRow,
			Col:     min(max(1, lo), hi),
			Falling: true,
		})
	} else {
		s.publish()
	}

	return s, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() Config {
	return s.cfg
}

// Place registers p as it is, without scoring it. A falling piece becomes
// the active piece. It returns the piece's registry position.
func (s *Session) Place(p Piece) int {
	i := s.world.registry.Spawn(p)
	if p.Falling {
		s.world.setActive(s.active.Get(), i)
	}
	s.publish()
	return i
}

// publish stores a snapshot of the current registry without ticking.
func (s *Session) publish() {
	grid := NewGrid(s.cfg.Width, s.cfg.Height)
	grid.Recompute(s.world.registry)

	state := s.state.Get()
	s.snapshot.Store(&Snapshot{
		Tick:      s.scheduler.GetStats().Frames,
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Cells:     grid.Cells,
		Score:     state.Score,
		ShowScore: s.cfg.ShowScore,
		GameOver:  state.GameOver,
		Pieces:    s.world.registry.Len(),
	})
}

// Submit queues an intent for the next tick. It returns false if the queue
// is full.
func (s *Session) Submit(intent Intent) bool {
	select {
	case s.queue <- intent:
		return true
	default:
		return false
	}
}

// Step runs one tick and returns its snapshot. Once the game is over Step
// no longer ticks and returns the final snapshot.
func (s *Session) Step() Snapshot {
	if !s.scheduler.Halted() {
		s.scheduler.Once(s.cfg.TickInterval.Seconds())
	}
	return s.Snapshot()
}

// Run drives the session in real time until the game ends or ctx is
// cancelled. Ticks happen every Config.TickInterval; when events is non-nil
// a dispatcher feeds key-down events into the intent queue concurrently.
// Game over and quit return nil; cancellation returns ctx.Err().
func (s *Session) Run(ctx context.Context, events <-chan KeyEvent) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.scheduler.Run(gctx, s.cfg.TickInterval)
	})
	if events != nil {
		g.Go(func() error {
			return s.dispatcher.Run(gctx, events)
		})
	}
	return g.Wait()
}

// Snapshot returns the latest published snapshot. Safe to call from any
// goroutine.
func (s *Session) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// Score returns the score as of the latest snapshot.
func (s *Session) Score() int {
	return s.Snapshot().Score
}

// GameOver reports whether the latest snapshot is final.
func (s *Session) GameOver() bool {
	return s.Snapshot().GameOver
}

// Pieces returns a copy of every registered piece in registry order. Not
// safe while Run is active.
func (s *Session) Pieces() []Piece {
	return s.world.registry.Pieces()
}

// LastTick returns what the most recent tick did. Not safe while Run is
// active.
func (s *Session) LastTick() TickReport {
	return *s.report.Get()
}

// Stats combines scheduler timings with storage counts.
type Stats struct {
	Scheduler *ecs.SchedulerStats
	Storage   *ecs.StorageStats
}

// Stats reports scheduler and storage statistics. Not safe while Run is
// active.
func (s *Session) Stats() Stats {
	return Stats{
		Scheduler: s.scheduler.GetStats(),
		Storage:   s.storage.CollectStats(),
	}
}

package sim

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidBoard reports impossible board geometry.
	ErrInvalidBoard = errors.New("sim: invalid board")
	// ErrInvalidConfig reports any other unusable configuration value.
	ErrInvalidConfig = errors.New("sim: invalid config")
	// ErrRunning is returned by Run when the session loops are already active.
	ErrRunning = errors.New("sim: session already running")
)

// MovementMode selects how move legality is decided.
type MovementMode uint8

const (
	// MovementExact tests every cell of the moved or rotated footprint
	// against the board edges and every other piece.
	MovementExact MovementMode = iota
	// MovementLegacy applies the fixed per-variant neighbour probes,
	// approximations included. See piece.LegacyRule.
	MovementLegacy
)

func (m MovementMode) String() string {
	switch m {
	case MovementExact:
		return "exact"
	case MovementLegacy:
		return "legacy"
	}
	return fmt.Sprintf("MovementMode(%d)", m)
}

const (
	DefaultWidth        = 20
	DefaultHeight       = 20
	DefaultSpawnRow     = 1
	DefaultTickInterval = 200 * time.Millisecond
	DefaultQueueSize    = 64
)

// Config is the resolved configuration a Session runs with.
type Config struct {
	Width        int
	Height       int
	SpawnRow     int
	TickInterval time.Duration
	Bindings     Bindings
	ShowScore    bool
	Movement     MovementMode
	// Seed seeds the spawn RNG. Zero picks a time based seed.
	Seed      uint64
	QueueSize int
}

// DefaultConfig returns a 20×20 board ticking every 200ms with arrow keys,
// Up to rotate and Esc to quit.
func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		SpawnRow:     DefaultSpawnRow,
		TickInterval: DefaultTickInterval,
		Bindings:     DefaultBindings(),
		ShowScore:    true,
		Movement:     MovementExact,
		QueueSize:    DefaultQueueSize,
	}
}

// Validate checks that the configuration describes a playable session.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidBoard, c.Width, c.Height)
	}
	if c.SpawnRow < 0 || c.SpawnRow >= c.Height {
		return fmt.Errorf("%w: spawn row %d outside 0..%d", ErrInvalidBoard, c.SpawnRow, c.Height-1)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval %s", ErrInvalidConfig, c.TickInterval)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size %d", ErrInvalidConfig, c.QueueSize)
	}
	switch c.Movement {
	case MovementExact, MovementLegacy:
	default:
		return fmt.Errorf("%w: movement mode %s", ErrInvalidConfig, c.Movement)
	}
	if err := c.Bindings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

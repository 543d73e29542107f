// Package cli loads a sim.Config from command line flags shared by the
// blockfall frontends.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/plus3/blockfall/sim"
)

// ErrShowScore reports a -show-score value outside the accepted spellings.
var ErrShowScore = errors.New("invalid option for show-score")

var showScoreValues = map[string]bool{
	"yes": true, "Yes": true, "YES": true, "true": true, "True": true, "TRUE": true, "1": true,
	"no": false, "No": false, "NO": false, "false": false, "False": false, "FALSE": false, "0": false,
}

// showScore is a flag.Value accepting yes/no, true/false and 1/0 in lower, title and upper case.
type showScore bool

func (s *showScore) String() string {
	if s != nil && bool(*s) {
		return "yes"
	}
	return "no"
}

func (s *showScore) Set(v string) error {
	b, ok := showScoreValues[v]
	if !ok {
		return fmt.Errorf("%w: %q", ErrShowScore, v)
	}
	*s = showScore(b)
	return nil
}

// Flags holds the raw flag values until Config resolves them.
type Flags struct {
	width     int
	height    int
	left      string
	right     string
	down      string
	rotate    string
	quit      string
	showScore showScore
	wasd      bool
	tick      time.Duration
	seed      uint64
	legacy    bool

	// Spectate is the listen address of the spectator stream, empty when
	// disabled.
	Spectate string
}

// Register defines the blockfall flags on fs.
func Register(fs *flag.FlagSet) *Flags {
	def := sim.DefaultConfig()
	f := &Flags{showScore: showScore(def.ShowScore)}

	fs.IntVar(&f.width, "width", def.Width, "Board width in columns.")
	fs.IntVar(&f.height, "height", def.Height, "Board height in rows.")

	keys := []struct {
		dst         *string
		long, short string
		def         sim.Key
		usage       string
	}{
		{&f.left, "key-left", "kl", def.Bindings.Left, "Key that moves the piece left."},
		{&f.right, "key-right", "kr", def.Bindings.Right, "Key that moves the piece right."},
		{&f.down, "key-down", "kd", def.Bindings.Down, "Key that moves the piece down."},
		{&f.rotate, "key-shift", "ks", def.Bindings.Rotate, "Key that shifts the piece to its next orientation."},
	}
	for _, k := range keys {
		fs.StringVar(k.dst, k.long, string(k.def), k.usage)
		fs.StringVar(k.dst, k.short, string(k.def), "Shorthand for -"+k.long+".")
	}
	fs.StringVar(&f.quit, "key-quit", string(def.Bindings.Quit), "Key that ends the game.")

	fs.Var(&f.showScore, "show-score", "Show the score (yes/no).")
	fs.Var(&f.showScore, "ss", "Shorthand for -show-score.")
	fs.BoolVar(&f.wasd, "wasd", false, "Use A, S and D for left, down and right.")
	fs.DurationVar(&f.tick, "tick", def.TickInterval, "Delay between gravity ticks.")
	fs.Uint64Var(&f.seed, "seed", 0, "Spawn RNG seed, 0 for a time based seed.")
	fs.BoolVar(&f.legacy, "legacy-moves", false, "Use the per-shape neighbour probes instead of exact footprints.")
	fs.StringVar(&f.Spectate, "spectate", "", "Serve a websocket spectator stream on this address, e.g. :8080.")
	return f
}

// Config resolves the parsed flags. Unknown key names and impossible boards
// are reported as errors.
func (f *Flags) Config() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	cfg.Width = f.width
	cfg.Height = f.height
	cfg.TickInterval = f.tick
	cfg.ShowScore = bool(f.showScore)
	cfg.Seed = f.seed
	if f.legacy {
		cfg.Movement = sim.MovementLegacy
	}

	bindings := []struct {
		dst  *sim.Key
		name string
		flag string
	}{
		{&cfg.Bindings.Left, f.left, "key-left"},
		{&cfg.Bindings.Right, f.right, "key-right"},
		{&cfg.Bindings.Down, f.down, "key-down"},
		{&cfg.Bindings.Rotate, f.rotate, "key-shift"},
		{&cfg.Bindings.Quit, f.quit, "key-quit"},
	}
	for _, b := range bindings {
		key, err := sim.ParseKey(b.name)
		if err != nil {
			return sim.Config{}, fmt.Errorf("-%s: %w", b.flag, err)
		}
		*b.dst = key
	}
	if f.wasd {
		cfg.Bindings = cfg.Bindings.WASD()
	}

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// Parse registers the flags on a new FlagSet, parses args and resolves the
// configuration.
func Parse(name string, args []string) (*Flags, sim.Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, sim.Config{}, err
	}
	cfg, err := f.Config()
	if err != nil {
		return nil, sim.Config{}, err
	}
	return f, cfg, nil
}

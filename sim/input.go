package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key is the frontend-neutral name of a physical key: one of the named keys
// below or a single upper-case character.
type Key string

const (
	KeyLeft   Key = "left"
	KeyRight  Key = "right"
	KeyDown   Key = "down"
	KeyUp     Key = "up"
	KeyEscape Key = "esc"
	KeySpace  Key = "space"
)

var namedKeys = map[string]Key{
	"left":   KeyLeft,
	"right":  KeyRight,
	"down":   KeyDown,
	"up":     KeyUp,
	"esc":    KeyEscape,
	"escape": KeyEscape,
	"space":  KeySpace,
}

// ErrUnknownKey reports a key name that cannot be bound.
var ErrUnknownKey = errors.New("sim: unknown key")

// ParseKey resolves a key name. Named keys are matched case-insensitively;
// any other single printable character is folded to upper case.
func ParseKey(name string) (Key, error) {
	if k, ok := namedKeys[strings.ToLower(name)]; ok {
		return k, nil
	}

	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || size != len(name) || r == utf8.RuneError || !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return Key(string(unicode.ToUpper(r))), nil
}

// KeyEvent is one key transition from a frontend.
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// Bindings maps keys to intents.
type Bindings struct {
	Left   Key
	Right  Key
	Down   Key
	Rotate Key
	Quit   Key
}

// DefaultBindings uses the arrow keys, Up to rotate and Esc to quit.
func DefaultBindings() Bindings {
	return Bindings{
		Left:   KeyLeft,
		Right:  KeyRight,
		Down:   KeyDown,
		Rotate: KeyUp,
		Quit:   KeyEscape,
	}
}

// WASD returns b with A, D and S bound to left, right and down.
func (b Bindings) WASD() Bindings {
	b.Left = "A"
	b.Right = "D"
	b.Down = "S"
	return b
}

func (b Bindings) pairs() []struct {
	intent Intent
	key    Key
} {
	return []struct {
		intent Intent
		key    Key
	}{
		{MoveLeft, b.Left},
		{MoveRight, b.Right},
		{MoveDown, b.Down},
		{Rotate, b.Rotate},
		{Quit, b.Quit},
	}
}

// Validate rejects empty bindings and keys bound to two intents.
func (b Bindings) Validate() error {
	seen := make(map[Key]Intent, 5)
	for _, p := range b.pairs() {
		if p.key == "" {
			return fmt.Errorf("no key bound to %s", p.intent)
		}
		if other, dup := seen[p.key]; dup {
			return fmt.Errorf("key %q bound to both %s and %s", p.key, other, p.intent)
		}
		seen[p.key] = p.intent
	}
	return nil
}

// Intent returns the intent bound to k.
func (b Bindings) Intent(k Key) (Intent, bool) {
	for _, p := range b.pairs() {
		if p.key == k {
			return p.intent, true
		}
	}
	return 0, false
}

// Dispatcher turns key-down events into intents on the session's queue.
// It never touches game state itself.
type Dispatcher struct {
	bindings Bindings
	queue    chan<- Intent
}

// NewDispatcher creates a dispatcher that writes to queue.
func NewDispatcher(bindings Bindings, queue chan<- Intent) *Dispatcher {
	return &Dispatcher{bindings: bindings, queue: queue}
}

// Run forwards bound key-down events until ctx is done, events is closed,
// or the quit key has been forwarded. Unbound keys and releases are ignored.
// When the queue is full Run blocks until the tick driver drains it.
func (d *Dispatcher) Run(ctx context.Context, events <-chan KeyEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ev.Pressed {
				continue
			}

			intent, bound := d.bindings.Intent(ev.Key)
			if !bound {
				continue
			}

			select {
			case d.queue <- intent:
			case <-ctx.Done():
				return nil
			}

			if intent == Quit {
				return nil
			}
		}
	}
}

// Package spectate streams session snapshots to websocket viewers.
package spectate

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/plus3/blockfall/sim"
	"github.com/vmihailenco/msgpack/v5"
)

// Path is where Handler serves the websocket endpoint.
const Path = "/ws"

// Hub fans snapshots out to connected viewers. It implements sim.Renderer,
// so it can be handed to a session directly.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	done       chan struct{}
	last       atomic.Pointer[[]byte]
	upgrader   websocket.Upgrader
	log        *log.Logger
}

// Option customises a Hub.
type Option func(*Hub)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Hub) {
		h.log = l
	}
}

// WithCheckOrigin sets the origin policy of the upgrader. The default only
// accepts same-host browsers and clients without an Origin header.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHub creates a hub. Run must be started before viewers can connect.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     sameOrigin,
		},
		log: log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes connects and disconnects until ctx is done, then closes
// every viewer.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			if frame := h.last.Load(); frame != nil {
				c.enqueue(*frame)
			}
			h.log.Printf("spectator %s connected", c.remoteAddr)

		case c := <-h.unregister:
			if h.remove(c) {
				h.log.Printf("spectator %s disconnected", c.remoteAddr)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return nil
		}
	}
}

func (h *Hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	return true
}

// Render encodes snap and queues it for every viewer. Slow viewers drop
// frames rather than stall the tick loop.
func (h *Hub) Render(snap sim.Snapshot) {
	frame, err := msgpack.Marshal(&snap)
	if err != nil {
		h.log.Printf("spectate: encode tick %d: %v", snap.Tick, err)
		return
	}
	h.last.Store(&frame)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(frame)
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "spectating closed", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("spectate: upgrade: %v", err)
		return
	}

	c := newClient(h, conn, r.RemoteAddr)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Handler returns a mux serving the hub at Path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	return mux
}

package spectate_test

import (
	"context"
	"io"
	"log"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/plus3/blockfall/sim"
	"github.com/plus3/blockfall/spectate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func startHub(t *testing.T) (*spectate.Hub, string, context.CancelFunc) {
	t.Helper()

	hub := spectate.NewHub(spectate.WithLogger(log.New(io.Discard, "", 0)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + spectate.Path, cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) sim.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)

	var snap sim.Snapshot
	require.NoError(t, msgpack.Unmarshal(raw, &snap))
	return snap
}

func testSnapshot(tick uint64) sim.Snapshot {
	return sim.Snapshot{
		Tick:      tick,
		Width:     3,
		Height:    2,
		Cells:     [][]bool{{false, true, false}, {true, true, true}},
		Score:     12,
		ShowScore: true,
		Pieces:    4,
	}
}

func TestHubBroadcastsSnapshots(t *testing.T) {
	hub, url, _ := startHub(t)

	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 5*time.Millisecond)

	hub.Render(testSnapshot(1))
	assert.Equal(t, testSnapshot(1), readSnapshot(t, a))
	assert.Equal(t, testSnapshot(1), readSnapshot(t, b))
}

func TestHubSendsLatestFrameToLateViewer(t *testing.T) {
	hub, url, _ := startHub(t)

	hub.Render(testSnapshot(1))
	hub.Render(testSnapshot(2))

	conn := dial(t, url)
	assert.Equal(t, uint64(2), readSnapshot(t, conn).Tick)
}

func TestHubForgetsDisconnectedViewer(t *testing.T) {
	hub, url, _ := startHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubClosesViewersOnShutdown(t *testing.T) {
	hub, url, cancel := startHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, hub.ClientCount())
}

func TestHubStreamsSession(t *testing.T) {
	hub, url, _ := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	cfg := sim.DefaultConfig()
	cfg.Width, cfg.Height = 6, 6
	cfg.Seed = 3
	s, err := sim.NewSession(cfg, sim.WithRenderer(hub))
	require.NoError(t, err)

	want := s.Step()
	got := readSnapshot(t, conn)
	assert.Equal(t, want, got)
	assert.Equal(t, want.Text(), got.Text())
}

func TestServeListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	hub := spectate.NewHub(spectate.WithLogger(log.New(io.Discard, "", 0)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.ServeListener(ctx, ln) }()

	conn := dial(t, "ws://"+ln.Addr().String()+spectate.Path)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.Render(testSnapshot(9))
	assert.Equal(t, uint64(9), readSnapshot(t, conn).Tick)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ServeListener did not return")
	}
}

package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tapetail/internal/api"
	"tapetail/internal/logging"
	"tapetail/internal/telemetry"
)

const (
	watchWriteWait  = 10 * time.Second
	watchPongWait   = 60 * time.Second
	watchPingPeriod = 54 * time.Second
	watchSendBuffer = 16
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API binds to loopback; cross-origin browsers are expected
	// when the dashboard is served from a dev server.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WatchHub fans published snapshots out to connected WebSocket clients.
// Slow clients are dropped rather than allowed to stall the collector.
type WatchHub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*watchClient]struct{}
	closed  bool
}

type watchClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewWatchHub(logger *slog.Logger) *WatchHub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WatchHub{
		logger:  logging.NewComponentLogger(logger, "watch-hub"),
		clients: make(map[*watchClient]struct{}),
	}
}

// Publish encodes the snapshot once and queues it to every client. It is
// called from the collector goroutine and never blocks.
func (h *WatchHub) Publish(snapshot *telemetry.Snapshot) {
	if snapshot == nil {
		return
	}
	payload, err := json.Marshal(api.FromSnapshot(snapshot))
	if err != nil {
		h.logger.Warn("failed to encode snapshot for stream", logging.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Close disconnects every client and rejects future registrations.
func (h *WatchHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *WatchHub) register(client *watchClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	return true
}

func (h *WatchHub) unregister(client *watchClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// ServeHTTP upgrades the request and streams snapshots until the client
// disconnects or the daemon shuts down.
func (h *WatchHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}

	client := &watchClient{conn: conn, send: make(chan []byte, watchSendBuffer)}
	if !h.register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump(r.Context(), h)
}

// readPump discards inbound frames; its only job is to notice disconnects
// and keep the pong deadline fresh.
func (c *watchClient) readPump(ctx context.Context, h *WatchHub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(watchPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})
	c.conn.SetReadLimit(512)

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *watchClient) writePump() {
	ticker := time.NewTicker(watchPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"uivox/pkg/announce"
)

const (
	captionWriteWait  = 5 * time.Second
	captionBufferSize = 32
)

// The server only listens on localhost, so any origin that can reach it
// is already local.
var captionUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CaptionHub fans every delivery out to connected websocket clients. It
// implements announce.Observer; a slow client's buffer filling up drops
// that client rather than blocking delivery.
type CaptionHub struct {
	mu      sync.Mutex
	clients map[*captionClient]struct{}
}

type captionClient struct {
	conn *websocket.Conn
	send chan announce.Delivery
}

// NewCaptionHub creates an empty hub.
func NewCaptionHub() *CaptionHub {
	return &CaptionHub{
		clients: make(map[*captionClient]struct{}),
	}
}

// Delivered implements announce.Observer.
func (h *CaptionHub) Delivered(d announce.Delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- d:
		default:
			// Client fell behind; drop it.
			slog.Warn("Captions: dropping slow client")
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// HandleWS upgrades the connection and streams deliveries until the
// client disconnects.
func (h *CaptionHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := captionUpgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Captions: upgrade failed", "error", err)
		return
	}

	client := &captionClient{
		conn: conn,
		send: make(chan announce.Delivery, captionBufferSize),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	slog.Info("Captions: client connected", "clients", count)

	go h.writeLoop(client)
	h.readLoop(client)
}

// writeLoop pushes deliveries to one client.
func (h *CaptionHub) writeLoop(c *captionClient) {
	defer c.conn.Close()
	for d := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(captionWriteWait))
		if err := c.conn.WriteJSON(d); err != nil {
			slog.Debug("Captions: write failed", "error", err)
			h.remove(c)
			return
		}
	}
}

// readLoop discards inbound frames and detects disconnects.
func (h *CaptionHub) readLoop(c *captionClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// remove unregisters a client if still present.
func (h *CaptionHub) remove(c *captionClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		slog.Info("Captions: client disconnected", "clients", len(h.clients))
	}
}

// ClientCount returns the number of connected caption clients.
func (h *CaptionHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

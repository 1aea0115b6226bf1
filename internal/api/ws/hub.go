// Package ws pushes session, playback and toast events to browser clients
// over WebSocket and answers their library search requests.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/cloudly-labs/orb/internal/domain/track"
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 32
	searchLimit    = 20
)

// SearchFunc answers a client search request.
type SearchFunc func(query string, limit int) []track.Track

// client is one connected browser.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans broadcast messages out to all connected clients.
// A client whose send buffer is full has frames dropped rather than
// stalling the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	closed  bool

	sequenceNo   uint64
	sequenceNoMu sync.Mutex

	upgrader websocket.Upgrader
	search   SearchFunc
}

// NewHub creates a hub. search may be nil, in which case search requests
// get an empty result set.
func NewHub(search SearchFunc) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		search:  search,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from the same host in production
			// and from a dev server locally.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler upgrades an HTTP request to a WebSocket client.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			zlog.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			id:   uuid.New().String(),
			conn: conn,
			send: make(chan []byte, sendBufferSize),
		}

		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			conn.Close()
			return
		}
		h.clients[c.id] = c
		h.mu.Unlock()

		zlog.Debug().Str("client", c.id).Msg("websocket client connected")
		go h.writePump(c)
		go h.readPump(c)
	}
}

// Broadcast stamps a sequence number on the message and sends it to every
// connected client.
func (h *Hub) Broadcast(msg Message) {
	h.sequenceNoMu.Lock()
	h.sequenceNo++
	msg.SequenceNo = h.sequenceNo
	h.sequenceNoMu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		zlog.Error().Err(err).Msg("marshal broadcast message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			zlog.Warn().Str("client", c.id).Msg("client send buffer full, dropping frame")
		}
	}
}

// Toast broadcasts a transient acknowledgment message.
func (h *Hub) Toast(text string) {
	h.Broadcast(Message{Type: TypeToast, Text: text})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		zlog.Debug().Str("client", c.id).Msg("websocket client disconnected")
	}()

	for {
		var req clientRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Type == "search" {
			h.answerSearch(c, req.Query)
		}
	}
}

// answerSearch replies to the requesting client only.
func (h *Hub) answerSearch(c *client, query string) {
	var results []track.Track
	if h.search != nil {
		results = h.search(query, searchLimit)
	}
	if results == nil {
		results = []track.Track{}
	}

	h.sequenceNoMu.Lock()
	h.sequenceNo++
	seq := h.sequenceNo
	h.sequenceNoMu.Unlock()

	data, err := json.Marshal(Message{
		Type:       TypeSearchResults,
		SequenceNo: seq,
		Query:      query,
		Tracks:     results,
	})
	if err != nil {
		zlog.Error().Err(err).Msg("marshal search results")
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Package stream pushes game events to websocket subscribers and accepts
// spectrum frames back from them.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	core "github.com/fastprodman/TimeMint/internal/game"
)

const broadcastBuffer = 256

// SpectrumHandler receives one validated frequency frame from a client.
type SpectrumHandler func(bins []uint8)

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	onSpectrum SpectrumHandler
	upgrader   websocket.Upgrader

	mu sync.Mutex
}

// NewHub creates a hub. onSpectrum may be nil, in which case spectrum
// messages are ignored.
func NewHub(onSpectrum SpectrumHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		onSpectrum: onSpectrum,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run handles registrations and broadcasts until ctx is done. All client
// send channels are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stream hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			slog.Info("stream client connected", "remote", client.remote, "clients", n)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Info("stream client disconnected", "remote", client.remote)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
					slog.Warn("stream client dropped, send buffer full", "remote", client.remote)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish serializes ev and queues it for every client. It never blocks:
// when the broadcast queue is full the event is dropped.
func (h *Hub) Publish(ev core.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal event for stream", "type", ev.Type, "error", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		slog.Warn("stream broadcast queue full, event dropped", "type", ev.Type, "id", ev.ID)
	}
}

// Len reports the number of registered clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(h, conn, r.RemoteAddr)

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Large enough for a 1024-bin spectrum frame.
	maxMessageSize = 8192

	sendBuffer = 64

	messageSpectrum = "spectrum"
)

var errBinOutOfRange = errors.New("bin out of range")

// Client is one websocket subscriber.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// inbound is a message sent by the browser.
type inbound struct {
	Type string `json:"type"`
	Bins []int  `json:"bins"`
}

func newClient(hub *Hub, conn *websocket.Conn, remote string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: remote,
	}
}

// ToBins validates integer frequency magnitudes and narrows them to bytes.
func ToBins(values []int) ([]uint8, error) {
	out := make([]uint8, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("bin %d = %d: %w", i, v, errBinOutOfRange)
		}
		out[i] = uint8(v)
	}

	return out, nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("stream read failed", "remote", c.remote, "error", err)
			}
			return
		}

		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var msg inbound
	err := json.Unmarshal(message, &msg)
	if err != nil {
		slog.Debug("stream message ignored", "remote", c.remote, "error", err)
		return
	}

	switch msg.Type {
	case messageSpectrum:
		if c.hub.onSpectrum == nil {
			return
		}
		bins, err := ToBins(msg.Bins)
		if err != nil {
			slog.Debug("spectrum frame rejected", "remote", c.remote, "error", err)
			return
		}
		c.hub.onSpectrum(bins)
	default:
		slog.Debug("unknown stream message type", "remote", c.remote, "type", msg.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := c.conn.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}

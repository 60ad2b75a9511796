// Package network provides the real-time telemetry feed and the ground
// station uplink. Telemetry streams to connected clients over WebSocket;
// clients can send flight commands back over the same connection.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-rocketsim/pkg/logging"
	"github.com/opd-ai/go-rocketsim/pkg/rocket"
	"github.com/opd-ai/go-rocketsim/pkg/validation"
)

// CommandHandler receives flight commands parsed from client messages.
// The simulation engine satisfies this interface.
type CommandHandler interface {
	Launch()
	ResetRocket()
	SetThrottle(throttle float64) error
	SetWind(speed float64) error
	AddGust(magnitude float64) error
}

// Command is the JSON envelope clients send over the WebSocket.
type Command struct {
	Type  string  `json:"type"` // "launch", "reset", "throttle", "wind", "gust"
	Value float64 `json:"value,omitempty"`
}

// Message is the JSON envelope for outbound frames.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single connected telemetry consumer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub maintains the set of active clients and broadcasts telemetry frames.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	handler   CommandHandler
	validator *validation.CommandValidator
	logger    *logging.Logger
	count     atomic.Int64
	done      chan struct{}
}

// NewHub creates a hub that forwards parsed commands to handler. A nil
// handler makes the feed broadcast-only.
func NewHub(handler CommandHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		handler:    handler,
		validator:  validation.NewCommandValidator(),
		logger:     logging.NewLogger(),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until the context is canceled. All registration
// and broadcast traffic funnels through here so the map needs no lock.
func (h *Hub) Run(ctx context.Context) {
	defer h.validator.Close()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			h.logger.Info(ctx, "telemetry client connected", "client_id", client.id)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.count.Store(int64(len(h.clients)))
				h.logger.Info(ctx, "telemetry client disconnected", "client_id", client.id)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the feed.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.count.Store(int64(len(h.clients)))
		case <-ctx.Done():
			// Closing done first unblocks any pump stuck on register or
			// unregister; closing the connections makes the read pumps exit.
			close(h.done)
			for client := range h.clients {
				close(client.send)
				client.conn.Close()
				delete(h.clients, client)
			}
			h.count.Store(0)
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastTelemetry sends a telemetry frame to every connected client.
func (h *Hub) BroadcastTelemetry(tel rocket.Telemetry) {
	data, err := json.Marshal(Message{Type: "telemetry", Payload: tel})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		// Hub not draining; skip this frame.
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a WebSocket connection and attaches
// the client to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket upgrade failed", err)
		return
	}
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   conn.RemoteAddr().String(),
	}
	select {
	case client.hub.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.hub.handleCommand(message, c.id)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// handleCommand validates a raw client message and dispatches it to the
// command handler. Malformed or rate-limited messages are logged and dropped.
func (h *Hub) handleCommand(data []byte, clientID string) {
	ctx := context.Background()

	if h.handler == nil {
		return
	}
	if err := h.validator.ValidateCommand(data, clientID); err != nil {
		h.logger.Warn(ctx, "rejected client command", "client_id", clientID, "error", err)
		return
	}

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		h.logger.Warn(ctx, "malformed client command", "client_id", clientID, "error", err)
		return
	}

	var err error
	switch cmd.Type {
	case "launch":
		h.handler.Launch()
	case "reset":
		h.handler.ResetRocket()
	case "throttle":
		err = h.handler.SetThrottle(cmd.Value)
	case "wind":
		err = h.handler.SetWind(cmd.Value)
	case "gust":
		err = h.handler.AddGust(cmd.Value)
	default:
		h.logger.Warn(ctx, "unknown command type", "client_id", clientID, "type", cmd.Type)
		return
	}
	if err != nil {
		h.logger.Warn(ctx, "command rejected", "client_id", clientID, "type", cmd.Type, "error", err)
	}
}

package stream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a WebSocket peer
	pongWait = 60 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Transport names
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Client represents a connected stream subscriber
type Client struct {
	hub         *Hub
	id          string
	transport   string
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a new client with a fresh connection ID
func NewClient(hub *Hub, transport string) *Client {
	return &Client{
		hub:         hub,
		id:          uuid.New().String(),
		transport:   transport,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the connection ID
func (c *Client) ID() string {
	return c.id
}

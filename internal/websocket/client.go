package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	outboxSize   = 32
	pingInterval = 45 * time.Second
	writeTimeout = 5 * time.Second
	readLimit    = 512 // clients only listen; inbound frames are control-sized
)

// Client is one connected browser session. It receives notices through a
// buffered outbox; it never sends application data back.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	outbox chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
	}
}

// Run registers the client and services the connection until it closes or
// the hub shuts down. It returns immediately if the hub is already closed.
func (c *Client) Run(ctx context.Context) {
	if !c.hub.Register(c) {
		return
	}
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

// readLoop consumes inbound frames so close handshakes and pongs are
// processed, discarding payloads. It returns when the connection drops.
func (c *Client) readLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writeLoop drains the outbox onto the wire and pings idle connections.
// Every write carries its own deadline so one wedged peer cannot hold the
// goroutine forever.
func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.outbox:
			if !ok {
				// Hub unregistered us or shut down.
				return
			}
			if err := c.write(ctx, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, payload)
}

func (c *Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Ping(ctx)
}

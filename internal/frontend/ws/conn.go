// Package ws accepts WebSocket clients and hands each one to a SessionHandler.
package ws

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cory-johannsen/arcade/internal/config"
)

// ErrBinaryFrame is returned by ReadFrame for a non-text data frame.
var ErrBinaryFrame = errors.New("binary frames are not supported")

// Conn wraps a WebSocket connection with deadlines and keepalive.
// ReadFrame must be called from one goroutine; WriteFrame is safe for
// concurrent use.
type Conn struct {
	raw *websocket.Conn
	mu  sync.Mutex

	writeTimeout time.Duration
	pongWait     time.Duration
	pingInterval time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps raw with the limits in cfg. When cfg.PongWait is positive the
// connection fails after that long without any inbound frame or pong.
//
// Precondition: raw must be a freshly upgraded, open connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw *websocket.Conn, cfg config.WebSocketConfig) *Conn {
	c := &Conn{
		raw:          raw,
		writeTimeout: cfg.WriteTimeout,
		pongWait:     cfg.PongWait,
		pingInterval: cfg.PingInterval,
	}
	if cfg.MaxMessageSize > 0 {
		raw.SetReadLimit(cfg.MaxMessageSize)
	}
	c.extendReadDeadline()
	raw.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})
	return c
}

func (c *Conn) extendReadDeadline() {
	if c.pongWait > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.pongWait))
	}
}

// ReadFrame blocks for the next data frame.
//
// Postcondition: Returns the text payload, ErrBinaryFrame with the payload
// for a binary frame, or a transport error (the connection is then unusable).
func (c *Conn) ReadFrame() ([]byte, error) {
	kind, data, err := c.raw.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.extendReadDeadline()
	if kind != websocket.TextMessage {
		return data, ErrBinaryFrame
	}
	return data, nil
}

// WriteFrame sends data as one text frame.
//
// Postcondition: data is written, or an error is returned and the caller
// should close the connection.
func (c *Conn) WriteFrame(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.raw.WriteMessage(websocket.TextMessage, data)
}

// KeepAlive pings the peer every ping interval until ctx is done or a ping
// fails. It returns immediately when pings are disabled.
func (c *Conn) KeepAlive(ctx context.Context) {
	if c.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.writeTimeout)
			if err := c.raw.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

// Close sends a normal-closure frame when possible and closes the socket.
// Calling Close more than once is safe.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.raw.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// IsClosure reports whether err is an ordinary end of a connection rather
// than a fault worth logging.
func IsClosure(err error) bool {
	if err == nil {
		return false
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}

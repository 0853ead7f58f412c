// Package testutil provides helpers for end-to-end tests.
package testutil

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cory-johannsen/arcade/internal/protocol"
)

// WSClient is a WebSocket test client speaking the envelope protocol.
type WSClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// NewWSClient dials url and returns a test client. An "http" scheme is
// rewritten to "ws", so an httptest.Server URL plus path can be passed.
//
// Precondition: url must point at a listening WebSocket route.
// Postcondition: Returns a connected WSClient or fails the test.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()
	start := time.Now()
	if strings.HasPrefix(url, "http") {
		url = "ws" + strings.TrimPrefix(url, "http")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", url, err, time.Since(start))
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	t.Cleanup(func() {
		conn.Close()
	})

	t.Logf("websocket client connected to %s [%s]", url, time.Since(start))
	return &WSClient{conn: conn, t: t}
}

// Send encodes payload under tag and writes it as one text frame.
func (c *WSClient) Send(tag protocol.Tag, payload any) {
	c.t.Helper()
	frame, err := protocol.Encode(tag, payload)
	if err != nil {
		c.t.Fatalf("encoding %s: %v", tag, err)
	}
	c.SendRaw(frame)
}

// SendRaw writes frame verbatim as one text frame.
func (c *WSClient) SendRaw(frame []byte) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.t.Fatalf("sending %q: %v", frame, err)
	}
}

// Read returns the next envelope, failing the test on timeout.
func (c *WSClient) Read(timeout time.Duration) protocol.Envelope {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("reading frame: %v", err)
	}
	env, err := protocol.Decode(data)
	if err != nil {
		c.t.Fatalf("decoding %q: %v", data, err)
	}
	return env
}

// ReadUntil discards envelopes until one tagged tag satisfies match (a nil
// match accepts any), and returns it.
//
// Postcondition: Returns the matching envelope, or fails on timeout.
func (c *WSClient) ReadUntil(tag protocol.Tag, match func(protocol.Envelope) bool, timeout time.Duration) protocol.Envelope {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("no %s frame matched within %s", tag, timeout)
		}
		env := c.Read(remaining)
		if env.Type == tag && (match == nil || match(env)) {
			return env
		}
	}
}

// Expect reads envelopes until one tagged tag arrives and decodes its
// payload into out.
func (c *WSClient) Expect(tag protocol.Tag, out any, timeout time.Duration) {
	c.t.Helper()
	env := c.ReadUntil(tag, nil, timeout)
	if err := json.Unmarshal(env.Data, out); err != nil {
		c.t.Fatalf("decoding %s payload %s: %v", tag, env.Data, err)
	}
}

// Close closes the underlying connection.
func (c *WSClient) Close() {
	c.conn.Close()
}

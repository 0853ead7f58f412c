package session

import (
	"fmt"
	"sync"
	"time"
)

// Conn tracks one live client connection.
type Conn struct {
	// ID is the connection identifier; equal to Outbox.ID().
	ID string
	// RemoteAddr is the peer address (for logging).
	RemoteAddr string
	// ConnectedAt is when the connection was accepted.
	ConnectedAt time.Time
	// Outbox is the connection's outbound queue.
	Outbox *Outbox
}

// Manager tracks all live connections.
// All methods are safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewManager creates an empty connection Manager.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]*Conn)}
}

// Add registers a new connection with a fresh Outbox.
//
// Postcondition: Returns the registered Conn.
func (m *Manager) Add(remoteAddr string) *Conn {
	c := &Conn{
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
		Outbox:      NewOutbox(),
	}
	c.ID = c.Outbox.ID()

	m.mu.Lock()
	m.conns[c.ID] = c
	m.mu.Unlock()
	return c
}

// Remove unregisters a connection and closes its Outbox.
//
// Postcondition: The connection is no longer tracked. Returns an error if not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	c, ok := m.conns[id]
	delete(m.conns, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("connection %q not found", id)
	}
	_ = c.Outbox.Close()
	return nil
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// CloseAll closes every tracked Outbox, which ends each connection's writer.
// Connections stay registered until their handlers Remove them.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.conns {
		_ = c.Outbox.Close()
	}
}

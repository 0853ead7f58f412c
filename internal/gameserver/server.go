// Package gameserver runs client sessions: it reads envelopes from each
// connection, applies them to rooms under the registry's exclusive section,
// and fans the results out to room members.
package gameserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/frontend/ws"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/game/session"
	"github.com/cory-johannsen/arcade/internal/protocol"
)

// Transport is one client connection as seen by a session.
type Transport interface {
	// ReadFrame blocks for the next inbound frame. ws.ErrBinaryFrame marks a
	// frame that is not text; any other error ends the session.
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// Server handles client sessions against a shared room registry.
type Server struct {
	registry *room.Registry
	sessions *session.Manager
	chat     *ChatHandler
	logger   *zap.Logger
}

// NewServer creates a Server over registry. now supplies chat timestamps;
// nil means time.Now.
//
// Precondition: registry, sessions and logger must be non-nil.
func NewServer(registry *room.Registry, sessions *session.Manager, now func() time.Time, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		sessions: sessions,
		chat:     NewChatHandler(registry, now, logger),
		logger:   logger,
	}
}

// HandleSession serves conn until the client disconnects, a write fails, or
// ctx is cancelled.
//
// Postcondition: The connection has left every room and its outbox is closed.
func (s *Server) HandleSession(ctx context.Context, conn *ws.Conn) error {
	return s.Serve(ctx, conn)
}

// Serve runs the session state machine over t: a writer goroutine drains the
// connection's outbox to t while the reader loop dispatches inbound frames.
func (s *Server) Serve(ctx context.Context, t Transport) error {
	c := s.sessions.Add(t.RemoteAddr().String())
	logger := s.logger.With(zap.String("conn_id", c.ID))
	logger.Info("connection opened", zap.String("remote_addr", c.RemoteAddr))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.forwardEvents(ctx, c, t, logger)
	}()

	err := s.commandLoop(c, t)

	cancel()
	s.cleanup(c, logger)
	_ = t.Close()
	wg.Wait()

	logger.Info("connection closed",
		zap.Duration("duration", time.Since(c.ConnectedAt)),
	)
	if err != nil && !ws.IsClosure(err) {
		return err
	}
	return nil
}

// commandLoop dispatches inbound frames until the transport fails.
func (s *Server) commandLoop(c *session.Conn, t Transport) error {
	for {
		frame, err := t.ReadFrame()
		if errors.Is(err, ws.ErrBinaryFrame) {
			s.reply(c, protocol.EchoErrorFrame(frame, err))
			continue
		}
		if err != nil {
			return err
		}
		s.dispatch(c, frame)
	}
}

// forwardEvents writes queued frames to t in order. A failed write closes t,
// which ends the reader loop.
func (s *Server) forwardEvents(ctx context.Context, c *session.Conn, t Transport, logger *zap.Logger) {
	for {
		frame, err := c.Outbox.Next(ctx)
		if err != nil {
			return
		}
		if err := t.WriteFrame(frame); err != nil {
			logger.Debug("forward event send failed", zap.Error(err))
			_ = t.Close()
			return
		}
	}
}

// cleanup leaves every room, telling the remaining members, then closes
// the outbox.
func (s *Server) cleanup(c *session.Conn, logger *zap.Logger) {
	left := s.registry.Detach(c.Outbox, func(rm *room.Room, name string) {
		broadcastRoomEvent(rm, protocol.ActionLeave, name, logger)
		broadcastState(rm, logger)
	})
	if err := s.sessions.Remove(c.ID); err != nil {
		logger.Warn("removing connection on cleanup", zap.Error(err))
	}
	if len(left) > 0 {
		logger.Info("connection left rooms", zap.Strings("game_ids", left))
	}
}

// reply queues frame for c alone.
func (s *Server) reply(c *session.Conn, frame []byte) {
	if frame == nil {
		return
	}
	_ = c.Outbox.Push(frame)
}

// Rooms lists every room.
func (s *Server) Rooms() []room.Info {
	return s.registry.List()
}

// Room summarizes one room.
func (s *Server) Room(id string) (room.Info, bool) {
	return s.registry.Info(id)
}

// Connections returns the number of live sessions.
func (s *Server) Connections() int {
	return s.sessions.Count()
}

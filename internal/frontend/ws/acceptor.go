package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/config"
	"github.com/cory-johannsen/arcade/internal/game/room"
)

// SessionHandler processes one connected client until it disconnects or ctx
// is cancelled.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Directory answers the read-only HTTP endpoints.
type Directory interface {
	// Rooms lists every room.
	Rooms() []room.Info
	// Room looks up one room.
	Room(id string) (room.Info, bool)
	// Connections returns the number of live connections.
	Connections() int
}

// Acceptor serves the WebSocket route and the status endpoints, dispatching
// each upgraded connection to a SessionHandler.
type Acceptor struct {
	cfg      config.ServerConfig
	wsCfg    config.WebSocketConfig
	handler  SessionHandler
	dir      Directory
	logger   *zap.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}
	mu         sync.Mutex
	running    bool
}

// NewAcceptor creates an acceptor with the given configuration.
//
// Precondition: handler, dir and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.ServerConfig, wsCfg config.WebSocketConfig, handler SessionHandler, dir Directory, logger *zap.Logger) *Acceptor {
	a := &Acceptor{
		cfg:     cfg,
		wsCfg:   wsCfg,
		handler: handler,
		dir:     dir,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsCfg.ReadBufferSize,
			WriteBufferSize: wsCfg.WriteBufferSize,
		},
		quit: make(chan struct{}),
	}
	if !wsCfg.CheckOrigin {
		a.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return a
}

// Router returns the HTTP handler: the WebSocket route plus /healthz,
// /rooms and /rooms/{gameID}.
func (a *Acceptor) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(a.cfg.WSPath, a.serveWS)
	r.Get("/healthz", a.serveHealth)
	r.Get("/rooms", a.serveRooms)
	r.Get("/rooms/{gameID}", a.serveRoom)
	return r
}

// ListenAndServe binds the listener and serves until Stop is called.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.mu.Lock()
	a.listener = listener
	a.httpServer = srv
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("ws_path", a.cfg.WSPath),
		zap.Duration("startup", time.Since(start)),
	)

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func (a *Acceptor) serveWS(w http.ResponseWriter, r *http.Request) {
	raw, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		a.logger.Debug("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	a.mu.Lock()
	select {
	case <-a.quit:
		a.mu.Unlock()
		_ = raw.Close()
		return
	default:
	}
	a.wg.Add(1)
	a.mu.Unlock()
	defer a.wg.Done()
	a.handleConn(NewConn(raw, a.wsCfg))
}

// handleConn runs one session to completion.
func (a *Acceptor) handleConn(conn *Conn) {
	start := time.Now()
	addr := conn.RemoteAddr().String()
	defer conn.Close()

	a.logger.Info("client connected",
		zap.String("remote_addr", addr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A blocked read only returns once the socket closes.
	go func() {
		select {
		case <-a.quit:
			cancel()
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()
	go conn.KeepAlive(ctx)

	if err := a.handler.HandleSession(ctx, conn); err != nil && !IsClosure(err) {
		a.logger.Debug("session ended",
			zap.String("remote_addr", addr),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
	} else {
		a.logger.Info("session ended cleanly",
			zap.String("remote_addr", addr),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

func (a *Acceptor) serveHealth(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Rooms:       len(a.dir.Rooms()),
		Connections: a.dir.Connections(),
	})
}

func (a *Acceptor) serveRooms(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.dir.Rooms())
}

func (a *Acceptor) serveRoom(w http.ResponseWriter, r *http.Request) {
	info, ok := a.dir.Room(chi.URLParam(r, "gameID"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	a.writeJSON(w, http.StatusOK, info)
}

func (a *Acceptor) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Debug("writing http response", zap.Error(err))
	}
}

// Stop gracefully stops the acceptor: the listener closes, every session
// is cancelled, and Stop waits for their handlers to return.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.running = false

	close(a.quit)
	if a.httpServer != nil {
		timeout := a.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Warn("http shutdown", zap.Error(err))
		}
		cancel()
	}
	a.wg.Wait()

	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

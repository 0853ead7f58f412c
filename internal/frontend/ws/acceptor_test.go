package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arcade/internal/config"
	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/protocol"
	"github.com/cory-johannsen/arcade/internal/testutil"
)

// echoHandler is a test SessionHandler that echoes frames back to the client.
type echoHandler struct {
	sessionCount atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessionCount.Add(1)
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return err
		}
		if err := conn.WriteFrame(frame); err != nil {
			return err
		}
	}
}

type staticDirectory struct {
	rooms []room.Info
	conns int
}

func (d staticDirectory) Rooms() []room.Info { return d.rooms }

func (d staticDirectory) Room(id string) (room.Info, bool) {
	for _, r := range d.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return room.Info{}, false
}

func (d staticDirectory) Connections() int { return d.conns }

func testConfigs() (config.ServerConfig, config.WebSocketConfig) {
	return config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			WSPath:          "/ws",
			ShutdownTimeout: time.Second,
		}, config.WebSocketConfig{
			MaxMessageSize: 4096,
			WriteTimeout:   5 * time.Second,
			PongWait:       5 * time.Second,
			PingInterval:   time.Second,
		}
}

func newTestAcceptor(t *testing.T, h SessionHandler, dir Directory) *httptest.Server {
	t.Helper()
	srvCfg, wsCfg := testConfigs()
	acc := NewAcceptor(srvCfg, wsCfg, h, dir, zaptest.NewLogger(t))
	ts := httptest.NewServer(acc.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestAcceptor_EchoesFrames(t *testing.T) {
	h := &echoHandler{}
	ts := newTestAcceptor(t, h, staticDirectory{})

	client := testutil.NewWSClient(t, ts.URL+"/ws")
	client.Send(protocol.TagEcho, protocol.EchoPayload{Message: "hello"})

	var got protocol.EchoPayload
	client.Expect(protocol.TagEcho, &got, 2*time.Second)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, int32(1), h.sessionCount.Load())
}

func TestAcceptor_StatusEndpoints(t *testing.T) {
	dir := staticDirectory{
		rooms: []room.Info{{ID: "R1", Game: engine.Grid, Users: []string{"A"}, Seats: []string{"A"}}},
		conns: 3,
	}
	ts := newTestAcceptor(t, &echoHandler{}, dir)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, healthResponse{Status: "ok", Rooms: 1, Connections: 3}, health)

	resp2, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var rooms []room.Info
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&rooms))
	assert.Equal(t, dir.rooms, rooms)

	resp3, err := http.Get(ts.URL + "/rooms/R1")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)

	resp4, err := http.Get(ts.URL + "/rooms/missing")
	require.NoError(t, err)
	resp4.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp4.StatusCode)
}

func TestAcceptor_RejectsPlainHTTPOnWSRoute(t *testing.T) {
	ts := newTestAcceptor(t, &echoHandler{}, staticDirectory{})
	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAcceptorStartAndStop(t *testing.T) {
	srvCfg, wsCfg := testConfigs()
	acc := NewAcceptor(srvCfg, wsCfg, &echoHandler{}, staticDirectory{}, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() {
		errCh <- acc.ListenAndServe()
	}()

	require.Eventually(t, func() bool {
		return acc.IsRunning() && acc.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond)

	client := testutil.NewWSClient(t, "ws://"+acc.Addr()+"/ws")
	client.Send(protocol.TagEcho, protocol.EchoPayload{Message: "ping"})
	client.ReadUntil(protocol.TagEcho, nil, 2*time.Second)

	acc.Stop()
	assert.False(t, acc.IsRunning())

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
}

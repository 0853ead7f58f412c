package gameserver

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/airhockey"
	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/room"
)

// TickFunc advances one room by a fixed step of dt seconds.
type TickFunc func(dt float64)

// TickManager drives every registered room on one fixed timestep. Each step
// calls the rooms in ID order with the same dt, so a room's simulation does
// not depend on when its inputs arrive.
type TickManager struct {
	interval time.Duration
	dt       float64

	mu    sync.Mutex
	rooms map[string]TickFunc
}

// NewTickManager returns a manager stepping every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("gameserver.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		dt:       interval.Seconds(),
		rooms:    make(map[string]TickFunc),
	}
}

// Interval returns the step period.
func (m *TickManager) Interval() time.Duration {
	return m.interval
}

// Register adds room id to the step, replacing any earlier function.
func (m *TickManager) Register(id string, fn TickFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[id] = fn
}

// Unregister drops room id from the step.
func (m *TickManager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

// Len returns the number of registered rooms.
func (m *TickManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Step advances every registered room once. The room set is captured under
// the manager's lock and run after it is released, so a TickFunc may take the
// registry lock and a registry hook may Register or Unregister.
func (m *TickManager) Step() {
	m.mu.Lock()
	ids := slices.Sorted(maps.Keys(m.rooms))
	fns := make([]TickFunc, len(ids))
	for i, id := range ids {
		fns[i] = m.rooms[id]
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(m.dt)
	}
}

// Run steps until ctx is cancelled.
//
// Postcondition: Returns ctx.Err() once ctx is done.
func (m *TickManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Step()
		}
	}
}

// WireTicks registers every physics room with tm for as long as the room
// exists. Each step advances the room by tm's dt; a snapshot is
// broadcast every broadcastEvery accepted ticks and on every score or end
// of game.
//
// Precondition: broadcastEvery >= 1. Call before any room is created.
func (s *Server) WireTicks(tm *TickManager, broadcastEvery int) {
	s.registry.OnCreate(func(id string, kind engine.Kind) {
		if kind == engine.Physics {
			tm.Register(id, s.physicsTick(id, broadcastEvery))
		}
	})
	s.registry.OnRemove(func(id string, kind engine.Kind) {
		if kind == engine.Physics {
			tm.Unregister(id)
		}
	})
}

// physicsTick returns the step function of physics room id.
func (s *Server) physicsTick(id string, broadcastEvery int) TickFunc {
	var accepted int
	return func(dt float64) {
		err := s.registry.WithRoom(id, func(rm *room.Room) error {
			event, ok := rm.Engine.Tick(dt)
			if !ok {
				return nil
			}
			accepted++
			switch event {
			case airhockey.EventScore, airhockey.EventGameOver:
				s.logger.Info("physics event",
					zap.String("game_id", rm.ID),
					zap.String("event", string(event)),
				)
				broadcastState(rm, s.logger)
			default:
				if accepted%broadcastEvery == 0 {
					broadcastState(rm, s.logger)
				}
			}
			return nil
		})
		if err != nil && !gameerr.Is(err, gameerr.RoomNotFound) {
			s.logger.Warn("physics tick failed", zap.String("game_id", id), zap.Error(err))
		}
	}
}

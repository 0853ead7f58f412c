package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/game/session"
	"github.com/cory-johannsen/arcade/internal/protocol"
)

// handleGame applies a game move, or answers a state request, in the room
// the request targets. The acting player is the name the connection joined
// that room with.
func (s *Server) handleGame(c *session.Conn, env protocol.Envelope) error {
	kind, _ := protocol.KindFor(env.Type)
	req, _, err := protocol.DecodeGameRequest(env)
	if err != nil {
		return err
	}
	move, query, err := req.Move()
	if err != nil {
		return err
	}
	id, err := s.resolveRoom(c, req.Room())
	if err != nil {
		return err
	}

	return s.registry.WithRoom(id, func(rm *room.Room) error {
		if rm.Kind != kind {
			return gameerr.New(gameerr.WrongGameTypeForRoom, "room %s hosts %s, not %s", rm.ID, rm.Kind, kind)
		}
		name, ok := rm.NameOf(c.Outbox)
		if !ok {
			return gameerr.New(gameerr.UnknownPlayer, "not a member of room %s", rm.ID)
		}
		if query {
			s.reply(c, stateFrame(rm, name, s.logger))
			return nil
		}
		if err := rm.Engine.ApplyMove(name, move); err != nil {
			return err
		}
		if rm.Engine.IsTerminal() {
			s.logger.Debug("game reached terminal state",
				zap.String("game_id", rm.ID),
				zap.String("game", string(rm.Kind)),
			)
		}
		// Physics input is picked up by the next tick's broadcast.
		if move.Kind() != engine.Physics {
			broadcastState(rm, s.logger)
		}
		return nil
	})
}

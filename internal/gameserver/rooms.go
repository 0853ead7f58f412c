package gameserver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/game/session"
	"github.com/cory-johannsen/arcade/internal/protocol"
)

// handleGameRoom routes join, leave and reset requests.
func (s *Server) handleGameRoom(c *session.Conn, env protocol.Envelope) error {
	req, err := protocol.DecodeData[protocol.GameRoomRequest](env)
	if err != nil {
		return err
	}
	switch strings.ToLower(req.Action) {
	case protocol.ActionJoin:
		return s.join(c, req)
	case protocol.ActionLeave:
		return s.leave(c, req)
	case protocol.ActionReset:
		return s.reset(c, req)
	case "":
		return gameerr.New(gameerr.MissingRequiredField, "action is required")
	default:
		return gameerr.New(gameerr.UnknownAction, "unknown room action %q", req.Action)
	}
}

// join seats the connection in a room, creating the room when req names a
// game. Joining a room the connection is already in re-sends the room's
// state to that connection only.
func (s *Server) join(c *session.Conn, req protocol.GameRoomRequest) error {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return gameerr.New(gameerr.MissingRequiredField, "player_name is required")
	}
	var kind engine.Kind
	if req.Game != "" {
		k, err := engine.ParseKind(req.Game)
		if err != nil {
			return err
		}
		kind = k
	}

	return s.registry.WithRoomOrCreate(req.GameID, kind, func(rm *room.Room, created bool) error {
		member, joined, err := rm.Join(name, c.Outbox)
		if err != nil {
			return err
		}
		if !joined {
			s.reply(c, encodeOrNil(protocol.TagGameRoom, roomEvent(rm, protocol.ActionJoin, member), s.logger))
			s.reply(c, stateFrame(rm, member, s.logger))
			return nil
		}
		s.logger.Info("player joined room",
			zap.String("conn_id", c.ID),
			zap.String("game_id", rm.ID),
			zap.String("game", string(rm.Kind)),
			zap.String("player_name", member),
			zap.Bool("created", created),
		)
		broadcastRoomEvent(rm, protocol.ActionJoin, member, s.logger)
		broadcastState(rm, s.logger)
		return nil
	})
}

// leave removes the connection from a room. The leaver gets the leave event
// directly, since it is no longer a member when the broadcast runs.
func (s *Server) leave(c *session.Conn, req protocol.GameRoomRequest) error {
	id, err := s.resolveRoom(c, req.GameID)
	if err != nil {
		return err
	}
	return s.registry.WithRoom(id, func(rm *room.Room) error {
		name, ok := rm.Leave(c.Outbox)
		if !ok {
			return gameerr.New(gameerr.UnknownPlayer, "not a member of room %s", rm.ID)
		}
		s.logger.Info("player left room",
			zap.String("conn_id", c.ID),
			zap.String("game_id", rm.ID),
			zap.String("player_name", name),
		)
		s.reply(c, encodeOrNil(protocol.TagGameRoom, roomEvent(rm, protocol.ActionLeave, name), s.logger))
		if !rm.Empty() {
			broadcastRoomEvent(rm, protocol.ActionLeave, name, s.logger)
			broadcastState(rm, s.logger)
		}
		return nil
	})
}

// reset starts a new game in a room, keeping its seats.
func (s *Server) reset(c *session.Conn, req protocol.GameRoomRequest) error {
	id, err := s.resolveRoom(c, req.GameID)
	if err != nil {
		return err
	}
	return s.registry.WithRoom(id, func(rm *room.Room) error {
		name, ok := rm.NameOf(c.Outbox)
		if !ok {
			return gameerr.New(gameerr.UnknownPlayer, "not a member of room %s", rm.ID)
		}
		rm.Engine.Reset()
		s.logger.Info("room reset",
			zap.String("game_id", rm.ID),
			zap.String("player_name", name),
		)
		broadcastRoomEvent(rm, protocol.ActionReset, name, s.logger)
		broadcastState(rm, s.logger)
		return nil
	})
}

// encodeOrNil encodes payload, logging and returning nil on failure.
func encodeOrNil(tag protocol.Tag, payload any, logger *zap.Logger) []byte {
	frame, err := protocol.Encode(tag, payload)
	if err != nil {
		logger.Error("encoding reply", zap.String("type", string(tag)), zap.Error(err))
		return nil
	}
	return frame
}

package gameserver

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/session"
	"github.com/cory-johannsen/arcade/internal/protocol"
)

// dispatch routes one inbound frame. Frames that cannot be decoded or carry
// an unknown tag are answered with an Echo; rejected operations with an Error.
func (s *Server) dispatch(c *session.Conn, frame []byte) {
	env, err := protocol.Decode(frame)
	if err != nil {
		s.reply(c, protocol.EchoErrorFrame(frame, err))
		return
	}

	switch env.Type {
	case protocol.TagEcho:
		err = s.handleEcho(c, env)
	case protocol.TagGameRoom:
		err = s.handleGameRoom(c, env)
	case protocol.TagChat:
		err = s.handleChat(c, env)
	case protocol.TagTicTacToe, protocol.TagRockPaperScissors, protocol.TagUno, protocol.TagAirHockey:
		err = s.handleGame(c, env)
	default:
		s.reply(c, protocol.EchoErrorFrame(frame, gameerr.New(gameerr.UnknownAction, "unknown message type %q", env.Type)))
		return
	}

	if err != nil {
		s.logger.Debug("request rejected",
			zap.String("conn_id", c.ID),
			zap.String("type", string(env.Type)),
			zap.String("code", string(gameerr.CodeOf(err))),
			zap.Error(err),
		)
		s.reply(c, protocol.ErrorFrame(err))
	}
}

// handleEcho returns the payload to its sender unchanged.
func (s *Server) handleEcho(c *session.Conn, env protocol.Envelope) error {
	data := env.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	frame, err := protocol.Encode(protocol.TagEcho, data)
	if err != nil {
		return gameerr.New(gameerr.MalformedMessage, "echo payload: %v", err)
	}
	s.reply(c, frame)
	return nil
}

// resolveRoom returns id, or the only room c belongs to when id is empty.
func (s *Server) resolveRoom(c *session.Conn, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	rooms := s.registry.RoomsOf(c.Outbox)
	switch len(rooms) {
	case 1:
		return rooms[0], nil
	case 0:
		return "", gameerr.New(gameerr.MissingRequiredField, "game_id is required")
	default:
		return "", gameerr.New(gameerr.MissingRequiredField, "game_id is required when in %d rooms", len(rooms))
	}
}

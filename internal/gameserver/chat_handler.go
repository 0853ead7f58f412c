package gameserver

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/game/session"
	"github.com/cory-johannsen/arcade/internal/protocol"
)

// ChatTimeLayout formats chat timestamps.
const ChatTimeLayout = "03:04 PM"

// ChatHandler handles room chat: posting lines and reading the transcript.
type ChatHandler struct {
	registry *room.Registry
	now      func() time.Time
	logger   *zap.Logger
}

// NewChatHandler creates a ChatHandler with the given dependencies. A nil
// now uses time.Now.
//
// Precondition: registry and logger must be non-nil.
func NewChatHandler(registry *room.Registry, now func() time.Time, logger *zap.Logger) *ChatHandler {
	if now == nil {
		now = time.Now
	}
	return &ChatHandler{
		registry: registry,
		now:      now,
		logger:   logger,
	}
}

// Send appends a line to room id's transcript and broadcasts it to the room.
//
// Precondition: ob must be a member of room id.
// Postcondition: Returns an error and changes nothing if ob is not a member
// or text is blank.
func (h *ChatHandler) Send(ob *session.Outbox, id, text string) error {
	if strings.TrimSpace(text) == "" {
		return gameerr.New(gameerr.MissingRequiredField, "chat_message is required")
	}
	return h.registry.WithRoom(id, func(rm *room.Room) error {
		name, ok := rm.NameOf(ob)
		if !ok {
			return gameerr.New(gameerr.UnknownPlayer, "not a member of room %s", rm.ID)
		}
		msg := room.ChatMessage{
			PlayerName: name,
			Message:    text,
			Time:       h.now().Format(ChatTimeLayout),
		}
		rm.AddChat(msg)
		broadcastFrame(rm, encodeOrNil(protocol.TagChat, protocol.ChatEvent{
			GameID:      rm.ID,
			PlayerName:  msg.PlayerName,
			ChatMessage: msg.Message,
			Time:        msg.Time,
		}, h.logger), h.logger)
		return nil
	})
}

// History sends room id's transcript to ob alone.
//
// Precondition: ob must be a member of room id.
func (h *ChatHandler) History(ob *session.Outbox, id string) error {
	return h.registry.WithRoom(id, func(rm *room.Room) error {
		if _, ok := rm.NameOf(ob); !ok {
			return gameerr.New(gameerr.UnknownPlayer, "not a member of room %s", rm.ID)
		}
		frame := encodeOrNil(protocol.TagChat, protocol.ChatHistoryReply{
			GameID:   rm.ID,
			Messages: rm.Chat(),
		}, h.logger)
		if frame != nil {
			_ = ob.Push(frame)
		}
		return nil
	})
}

// handleChat routes a Chat envelope. An absent action means send.
func (s *Server) handleChat(c *session.Conn, env protocol.Envelope) error {
	req, err := protocol.DecodeData[protocol.ChatRequest](env)
	if err != nil {
		return err
	}
	id, err := s.resolveRoom(c, req.GameID)
	if err != nil {
		return err
	}
	switch strings.ToLower(req.Action) {
	case protocol.ChatSend, "":
		return s.chat.Send(c.Outbox, id, req.ChatMessage)
	case protocol.ChatHistory:
		return s.chat.History(c.Outbox, id)
	default:
		return gameerr.New(gameerr.UnknownAction, "unknown chat action %q", req.Action)
	}
}

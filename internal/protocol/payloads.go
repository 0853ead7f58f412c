package protocol

import (
	"strings"

	"github.com/cory-johannsen/arcade/internal/game/airhockey"
	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/game/rps"
	"github.com/cory-johannsen/arcade/internal/game/tictactoe"
	"github.com/cory-johannsen/arcade/internal/game/uno"
)

// EchoPayload is echoed back to its sender. Error is set only on replies to
// frames the server could not decode or route.
type EchoPayload struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorPayload reports a rejected operation to its sender.
type ErrorPayload struct {
	Code    gameerr.Code `json:"code"`
	Message string       `json:"message"`
}

// Room membership actions.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
	ActionReset = "reset"
)

// GameRoomRequest joins, leaves or resets a room. Game is needed only when
// the join creates the room.
type GameRoomRequest struct {
	Action     string `json:"action"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
	Game       string `json:"game"`
}

// GameRoomEvent is broadcast to a room after every membership change or reset.
type GameRoomEvent struct {
	Action     string      `json:"action"`
	PlayerName string      `json:"player_name"`
	GameID     string      `json:"game_id"`
	Game       engine.Kind `json:"game"`
	Users      []string    `json:"users"`
}

// Chat actions.
const (
	ChatSend    = "send"
	ChatHistory = "history"
)

// ChatRequest posts a chat line or asks for the transcript.
type ChatRequest struct {
	Action      string `json:"action"`
	GameID      string `json:"game_id"`
	ChatMessage string `json:"chat_message"`
}

// ChatEvent is one chat line broadcast to a room.
type ChatEvent struct {
	GameID      string `json:"game_id"`
	PlayerName  string `json:"player_name"`
	ChatMessage string `json:"chat_message"`
	Time        string `json:"time"`
}

// ChatHistoryReply carries a room's transcript to one requester.
type ChatHistoryReply struct {
	GameID   string             `json:"game_id"`
	Messages []room.ChatMessage `json:"messages"`
}

// StatePayload carries a game snapshot; State is the variant's snapshot type.
type StatePayload struct {
	GameID string      `json:"game_id"`
	Game   engine.Kind `json:"game"`
	State  any         `json:"state"`
}

// GameRequest is implemented by every per-game inbound payload.
type GameRequest interface {
	// Room returns the target room, or "" to use the connection's only room.
	Room() string
	// Move converts the payload to an engine move. query is true when the
	// payload only asks for the current state.
	Move() (m engine.Move, query bool, err error)
}

// TicTacToeRequest places a mark by label ("B2") or by index.
type TicTacToeRequest struct {
	GameID string `json:"game_id"`
	Choice string `json:"choice"`
	Cell   *int   `json:"cell"`
}

func (r TicTacToeRequest) Room() string { return r.GameID }

func (r TicTacToeRequest) Move() (engine.Move, bool, error) {
	switch {
	case r.Choice != "":
		cell, err := tictactoe.ParseCell(r.Choice)
		if err != nil {
			return engine.Move{}, false, err
		}
		return engine.GridMove(tictactoe.Move{Cell: cell}), false, nil
	case r.Cell != nil:
		return engine.GridMove(tictactoe.Move{Cell: *r.Cell}), false, nil
	default:
		return engine.Move{}, true, nil
	}
}

// RockPaperScissorsRequest submits a choice; an empty choice asks for state.
type RockPaperScissorsRequest struct {
	GameID string `json:"game_id"`
	Choice string `json:"choice"`
}

func (r RockPaperScissorsRequest) Room() string { return r.GameID }

func (r RockPaperScissorsRequest) Move() (engine.Move, bool, error) {
	if strings.TrimSpace(r.Choice) == "" {
		return engine.Move{}, true, nil
	}
	c, err := rps.ParseChoice(r.Choice)
	if err != nil {
		return engine.Move{}, false, err
	}
	return engine.ChoiceMove(rps.Move{Choice: c}), false, nil
}

// CardPayload is a card on the wire.
type CardPayload struct {
	Color string `json:"color"`
	Rank  string `json:"rank"`
}

var unoActions = map[string]uno.Action{
	"start":         uno.ActionStart,
	"play_card":     uno.ActionPlayCard,
	"draw_card":     uno.ActionDrawCard,
	"pass_turn":     uno.ActionPassTurn,
	"call_uno":      uno.ActionCallUno,
	"request_state": uno.ActionRequestState,
}

// UnoRequest is a card-game command.
type UnoRequest struct {
	GameID      string       `json:"game_id"`
	Action      string       `json:"action"`
	Card        *CardPayload `json:"card"`
	ChooseColor string       `json:"choose_color"`
}

func (r UnoRequest) Room() string { return r.GameID }

func (r UnoRequest) Move() (engine.Move, bool, error) {
	action, ok := unoActions[strings.ToLower(r.Action)]
	if !ok {
		if r.Action == "" {
			return engine.Move{}, false, gameerr.New(gameerr.MissingRequiredField, "action is required")
		}
		return engine.Move{}, false, gameerr.New(gameerr.UnknownAction, "unknown card action %q", r.Action)
	}
	if action == uno.ActionRequestState {
		return engine.Move{}, true, nil
	}

	m := uno.Move{Action: action, ChooseColor: uno.Color(strings.ToLower(r.ChooseColor))}
	if action == uno.ActionPlayCard {
		if r.Card == nil {
			return engine.Move{}, false, gameerr.New(gameerr.MissingRequiredField, "card is required")
		}
		c, ok := uno.ParseCard(r.Card.Color, r.Card.Rank)
		if !ok {
			return engine.Move{}, false, gameerr.New(gameerr.IllegalMove, "unknown card %s %s", r.Card.Color, r.Card.Rank)
		}
		m.Card = c
	}
	return engine.CardsMove(m), false, nil
}

// AirHockeyRequest moves a paddle or asks for state.
type AirHockeyRequest struct {
	GameID   string         `json:"game_id"`
	Action   string         `json:"action"`
	Position *airhockey.Vec `json:"position"`
	Velocity *airhockey.Vec `json:"velocity"`
}

func (r AirHockeyRequest) Room() string { return r.GameID }

func (r AirHockeyRequest) Move() (engine.Move, bool, error) {
	switch strings.ToLower(r.Action) {
	case "request_state":
		return engine.Move{}, true, nil
	case "move_paddle", "":
		return engine.PhysicsMove(airhockey.Move{
			Action:   airhockey.ActionMovePaddle,
			Position: r.Position,
			Velocity: r.Velocity,
		}), false, nil
	default:
		return engine.Move{}, false, gameerr.New(gameerr.UnknownAction, "unknown paddle action %q", r.Action)
	}
}

// DecodeGameRequest parses env's payload as the request type of its game tag.
//
// Postcondition: ok is false if env.Type is not a game tag.
func DecodeGameRequest(env Envelope) (req GameRequest, ok bool, err error) {
	switch env.Type {
	case TagTicTacToe:
		r, err := DecodeData[TicTacToeRequest](env)
		return r, true, err
	case TagRockPaperScissors:
		r, err := DecodeData[RockPaperScissorsRequest](env)
		return r, true, err
	case TagUno:
		r, err := DecodeData[UnoRequest](env)
		return r, true, err
	case TagAirHockey:
		r, err := DecodeData[AirHockeyRequest](env)
		return r, true, err
	default:
		return nil, false, nil
	}
}

// Package protocol defines the JSON wire contract: the {type, data} envelope,
// the message tags, and each tag's payloads.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
)

// Tag selects the payload type of an envelope.
type Tag string

const (
	TagEcho              Tag = "Echo"
	TagGameRoom          Tag = "GameRoom"
	TagChat              Tag = "Chat"
	TagTicTacToe         Tag = "TicTacToe"
	TagRockPaperScissors Tag = "RockPaperScissors"
	TagUno               Tag = "Uno"
	TagAirHockey         Tag = "AirHockey"
	// TagError is sent by the server only.
	TagError Tag = "Error"
)

var gameTags = map[engine.Kind]Tag{
	engine.Grid:    TagTicTacToe,
	engine.Choice:  TagRockPaperScissors,
	engine.Cards:   TagUno,
	engine.Physics: TagAirHockey,
}

// TagFor returns the tag that carries kind's moves and snapshots.
func TagFor(kind engine.Kind) Tag {
	return gameTags[kind]
}

// KindFor returns the game kind a game tag belongs to.
func KindFor(tag Tag) (engine.Kind, bool) {
	for k, t := range gameTags {
		if t == tag {
			return k, true
		}
	}
	return "", false
}

// Envelope is one frame on the wire.
type Envelope struct {
	Type Tag             `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses a frame into an envelope. The payload is left raw.
//
// Postcondition: Returns a MalformedMessage error if frame is not an envelope.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, gameerr.New(gameerr.MalformedMessage, "invalid JSON: %v", err)
	}
	if env.Type == "" {
		return Envelope{}, gameerr.New(gameerr.MalformedMessage, "missing type")
	}
	return env, nil
}

// DecodeData parses env's payload as T. An absent payload yields T's zero value.
//
// Postcondition: Returns a MalformedMessage error if the payload does not fit T.
func DecodeData[T any](env Envelope) (T, error) {
	var v T
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, gameerr.New(gameerr.MalformedMessage, "invalid %s payload: %v", env.Type, err)
	}
	return v, nil
}

// Encode renders payload under tag as a text frame.
func Encode(tag Tag, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", tag, err)
	}
	frame, err := json.Marshal(Envelope{Type: tag, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", tag, err)
	}
	return frame, nil
}

// ErrorFrame renders err as an Error reply. Uncoded errors are reported
// with an empty code and their text.
func ErrorFrame(err error) []byte {
	frame, encErr := Encode(TagError, ErrorPayload{Code: gameerr.CodeOf(err), Message: gameerr.MessageOf(err)})
	if encErr != nil {
		// ErrorPayload holds only strings.
		panic(encErr)
	}
	return frame
}

// EchoErrorFrame renders the reply to a frame that could not be decoded or
// routed: an Echo carrying the offending text and the reason.
func EchoErrorFrame(original []byte, err error) []byte {
	frame, encErr := Encode(TagEcho, EchoPayload{Message: string(original), Error: gameerr.MessageOf(err)})
	if encErr != nil {
		panic(encErr)
	}
	return frame
}

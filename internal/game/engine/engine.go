// Package engine closes the set of game variants a room can host behind one
// tagged type. Every operation switches exhaustively over Kind.
package engine

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arcade/internal/game/airhockey"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/rps"
	"github.com/cory-johannsen/arcade/internal/game/shuffle"
	"github.com/cory-johannsen/arcade/internal/game/tictactoe"
	"github.com/cory-johannsen/arcade/internal/game/uno"
)

// Kind identifies a game variant.
type Kind string

const (
	Grid    Kind = "grid"
	Choice  Kind = "choice"
	Cards   Kind = "cards"
	Physics Kind = "physics"
)

// Kinds lists every variant.
var Kinds = []Kind{Grid, Choice, Cards, Physics}

var aliases = map[string]Kind{
	"grid":              Grid,
	"tictactoe":         Grid,
	"tic-tac-toe":       Grid,
	"choice":            Choice,
	"rockpaperscissors": Choice,
	"rps":               Choice,
	"cards":             Cards,
	"uno":               Cards,
	"physics":           Physics,
	"airhockey":         Physics,
	"air-hockey":        Physics,
}

// ParseKind resolves a canonical game name or alias, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return "", gameerr.New(gameerr.MissingRequiredField, "game is required")
	}
	if k, ok := aliases[name]; ok {
		return k, nil
	}
	return "", gameerr.New(gameerr.UnknownAction, "unknown game %q", s)
}

// Options carries the per-variant construction settings.
type Options struct {
	// UnoMaxSeats caps the card game's seats.
	UnoMaxSeats int
	// Table is the physics table geometry.
	Table airhockey.Table
	// Source orders card decks. Defaults to a crypto source.
	Source shuffle.Source
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{UnoMaxSeats: 10, Table: airhockey.DefaultTable()}
}

// Engine is exactly one game variant's state.
//
// Invariant: exactly the field selected by kind is non-nil.
type Engine struct {
	kind    Kind
	grid    *tictactoe.Game
	choice  *rps.Game
	cards   *uno.Game
	physics *airhockey.Game
}

// New creates a fresh game of kind.
//
// Postcondition: Returns a non-nil Engine or an UnknownAction error for an unknown kind.
func New(kind Kind, opts Options) (*Engine, error) {
	e := &Engine{kind: kind}
	switch kind {
	case Grid:
		e.grid = tictactoe.New()
	case Choice:
		e.choice = rps.New()
	case Cards:
		src := opts.Source
		if src == nil {
			src = shuffle.NewCryptoSource()
		}
		seats := opts.UnoMaxSeats
		if seats < uno.MinSeats {
			seats = uno.MinSeats
		}
		e.cards = uno.New(seats, src)
	case Physics:
		e.physics = airhockey.New(opts.Table)
	default:
		return nil, gameerr.New(gameerr.UnknownAction, "unknown game %q", kind)
	}
	return e, nil
}

// Kind returns the variant.
func (e *Engine) Kind() Kind {
	return e.kind
}

// AssignSeat seats name, or returns the seat it already holds.
func (e *Engine) AssignSeat(name string) (int, error) {
	switch e.kind {
	case Grid:
		return e.grid.AssignSeat(name)
	case Choice:
		return e.choice.AssignSeat(name)
	case Cards:
		return e.cards.AssignSeat(name)
	case Physics:
		return e.physics.AssignSeat(name)
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// SeatOf returns the seat bound to name.
func (e *Engine) SeatOf(name string) (int, bool) {
	switch e.kind {
	case Grid:
		return e.grid.SeatOf(name)
	case Choice:
		return e.choice.SeatOf(name)
	case Cards:
		return e.cards.SeatOf(name)
	case Physics:
		return e.physics.SeatOf(name)
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// Players returns the seated names in seat order.
func (e *Engine) Players() []string {
	switch e.kind {
	case Grid:
		return e.grid.Players()
	case Choice:
		return e.choice.Players()
	case Cards:
		return e.cards.Players()
	case Physics:
		return e.physics.Players()
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// ApplyMove applies m on behalf of player.
//
// Precondition: player is the acting connection's join-time display name.
// Postcondition: On error the game is unchanged.
func (e *Engine) ApplyMove(player string, m Move) error {
	if m.kind != e.kind {
		return gameerr.New(gameerr.WrongGameTypeForRoom, "room hosts %s, not %s", e.kind, m.kind)
	}
	seat, ok := e.SeatOf(player)
	if !ok {
		return gameerr.New(gameerr.UnknownPlayer, "%s has no seat in this game", player)
	}
	switch e.kind {
	case Grid:
		return e.grid.ApplyMove(seat, m.grid)
	case Choice:
		return e.choice.ApplyMove(seat, m.choice)
	case Cards:
		return e.cards.ApplyMove(seat, m.cards)
	case Physics:
		return e.physics.ApplyMove(seat, m.physics)
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// IsTerminal reports whether the current game has finished.
func (e *Engine) IsTerminal() bool {
	switch e.kind {
	case Grid:
		return e.grid.IsTerminal()
	case Choice:
		return e.choice.IsTerminal()
	case Cards:
		return e.cards.IsTerminal()
	case Physics:
		return e.physics.IsTerminal()
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// Reset starts a new game with the same seats.
func (e *Engine) Reset() {
	switch e.kind {
	case Grid:
		e.grid.Reset()
	case Choice:
		e.choice.Reset()
	case Cards:
		e.cards.Reset()
	case Physics:
		e.physics.Reset()
	}
}

// PerViewer reports whether snapshots differ by viewer and so must be
// rendered once per recipient.
func (e *Engine) PerViewer() bool {
	switch e.kind {
	case Choice, Cards:
		return true
	case Grid, Physics:
		return false
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// Snapshot renders the state visible to viewer.
func (e *Engine) Snapshot(viewer string) any {
	switch e.kind {
	case Grid:
		return e.grid.Snapshot()
	case Choice:
		return e.choice.Snapshot(viewer)
	case Cards:
		return e.cards.Snapshot(viewer)
	case Physics:
		return e.physics.Snapshot()
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// Tick advances a physics game by dt seconds. For every other kind it is a
// no-op returning false.
func (e *Engine) Tick(dt float64) (airhockey.Event, bool) {
	switch e.kind {
	case Physics:
		return e.physics.Tick(dt)
	case Grid, Choice, Cards:
		return "", false
	}
	panic(fmt.Sprintf("engine: unhandled kind %q", e.kind))
}

// Package rps implements the simultaneous-choice (rock/paper/scissors) game.
package rps

import (
	"strings"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
)

// Choice is one of the three hand shapes.
type Choice int

const (
	None Choice = iota
	Rock
	Paper
	Scissors
)

// String returns the wire name of the choice.
func (c Choice) String() string {
	switch c {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	default:
		return ""
	}
}

// beats maps each choice to the one it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// ParseChoice accepts full names and single-letter abbreviations, case-insensitively.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	default:
		return None, gameerr.New(gameerr.IllegalMove, "choice must be rock, paper, or scissors, got %q", s)
	}
}

// Result is the outcome of a round.
type Result int

const (
	Pending Result = iota
	Seat0
	Seat1
	Draw
)

// Decide applies the cyclic-dominance rule to a pair of choices.
//
// Precondition: a and b are not None.
func Decide(a, b Choice) Result {
	switch {
	case a == b:
		return Draw
	case beats[a] == b:
		return Seat0
	default:
		return Seat1
	}
}

// Move submits a choice.
type Move struct {
	Choice Choice
}

// Game is the simultaneous-choice state.
//
// Invariant: result != Pending only when both choices are present.
type Game struct {
	seats   [2]string
	choices [2]Choice
	result  Result
	wins    [2]int
	draws   int
	rounds  int
}

// New returns a game with no seats and no choices.
func New() *Game {
	return &Game{}
}

// AssignSeat binds name to the first free seat or returns its existing seat.
func (g *Game) AssignSeat(name string) (int, error) {
	if seat, ok := g.SeatOf(name); ok {
		return seat, nil
	}
	for i := range g.seats {
		if g.seats[i] == "" {
			g.seats[i] = name
			return i, nil
		}
	}
	return -1, gameerr.New(gameerr.RoomFull, "both seats are taken")
}

// SeatOf returns the seat bound to name.
func (g *Game) SeatOf(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, n := range g.seats {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Players returns the seated names in seat order.
func (g *Game) Players() []string {
	out := make([]string, 0, 2)
	for _, n := range g.seats {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ApplyMove records seat's choice and resolves the round once both seats have chosen.
// A submission after a resolved round first clears both prior choices.
//
// Postcondition: On error the game is unchanged.
func (g *Game) ApplyMove(seat int, m Move) error {
	if seat < 0 || seat > 1 || g.seats[seat] == "" {
		return gameerr.New(gameerr.UnknownPlayer, "seat %d is not assigned", seat)
	}
	if g.seats[0] == "" || g.seats[1] == "" {
		return gameerr.New(gameerr.IllegalMove, "waiting for opponent")
	}
	if m.Choice == None {
		return gameerr.New(gameerr.MissingRequiredField, "choice is required")
	}

	if g.result != Pending {
		g.clearRound()
	}
	g.choices[seat] = m.Choice

	if g.choices[0] != None && g.choices[1] != None {
		g.result = Decide(g.choices[0], g.choices[1])
		g.rounds++
		switch g.result {
		case Seat0:
			g.wins[0]++
		case Seat1:
			g.wins[1]++
		case Draw:
			g.draws++
		}
	}
	return nil
}

func (g *Game) clearRound() {
	g.choices = [2]Choice{}
	g.result = Pending
}

// IsTerminal reports whether the current round is resolved. Rounds restart on
// the next submission, so the game itself never ends.
func (g *Game) IsTerminal() bool {
	return g.result != Pending
}

// Result returns the current round's result.
func (g *Game) Result() Result {
	return g.result
}

// Reset clears the round and the tally, keeping the seats.
func (g *Game) Reset() {
	g.clearRound()
	g.wins = [2]int{}
	g.draws = 0
	g.rounds = 0
}

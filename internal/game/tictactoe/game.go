// Package tictactoe implements the 3×3 grid game state machine.
package tictactoe

import (
	"strings"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
)

// Cells is the number of cells on the board.
const Cells = 9

// Mark values stored in the grid. Seat 0 plays X (+1), seat 1 plays O (-1).
const (
	Empty int8 = 0
	MarkX int8 = 1
	MarkO int8 = -1
)

// Status values reported in snapshots.
const (
	StatusWaiting    = "WAITING"
	StatusInProgress = "IN_PROGRESS"
	StatusFinished   = "FINISHED"
)

// Outcome is the game result.
type Outcome int

const (
	Pending Outcome = iota
	WinX
	WinO
	Tie
)

// lines holds the eight winning lines as cell indices.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Move places the acting seat's mark on Cell.
type Move struct {
	Cell int
}

// Game is the grid game state.
//
// Invariant: marks alternate strictly; once outcome != Pending no cell changes.
type Game struct {
	board   [Cells]int8
	turn    int
	outcome Outcome
	moves   int
	seats   [2]string
}

// New returns an empty game with X to move.
func New() *Game {
	return &Game{}
}

// AssignSeat binds name to the first free seat, or returns the seat it already holds.
//
// Postcondition: Returns the seat index, or a RoomFull error when both seats are taken.
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
	out := make([]string, 0, len(g.seats))
	for _, n := range g.seats {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ApplyMove validates and applies a move for seat.
//
// Postcondition: On error the game is unchanged.
func (g *Game) ApplyMove(seat int, m Move) error {
	if g.outcome != Pending {
		return gameerr.New(gameerr.IllegalMove, "game is over")
	}
	if g.seats[0] == "" || g.seats[1] == "" {
		return gameerr.New(gameerr.IllegalMove, "waiting for opponent")
	}
	if seat != g.turn {
		return gameerr.New(gameerr.NotYourTurn, "it is %s's turn", g.seats[g.turn])
	}
	if m.Cell < 0 || m.Cell >= Cells {
		return gameerr.New(gameerr.IllegalMove, "cell %d out of range", m.Cell)
	}
	if g.board[m.Cell] != Empty {
		return gameerr.New(gameerr.IllegalMove, "cell %s is occupied", CellLabel(m.Cell))
	}

	g.board[m.Cell] = markFor(seat)
	g.moves++
	g.outcome = Evaluate(g.board)
	if g.outcome == Pending {
		g.turn = 1 - g.turn
	}
	return nil
}

// IsTerminal reports whether a winner or tie has been reached.
func (g *Game) IsTerminal() bool {
	return g.outcome != Pending
}

// Outcome returns the current result.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// Turn returns the seat to move.
func (g *Game) Turn() int {
	return g.turn
}

// Board returns a copy of the grid.
func (g *Game) Board() [Cells]int8 {
	return g.board
}

// Reset clears the board and keeps the seats.
func (g *Game) Reset() {
	g.board = [Cells]int8{}
	g.turn = 0
	g.outcome = Pending
	g.moves = 0
}

// Evaluate classifies a board: a line whose signed sum is ±3 wins, a full
// board without a winning line ties.
func Evaluate(board [Cells]int8) Outcome {
	for _, line := range lines {
		sum := board[line[0]] + board[line[1]] + board[line[2]]
		switch sum {
		case 3:
			return WinX
		case -3:
			return WinO
		}
	}
	for _, v := range board {
		if v == Empty {
			return Pending
		}
	}
	return Tie
}

func markFor(seat int) int8 {
	if seat == 0 {
		return MarkX
	}
	return MarkO
}

// ParseCell converts a label such as "B2" (row letter, column digit) to a cell index.
func ParseCell(label string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if len(s) != 2 || s[0] < 'A' || s[0] > 'C' || s[1] < '1' || s[1] > '3' {
		return -1, gameerr.New(gameerr.IllegalMove, "invalid cell %q", label)
	}
	return int(s[0]-'A')*3 + int(s[1]-'1'), nil
}

// CellLabel is the inverse of ParseCell.
func CellLabel(cell int) string {
	return string([]byte{byte('A' + cell/3), byte('1' + cell%3)})
}

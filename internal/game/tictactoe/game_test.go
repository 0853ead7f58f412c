package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
)

func seated(t *testing.T) *Game {
	t.Helper()
	g := New()
	_, err := g.AssignSeat("A")
	require.NoError(t, err)
	_, err = g.AssignSeat("B")
	require.NoError(t, err)
	return g
}

func TestAssignSeat_IdempotentAndFull(t *testing.T) {
	g := New()
	s, err := g.AssignSeat("A")
	require.NoError(t, err)
	assert.Equal(t, 0, s)

	s, err = g.AssignSeat("A")
	require.NoError(t, err)
	assert.Equal(t, 0, s)

	s, err = g.AssignSeat("B")
	require.NoError(t, err)
	assert.Equal(t, 1, s)

	_, err = g.AssignSeat("C")
	assert.True(t, gameerr.Is(err, gameerr.RoomFull))
	assert.Equal(t, []string{"A", "B"}, g.Players())
}

func TestApplyMove_WaitingForOpponent(t *testing.T) {
	g := New()
	_, _ = g.AssignSeat("A")
	err := g.ApplyMove(0, Move{Cell: 4})
	assert.True(t, gameerr.Is(err, gameerr.IllegalMove))
	assert.Equal(t, StatusWaiting, g.Snapshot().Status)
}

func TestApplyMove_NotYourTurn(t *testing.T) {
	g := seated(t)
	err := g.ApplyMove(1, Move{Cell: 0})
	assert.True(t, gameerr.Is(err, gameerr.NotYourTurn))
	assert.Equal(t, [Cells]int8{}, g.Board())
}

func TestApplyMove_OutOfRange(t *testing.T) {
	g := seated(t)
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Cell: 9}), gameerr.IllegalMove))
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Cell: -1}), gameerr.IllegalMove))
}

func TestApplyMove_OccupiedCellIsNoOp(t *testing.T) {
	g := seated(t)
	require.NoError(t, g.ApplyMove(0, Move{Cell: 4}))

	before := g.Snapshot()
	for i := 0; i < 2; i++ {
		err := g.ApplyMove(1, Move{Cell: 4})
		assert.True(t, gameerr.Is(err, gameerr.IllegalMove), "attempt %d", i+1)
		assert.Equal(t, before, g.Snapshot(), "attempt %d must not change state", i+1)
	}
}

func TestApplyMove_RowWinStopsGame(t *testing.T) {
	g := seated(t)
	for _, m := range []struct{ seat, cell int }{{0, 0}, {1, 3}, {0, 1}, {1, 4}, {0, 2}} {
		require.NoError(t, g.ApplyMove(m.seat, Move{Cell: m.cell}))
	}
	assert.Equal(t, WinX, g.Outcome())
	assert.True(t, g.IsTerminal())

	snap := g.Snapshot()
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, "A", snap.Winner)
	assert.Equal(t, "", snap.WhoseTurn)

	err := g.ApplyMove(1, Move{Cell: 8})
	assert.True(t, gameerr.Is(err, gameerr.IllegalMove))
}

func TestApplyMove_Tie(t *testing.T) {
	g := seated(t)
	// X O X / X O O / O X X
	for i, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		require.NoError(t, g.ApplyMove(i%2, Move{Cell: cell}))
	}
	assert.Equal(t, Tie, g.Outcome())
	assert.Equal(t, "tie", g.Snapshot().Winner)
}

func TestReset_KeepsSeats(t *testing.T) {
	g := seated(t)
	require.NoError(t, g.ApplyMove(0, Move{Cell: 0}))
	g.Reset()
	snap := g.Snapshot()
	assert.Equal(t, 0, snap.MoveCount)
	assert.Equal(t, "A", snap.WhoseTurn)
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, []string{"A", "B"}, snap.Players)
}

func TestParseCell(t *testing.T) {
	cases := map[string]int{"A1": 0, "a3": 2, "B2": 4, "c1": 6, " C3 ": 8}
	for label, want := range cases {
		got, err := ParseCell(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
		assert.Equal(t, want, mustParse(t, CellLabel(got)))
	}
	for _, bad := range []string{"", "D1", "A4", "A", "11"} {
		_, err := ParseCell(bad)
		assert.True(t, gameerr.Is(err, gameerr.IllegalMove), bad)
	}
}

func mustParse(t *testing.T, label string) int {
	t.Helper()
	c, err := ParseCell(label)
	require.NoError(t, err)
	return c
}

// referenceOutcome classifies a board by comparing marks instead of summing.
func referenceOutcome(board [Cells]int8) Outcome {
	for _, l := range lines {
		a, b, c := board[l[0]], board[l[1]], board[l[2]]
		if a != Empty && a == b && b == c {
			if a == MarkX {
				return WinX
			}
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

// TestEvaluate_AllReachableTerminalBoards walks every game reachable by
// alternating legal marks and checks each terminal board.
func TestEvaluate_AllReachableTerminalBoards(t *testing.T) {
	terminal := 0
	var walk func(g *Game)
	walk = func(g *Game) {
		for cell := 0; cell < Cells; cell++ {
			next := *g
			if err := next.ApplyMove(next.turn, Move{Cell: cell}); err != nil {
				continue
			}
			want := referenceOutcome(next.board)
			if next.IsTerminal() {
				terminal++
				if next.Outcome() != want {
					t.Fatalf("board %v: got %v, want %v", next.board, next.Outcome(), want)
				}
				continue
			}
			if want != Pending {
				t.Fatalf("board %v: engine missed outcome %v", next.board, want)
			}
			walk(&next)
		}
	}
	walk(seated(t))
	// 255168 complete games of tic-tac-toe.
	assert.Equal(t, 255168, terminal)
}

func TestProperty_MarksAlternate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := New()
		_, _ = g.AssignSeat("A")
		_, _ = g.AssignSeat("B")
		cells := rapid.SliceOfN(rapid.IntRange(-1, 9), 1, 30).Draw(rt, "cells")
		for _, c := range cells {
			seat := g.Turn()
			if rapid.Bool().Draw(rt, "wrong_seat") {
				seat = 1 - seat
			}
			_ = g.ApplyMove(seat, Move{Cell: c})

			var x, o int
			for _, v := range g.Board() {
				switch v {
				case MarkX:
					x++
				case MarkO:
					o++
				}
			}
			if x != o && x != o+1 {
				rt.Fatalf("marks did not alternate: x=%d o=%d", x, o)
			}
			if x+o != g.Snapshot().MoveCount {
				rt.Fatalf("move counter %d != marks %d", g.Snapshot().MoveCount, x+o)
			}
		}
	})
}

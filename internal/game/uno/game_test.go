package uno

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/shuffle"
)

func card(color Color, rank Rank) Card { return Card{Color: color, Rank: rank} }
func num(color Color, n int) Card      { return Card{Color: color, Rank: NumberRank(n)} }

var wild = Card{Color: Wild, Rank: WildCard}
var wildFour = Card{Color: Wild, Rank: WildDrawFour}

func playerName(i int) string { return fmt.Sprintf("p%d", i) }

func started(t *testing.T, seats int, seed uint64) *Game {
	t.Helper()
	g := New(10, shuffle.NewSeededSource(seed))
	for i := 0; i < seats; i++ {
		_, err := g.AssignSeat(playerName(i))
		require.NoError(t, err)
	}
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionStart}))
	return g
}

// rigged starts a game and then replaces hands and the discard pile with the
// given cards, leaving the remainder of a full deck in the stack.
func rigged(t *testing.T, hands [][]Card, top Card) *Game {
	t.Helper()
	g := started(t, len(hands), 1)
	deck := NewDeck()
	take := func(c Card) {
		idx := slices.Index(deck, c)
		require.GreaterOrEqual(t, idx, 0, "deck has no more %s", c)
		deck = slices.Delete(deck, idx, idx+1)
	}
	for i, h := range hands {
		for _, c := range h {
			take(c)
		}
		g.hands[i] = slices.Clone(h)
	}
	take(top)
	g.discard = []Card{top}
	g.activeColor = top.Color
	g.stack = deck
	return g
}

func total(g *Game) int {
	n := len(g.stack) + len(g.discard)
	for _, h := range g.hands {
		n += len(h)
	}
	return n
}

func TestNewDeck_Composition(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)
	byColor := map[Color]int{}
	for _, c := range deck {
		byColor[c.Color]++
	}
	for _, color := range Colors {
		assert.Equal(t, 25, byColor[color], color)
	}
	assert.Equal(t, 8, byColor[Wild])
	assert.Equal(t, 1, countOf(deck, num(Red, 0)))
	assert.Equal(t, 2, countOf(deck, num(Blue, 7)))
	assert.Equal(t, 4, countOf(deck, wildFour))
}

func countOf(deck []Card, c Card) int {
	n := 0
	for _, d := range deck {
		if d == c {
			n++
		}
	}
	return n
}

func TestParseCard(t *testing.T) {
	c, ok := ParseCard("Red", "Skip")
	require.True(t, ok)
	assert.Equal(t, card(Red, Skip), c)

	c, ok = ParseCard("", "wild draw four")
	require.True(t, ok)
	assert.Equal(t, wildFour, c)

	_, ok = ParseCard("purple", "3")
	assert.False(t, ok)
	_, ok = ParseCard("red", "12")
	assert.False(t, ok)
}

func TestStart_DealsAndFlipsNonWild(t *testing.T) {
	g := started(t, 3, 42)
	for i := range g.seats {
		assert.Len(t, g.hands[i], HandSize)
	}
	top, ok := g.Top()
	require.True(t, ok)
	assert.False(t, top.IsWild())
	assert.Equal(t, top.Color, g.activeColor)
	assert.Equal(t, DeckSize, total(g))
	assert.Equal(t, 0, g.current)
	assert.True(t, g.Snapshot("").Started)
}

func TestStart_Errors(t *testing.T) {
	g := New(4, shuffle.NewSeededSource(1))
	_, _ = g.AssignSeat("solo")
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionStart}), gameerr.IllegalMove))

	_, _ = g.AssignSeat("duo")
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionStart}))
	assert.True(t, gameerr.Is(g.ApplyMove(1, Move{Action: ActionStart}), gameerr.IllegalMove))

	_, err := g.AssignSeat("late")
	assert.True(t, gameerr.Is(err, gameerr.RoomFull))
	seat, err := g.AssignSeat("duo")
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
}

func TestAssignSeat_MaxSeats(t *testing.T) {
	g := New(2, shuffle.NewSeededSource(1))
	_, _ = g.AssignSeat("a")
	_, _ = g.AssignSeat("b")
	_, err := g.AssignSeat("c")
	assert.True(t, gameerr.Is(err, gameerr.RoomFull))
}

func TestForcedDraw_Resolution(t *testing.T) {
	g := rigged(t, [][]Card{
		{card(Red, DrawTwo), num(Red, 5)},
		{num(Blue, 3), num(Blue, 4)},
		{num(Green, 3), num(Green, 4)},
	}, num(Red, 1))

	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: card(Red, DrawTwo)}))
	assert.Equal(t, 1, g.current)
	assert.Equal(t, 2, g.pendingDraw)

	assert.True(t, gameerr.Is(g.ApplyMove(1, Move{Action: ActionPlayCard, Card: num(Blue, 3)}), gameerr.IllegalMove))
	assert.True(t, gameerr.Is(g.ApplyMove(1, Move{Action: ActionPassTurn}), gameerr.IllegalMove))
	before := g.Snapshot(playerName(1))
	assert.True(t, gameerr.Is(g.ApplyMove(1, Move{Action: ActionCallUno}), gameerr.IllegalMove))
	assert.Equal(t, before, g.Snapshot(playerName(1)))
	assert.False(t, g.unoCalled[1])
	assert.True(t, gameerr.Is(g.ApplyMove(2, Move{Action: ActionDrawCard}), gameerr.NotYourTurn))

	require.NoError(t, g.ApplyMove(1, Move{Action: ActionDrawCard}))
	assert.Len(t, g.hands[1], 4)
	assert.Equal(t, 0, g.pendingDraw)
	assert.Equal(t, 2, g.current)
	assert.Equal(t, DeckSize, total(g))
}

func TestWildDrawFour_PenalizesNextSeat(t *testing.T) {
	g := rigged(t, [][]Card{
		{wildFour, num(Red, 5)},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))

	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: wildFour, ChooseColor: Green}))
	assert.Equal(t, 4, g.pendingDraw)
	assert.Equal(t, Green, g.activeColor)
	require.NoError(t, g.ApplyMove(1, Move{Action: ActionDrawCard}))
	assert.Len(t, g.hands[1], 6)
	assert.Equal(t, 0, g.current)
}

func TestWild_ColorIsBinding(t *testing.T) {
	g := rigged(t, [][]Card{
		{wild, num(Red, 5)},
		{num(Red, 7), num(Blue, 2)},
	}, num(Red, 1))

	before := g.Snapshot(playerName(0))
	err := g.ApplyMove(0, Move{Action: ActionPlayCard, Card: wild})
	assert.True(t, gameerr.Is(err, gameerr.MissingRequiredField))
	err = g.ApplyMove(0, Move{Action: ActionPlayCard, Card: wild, ChooseColor: Wild})
	assert.True(t, gameerr.Is(err, gameerr.MissingRequiredField))
	assert.Equal(t, before, g.Snapshot(playerName(0)))

	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: wild, ChooseColor: "BLUE"}))
	assert.Equal(t, Blue, g.activeColor)

	err = g.ApplyMove(1, Move{Action: ActionPlayCard, Card: num(Red, 7)})
	assert.True(t, gameerr.Is(err, gameerr.IllegalMove), "red no longer matches after blue was chosen")
	require.NoError(t, g.ApplyMove(1, Move{Action: ActionPlayCard, Card: num(Blue, 2)}))
}

func TestPlay_RankMatchChangesColor(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Green, 1), num(Red, 5)},
		{num(Blue, 2), num(Blue, 4)},
	}, num(Red, 1))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: num(Green, 1)}))
	assert.Equal(t, Green, g.activeColor)
	assert.Equal(t, 1, g.current)
}

func TestPlay_Rejections(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Blue, 9), num(Red, 5)},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))

	assert.True(t, gameerr.Is(g.ApplyMove(1, Move{Action: ActionPlayCard, Card: num(Blue, 3)}), gameerr.NotYourTurn))
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionPlayCard, Card: num(Green, 5)}), gameerr.IllegalMove))
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionPlayCard, Card: num(Blue, 9)}), gameerr.IllegalMove))
	assert.True(t, gameerr.Is(g.ApplyMove(7, Move{Action: ActionDrawCard}), gameerr.UnknownPlayer))
	assert.Len(t, g.hands[0], 2)
}

func TestSkipAndReverse(t *testing.T) {
	hands := [][]Card{
		{card(Red, Skip), card(Red, Reverse), num(Red, 5)},
		{num(Blue, 3), num(Blue, 4)},
		{num(Green, 3), num(Green, 4)},
	}

	g := rigged(t, hands, num(Red, 1))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: card(Red, Skip)}))
	assert.Equal(t, 2, g.current)

	g = rigged(t, hands, num(Red, 1))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: card(Red, Reverse)}))
	assert.Equal(t, -1, g.direction)
	assert.Equal(t, 2, g.current)

	g = rigged(t, hands[:2], num(Red, 1))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: card(Red, Reverse)}))
	assert.Equal(t, 0, g.current, "reverse with two seats returns the turn")
}

func TestDrawOncePerTurnThenPass(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Blue, 9), num(Blue, 5)},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))

	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionPassTurn}), gameerr.IllegalMove))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionDrawCard}))
	assert.Len(t, g.hands[0], 3)
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionDrawCard}), gameerr.IllegalMove))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPassTurn}))
	assert.Equal(t, 1, g.current)
	assert.False(t, g.drewThisTurn)
}

func TestPass_AllowedWhenNothingToDraw(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Blue, 9), num(Blue, 5)},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))
	g.stack = nil
	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionDrawCard}), gameerr.IllegalMove))
	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPassTurn}))
}

func TestDraw_ReshufflesDiscardWhenStackEmpty(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Blue, 9), num(Blue, 5)},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))
	moved := slices.Clone(g.stack[:4])
	g.discard = append(moved, g.discard...)
	g.stack = nil
	top, _ := g.Top()

	require.NoError(t, g.ApplyMove(0, Move{Action: ActionDrawCard}))
	assert.Len(t, g.stack, 3)
	assert.Equal(t, []Card{top}, g.discard)
	assert.Len(t, g.hands[0], 3)
}

func TestWin_EmptyHandEndsGame(t *testing.T) {
	g := rigged(t, [][]Card{
		{wildFour},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))

	require.NoError(t, g.ApplyMove(0, Move{Action: ActionPlayCard, Card: wildFour, ChooseColor: Red}))
	assert.True(t, g.IsTerminal())
	assert.Equal(t, 0, g.pendingDraw)
	assert.Equal(t, playerName(0), g.Snapshot("").Winner)
	assert.True(t, gameerr.Is(g.ApplyMove(1, Move{Action: ActionDrawCard}), gameerr.IllegalMove))

	require.NoError(t, g.ApplyMove(1, Move{Action: ActionStart}))
	assert.False(t, g.IsTerminal())
	assert.Equal(t, DeckSize, total(g))
}

func TestCallUno(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Blue, 9), num(Blue, 5), num(Blue, 1)},
		{num(Blue, 3), num(Blue, 4)},
	}, num(Red, 1))

	assert.True(t, gameerr.Is(g.ApplyMove(0, Move{Action: ActionCallUno}), gameerr.IllegalMove))
	require.NoError(t, g.ApplyMove(1, Move{Action: ActionCallUno}))
	assert.Equal(t, []bool{false, true}, g.Snapshot("").UnoCalled)

	g.current = 1
	require.NoError(t, g.ApplyMove(1, Move{Action: ActionDrawCard}))
	assert.Equal(t, []bool{false, false}, g.Snapshot("").UnoCalled)
}

func TestSnapshot_HidesOtherHands(t *testing.T) {
	g := rigged(t, [][]Card{
		{num(Blue, 9), num(Blue, 5)},
		{num(Green, 3), num(Green, 4), num(Green, 5)},
	}, num(Red, 1))

	s := g.Snapshot(playerName(0))
	assert.Equal(t, []Card{num(Blue, 9), num(Blue, 5)}, s.Hand)
	assert.Equal(t, []int{2, 3}, s.HandCounts)
	assert.Equal(t, playerName(0), s.CurrentPlayer)
	require.NotNil(t, s.TopDiscard)
	assert.Equal(t, num(Red, 1), *s.TopDiscard)

	assert.Empty(t, g.Snapshot("spectator").Hand)
	assert.Len(t, g.Snapshot(playerName(1)).Hand, 3)
}

func snapshotsOf(g *Game) []Snapshot {
	out := []Snapshot{g.Snapshot("")}
	for _, name := range g.seats {
		out = append(out, g.Snapshot(name))
	}
	return out
}

func TestProperty_CardsAreConserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seats := rapid.IntRange(2, 5).Draw(rt, "seats")
		g := New(10, shuffle.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		for i := 0; i < seats; i++ {
			_, _ = g.AssignSeat(playerName(i))
		}
		if err := g.ApplyMove(0, Move{Action: ActionStart}); err != nil {
			rt.Fatalf("start: %v", err)
		}

		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if g.IsTerminal() {
				_ = g.ApplyMove(0, Move{Action: ActionStart})
			}
			seat := g.current
			if rapid.IntRange(0, 9).Draw(rt, "off_turn") == 0 {
				seat = rapid.IntRange(0, seats-1).Draw(rt, "seat")
			}
			m := Move{Action: Action(rapid.IntRange(int(ActionPlayCard), int(ActionCallUno)).Draw(rt, "action"))}
			if m.Action == ActionPlayCard && len(g.hands[seat]) > 0 {
				m.Card = g.hands[seat][rapid.IntRange(0, len(g.hands[seat])-1).Draw(rt, "card")]
				m.ChooseColor = rapid.SampledFrom(append([]Color{""}, Colors...)).Draw(rt, "color")
			}

			penalized := g.pendingDraw > 0 && seat == g.current
			before := snapshotsOf(g)
			err := g.ApplyMove(seat, m)
			if penalized && m.Action != ActionDrawCard && err == nil {
				rt.Fatalf("action %d accepted from seat %d with %d cards to draw", m.Action, seat, before[0].PendingDraw)
			}
			if err != nil && gameerr.CodeOf(err) == "" {
				rt.Fatalf("uncoded error: %v", err)
			}
			if err != nil && !reflect.DeepEqual(before, snapshotsOf(g)) {
				rt.Fatalf("rejected move %+v changed state: %v", m, err)
			}
			if n := total(g); n != DeckSize {
				rt.Fatalf("card count %d after %+v", n, m)
			}
			if g.pendingDraw > 0 && g.IsTerminal() {
				rt.Fatalf("penalty pending after game end")
			}
		}
	})
}

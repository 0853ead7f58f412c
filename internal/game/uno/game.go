package uno

import (
	"slices"

	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/shuffle"
)

// HandSize is the number of cards dealt to each seat on start.
const HandSize = 7

// MinSeats is the fewest seats a game can start with.
const MinSeats = 2

// Action selects what a Move does.
type Action int

const (
	ActionStart Action = iota
	ActionPlayCard
	ActionDrawCard
	ActionPassTurn
	ActionCallUno
	ActionRequestState
)

// Move is one card-game command. Card is used by ActionPlayCard;
// ChooseColor only when Card is wild.
type Move struct {
	Action      Action
	Card        Card
	ChooseColor Color
}

// Game is the card game state. The top of stack and discard is the last element.
//
// Invariant: once started, len(stack)+len(discard)+Σlen(hands) == DeckSize.
// Invariant: hands[i] is only ever exposed to seats[i].
type Game struct {
	maxSeats int
	src      shuffle.Source

	seats     []string
	hands     [][]Card
	unoCalled []bool

	stack   []Card
	discard []Card

	activeColor  Color
	current      int
	direction    int
	pendingDraw  int
	drewThisTurn bool

	started bool
	winner  int
}

// New returns an unstarted game accepting up to maxSeats players.
//
// Precondition: maxSeats >= MinSeats; src is non-nil.
func New(maxSeats int, src shuffle.Source) *Game {
	return &Game{maxSeats: maxSeats, src: src, direction: 1, winner: -1}
}

// AssignSeat binds name to the next seat. Seating is closed while a game is in progress.
func (g *Game) AssignSeat(name string) (int, error) {
	if seat, ok := g.SeatOf(name); ok {
		return seat, nil
	}
	if g.inProgress() {
		return -1, gameerr.New(gameerr.RoomFull, "game already in progress")
	}
	if len(g.seats) >= g.maxSeats {
		return -1, gameerr.New(gameerr.RoomFull, "all %d seats are taken", g.maxSeats)
	}
	g.seats = append(g.seats, name)
	g.hands = append(g.hands, nil)
	g.unoCalled = append(g.unoCalled, false)
	return len(g.seats) - 1, nil
}

// SeatOf returns the seat bound to name.
func (g *Game) SeatOf(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	i := slices.Index(g.seats, name)
	return i, i >= 0
}

// Players returns the seated names in seat order.
func (g *Game) Players() []string {
	return slices.Clone(g.seats)
}

// IsTerminal reports whether a seat has emptied its hand.
func (g *Game) IsTerminal() bool {
	return g.winner >= 0
}

func (g *Game) inProgress() bool {
	return g.started && g.winner < 0
}

// Reset returns the game to the unstarted state with the same seats.
func (g *Game) Reset() {
	g.hands = make([][]Card, len(g.seats))
	g.unoCalled = make([]bool, len(g.seats))
	g.stack = nil
	g.discard = nil
	g.activeColor = ""
	g.current = 0
	g.direction = 1
	g.pendingDraw = 0
	g.drewThisTurn = false
	g.started = false
	g.winner = -1
}

// ApplyMove validates and applies m for seat.
//
// Postcondition: On error the game is unchanged.
func (g *Game) ApplyMove(seat int, m Move) error {
	if seat < 0 || seat >= len(g.seats) {
		return gameerr.New(gameerr.UnknownPlayer, "seat %d is not assigned", seat)
	}
	switch m.Action {
	case ActionRequestState:
		return nil
	case ActionStart:
		return g.start()
	}

	if !g.inProgress() {
		return gameerr.New(gameerr.IllegalMove, "game is not in progress")
	}
	switch m.Action {
	case ActionPlayCard:
		return g.play(seat, m.Card, m.ChooseColor)
	case ActionDrawCard:
		return g.draw(seat)
	case ActionPassTurn:
		return g.pass(seat)
	case ActionCallUno:
		return g.callUno(seat)
	default:
		return gameerr.New(gameerr.UnknownAction, "unknown card action %d", m.Action)
	}
}

// start shuffles a fresh deck, deals, and flips the first non-wild card.
func (g *Game) start() error {
	if g.inProgress() {
		return gameerr.New(gameerr.IllegalMove, "game already in progress")
	}
	if len(g.seats) < MinSeats {
		return gameerr.New(gameerr.IllegalMove, "need at least %d players to start", MinSeats)
	}

	g.Reset()
	deck := NewDeck()
	shuffle.Shuffle(deck, g.src)
	g.stack = deck

	for i := range g.seats {
		hand := make([]Card, 0, HandSize)
		for n := 0; n < HandSize; n++ {
			hand = append(hand, g.pop())
		}
		g.hands[i] = hand
	}

	for {
		c := g.pop()
		if c.IsWild() {
			g.stack = append([]Card{c}, g.stack...)
			continue
		}
		g.discard = append(g.discard, c)
		g.activeColor = c.Color
		break
	}
	g.started = true
	return nil
}

// pop removes the top of the draw stack.
//
// Precondition: len(g.stack) > 0.
func (g *Game) pop() Card {
	c := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return c
}

// drawable is the number of cards obtainable by drawing, counting a reshuffle.
func (g *Game) drawable() int {
	n := len(g.stack)
	if len(g.discard) > 1 {
		n += len(g.discard) - 1
	}
	return n
}

// drawOne refills the stack from the discard pile when empty and pops a card.
//
// Precondition: g.drawable() > 0.
func (g *Game) drawOne() Card {
	if len(g.stack) == 0 {
		top := g.discard[len(g.discard)-1]
		rest := slices.Clone(g.discard[:len(g.discard)-1])
		shuffle.Shuffle(rest, g.src)
		g.stack = rest
		g.discard = []Card{top}
	}
	return g.pop()
}

func (g *Game) giveCards(seat, n int) {
	for i := 0; i < n && g.drawable() > 0; i++ {
		g.hands[seat] = append(g.hands[seat], g.drawOne())
	}
	if len(g.hands[seat]) > 2 {
		g.unoCalled[seat] = false
	}
}

// Top returns the top discard card.
func (g *Game) Top() (Card, bool) {
	if len(g.discard) == 0 {
		return Card{}, false
	}
	return g.discard[len(g.discard)-1], true
}

// Playable reports whether c may be played: wilds always, otherwise a match
// on the active color or the top card's rank.
func (g *Game) Playable(c Card) bool {
	if c.IsWild() {
		return true
	}
	top, ok := g.Top()
	if !ok {
		return true
	}
	return c.Color == g.activeColor || c.Rank == top.Rank
}

func (g *Game) play(seat int, c Card, chosen Color) error {
	if seat != g.current {
		return gameerr.New(gameerr.NotYourTurn, "it is %s's turn", g.seats[g.current])
	}
	if g.pendingDraw > 0 {
		return gameerr.New(gameerr.IllegalMove, "you must draw %d cards", g.pendingDraw)
	}
	idx := slices.Index(g.hands[seat], c)
	if idx < 0 {
		return gameerr.New(gameerr.IllegalMove, "%s is not in your hand", c)
	}
	next := c.Color
	if c.IsWild() {
		color, ok := ParseColor(string(chosen))
		if !ok {
			return gameerr.New(gameerr.MissingRequiredField, "choose_color is required for %s", c.Rank)
		}
		next = color
	}
	if !g.Playable(c) {
		top, _ := g.Top()
		return gameerr.New(gameerr.IllegalMove, "%s cannot be played on %s (active color %s)", c, top, g.activeColor)
	}

	g.hands[seat] = slices.Delete(g.hands[seat], idx, idx+1)
	g.discard = append(g.discard, c)
	g.activeColor = next

	if len(g.hands[seat]) == 0 {
		g.winner = seat
		g.pendingDraw = 0
		return nil
	}

	switch c.Rank {
	case Skip:
		g.advance(2)
	case Reverse:
		g.direction = -g.direction
		if len(g.seats) == 2 {
			g.advance(2)
		} else {
			g.advance(1)
		}
	case DrawTwo:
		g.advance(1)
		g.pendingDraw += 2
	case WildDrawFour:
		g.advance(1)
		g.pendingDraw += 4
	default:
		g.advance(1)
	}
	return nil
}

func (g *Game) draw(seat int) error {
	if seat != g.current {
		return gameerr.New(gameerr.NotYourTurn, "it is %s's turn", g.seats[g.current])
	}
	if g.pendingDraw > 0 {
		g.giveCards(seat, g.pendingDraw)
		g.pendingDraw = 0
		g.advance(1)
		return nil
	}
	if g.drewThisTurn {
		return gameerr.New(gameerr.IllegalMove, "you already drew this turn")
	}
	if g.drawable() == 0 {
		return gameerr.New(gameerr.IllegalMove, "no cards left to draw")
	}
	g.giveCards(seat, 1)
	g.drewThisTurn = true
	return nil
}

func (g *Game) pass(seat int) error {
	if seat != g.current {
		return gameerr.New(gameerr.NotYourTurn, "it is %s's turn", g.seats[g.current])
	}
	if g.pendingDraw > 0 {
		return gameerr.New(gameerr.IllegalMove, "you must draw %d cards", g.pendingDraw)
	}
	if !g.drewThisTurn && g.drawable() > 0 {
		return gameerr.New(gameerr.IllegalMove, "draw a card before passing")
	}
	g.advance(1)
	return nil
}

func (g *Game) callUno(seat int) error {
	if seat == g.current && g.pendingDraw > 0 {
		return gameerr.New(gameerr.IllegalMove, "you must draw %d cards", g.pendingDraw)
	}
	if len(g.hands[seat]) > 2 {
		return gameerr.New(gameerr.IllegalMove, "uno can only be called with two or fewer cards")
	}
	g.unoCalled[seat] = true
	return nil
}

// advance moves the turn steps seats in the current direction.
func (g *Game) advance(steps int) {
	n := len(g.seats)
	g.current = ((g.current+g.direction*steps)%n + n) % n
	g.drewThisTurn = false
}

package airhockey

import (
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
)

// Event names the last thing a tick produced.
type Event string

const (
	EventWaiting  Event = "waiting"
	EventUpdate   Event = "update"
	EventScore    Event = "score"
	EventGameOver Event = "game_over"
)

// Action selects what a Move does.
type Action int

const (
	ActionMovePaddle Action = iota
	ActionRequestState
)

// Move is a paddle input. Either field may be nil; at least one must be set
// for ActionMovePaddle.
type Move struct {
	Action   Action
	Position *Vec
	Velocity *Vec
}

// Game is the physics game state.
//
// Invariant: puck speed <= PuckMaxSpeed and both paddles lie inside the table
// after every Input and Tick.
type Game struct {
	table   Table
	seats   [2]string
	puck    Body
	paddles [2]Body
	score   [2]int
	ticks   uint64
	event   Event
	winner  int
}

// New returns a game on table with the puck at center and paddles at their spawns.
//
// Precondition: table.Validate() == nil.
func New(table Table) *Game {
	g := &Game{table: table, winner: -1, event: EventWaiting}
	g.placeBodies()
	return g
}

func (g *Game) placeBodies() {
	t := g.table
	g.puck = Body{Position: t.Center(), Radius: t.PuckRadius, MaxSpeed: t.PuckMaxSpeed}
	for i := range g.paddles {
		g.paddles[i] = Body{Position: t.Spawn(i), Radius: t.PaddleRadius, MaxSpeed: t.PaddleMaxSpeed}
	}
}

// Table returns the table the game is played on.
func (g *Game) Table() Table {
	return g.table
}

// AssignSeat binds name to the first free seat or returns its existing seat.
func (g *Game) AssignSeat(name string) (int, error) {
	if seat, ok := g.SeatOf(name); ok {
		return seat, nil
	}
	for i := range g.seats {
		if g.seats[i] == "" {
			g.seats[i] = name
			if g.seats[0] != "" && g.seats[1] != "" && g.event == EventWaiting {
				g.event = EventUpdate
			}
			return i, nil
		}
	}
	return -1, gameerr.New(gameerr.RoomFull, "both paddles are taken")
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

// Ready reports whether both seats are taken and the game has not ended.
func (g *Game) Ready() bool {
	return g.seats[0] != "" && g.seats[1] != "" && g.winner < 0
}

// IsTerminal reports whether a seat has reached the winning score.
func (g *Game) IsTerminal() bool {
	return g.winner >= 0
}

// ApplyMove records a paddle input for seat. The latest input wins and takes
// effect at the next tick.
//
// Postcondition: On error the game is unchanged.
func (g *Game) ApplyMove(seat int, m Move) error {
	if seat < 0 || seat > 1 || g.seats[seat] == "" {
		return gameerr.New(gameerr.UnknownPlayer, "seat %d is not assigned", seat)
	}
	switch m.Action {
	case ActionRequestState:
		return nil
	case ActionMovePaddle:
	default:
		return gameerr.New(gameerr.UnknownAction, "unknown paddle action %d", m.Action)
	}
	if m.Position == nil && m.Velocity == nil {
		return gameerr.New(gameerr.MissingRequiredField, "position or velocity is required")
	}
	if (m.Position != nil && !m.Position.IsFinite()) || (m.Velocity != nil && !m.Velocity.IsFinite()) {
		return gameerr.New(gameerr.IllegalMove, "paddle input must be finite")
	}

	p := &g.paddles[seat]
	if m.Position != nil {
		p.Position = *m.Position
		p.clampInto(g.table.Width, g.table.Height)
	}
	if m.Velocity != nil {
		p.Velocity = *m.Velocity
		p.clampSpeed()
	}
	return nil
}

// Tick advances the simulation by dt seconds and returns the resulting event.
// The second result is false when the tick was ignored because a seat is
// empty or the game is over.
func (g *Game) Tick(dt float64) (Event, bool) {
	if !g.Ready() {
		return g.event, false
	}
	t := g.table
	g.ticks++
	g.event = EventUpdate

	g.puck.integrate(dt)
	if t.Friction > 0 {
		g.puck.Velocity = g.puck.Velocity.Scale(clamp(1-t.Friction*dt, 0, 1))
	}
	for i := range g.paddles {
		g.paddles[i].integrate(dt)
		g.paddles[i].clampInto(t.Width, t.Height)
	}

	if broadPhase(t, &g.puck, &g.paddles) {
		c := narrowPhase(t, &g.puck, &g.paddles)
		switch c.Kind {
		case CollisionGoal:
			g.goal(c.Seat)
		case CollisionWall:
			reflectWall(t, &g.puck)
		case CollisionPaddle:
			reflectPaddle(t, &g.puck, &g.paddles[c.Seat])
		case CollisionNone:
		}
	}
	g.puck.clampSpeed()
	return g.event, true
}

func (g *Game) goal(scorer int) {
	g.score[scorer]++
	g.puck.Position = g.table.Center()
	g.puck.Velocity = Vec{}
	g.event = EventScore
	if g.score[scorer] >= g.table.WinningScore {
		g.winner = scorer
		g.event = EventGameOver
	}
}

// Score returns both seats' goals.
func (g *Game) Score() [2]int {
	return g.score
}

// Reset restores the opening position and clears the score, keeping seats.
func (g *Game) Reset() {
	g.placeBodies()
	g.score = [2]int{}
	g.ticks = 0
	g.winner = -1
	g.event = EventWaiting
	if g.seats[0] != "" && g.seats[1] != "" {
		g.event = EventUpdate
	}
}

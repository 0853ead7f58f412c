package uno

import "slices"

// Snapshot is one viewer's view of the card game. Hand holds only the
// viewer's own cards; everyone else is visible by count.
type Snapshot struct {
	Players       []string `json:"players"`
	CurrentIdx    int      `json:"current_idx"`
	CurrentPlayer string   `json:"current_player"`
	Direction     int      `json:"direction"`
	TopDiscard    *Card    `json:"top_discard"`
	ActiveColor   Color    `json:"active_color"`
	PendingDraw   int      `json:"pending_draw"`
	HandCounts    []int    `json:"hand_counts"`
	StackCount    int      `json:"stack_count"`
	DiscardCount  int      `json:"discard_count"`
	UnoCalled     []bool   `json:"uno_called"`
	Started       bool     `json:"started"`
	Winner        string   `json:"winner"`
	Hand          []Card   `json:"hand"`
}

// Snapshot renders the game for viewer.
func (g *Game) Snapshot(viewer string) Snapshot {
	s := Snapshot{
		Players:      g.Players(),
		CurrentIdx:   g.current,
		Direction:    g.direction,
		ActiveColor:  g.activeColor,
		PendingDraw:  g.pendingDraw,
		HandCounts:   make([]int, len(g.seats)),
		StackCount:   len(g.stack),
		DiscardCount: len(g.discard),
		UnoCalled:    slices.Clone(g.unoCalled),
		Started:      g.started,
		Hand:         []Card{},
	}
	if g.started && len(g.seats) > 0 {
		s.CurrentPlayer = g.seats[g.current]
	}
	if top, ok := g.Top(); ok {
		s.TopDiscard = &top
	}
	for i, h := range g.hands {
		s.HandCounts[i] = len(h)
	}
	if g.winner >= 0 {
		s.Winner = g.seats[g.winner]
	}
	if seat, ok := g.SeatOf(viewer); ok {
		s.Hand = slices.Clone(g.hands[seat])
		if s.Hand == nil {
			s.Hand = []Card{}
		}
	}
	return s
}

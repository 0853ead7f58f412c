package airhockey

// BodyView is the wire view of a disc.
type BodyView struct {
	Position Vec     `json:"position"`
	Velocity Vec     `json:"velocity"`
	Radius   float64 `json:"radius"`
}

// PaddleView adds ownership to a paddle's BodyView.
type PaddleView struct {
	BodyView
	Seat   int    `json:"seat"`
	Player string `json:"player"`
}

// Snapshot is the public table state. Nothing is hidden in this game.
type Snapshot struct {
	Event        Event        `json:"event"`
	Tick         uint64       `json:"tick"`
	Puck         BodyView     `json:"puck"`
	Paddles      []PaddleView `json:"paddles"`
	Score        [2]int       `json:"score"`
	Players      []string     `json:"players"`
	Width        float64      `json:"width"`
	Height       float64      `json:"height"`
	GoalWidth    float64      `json:"goal_width"`
	WinningScore int          `json:"winning_score"`
	Winner       string       `json:"winner"`
}

func viewOf(b Body) BodyView {
	return BodyView{Position: b.Position, Velocity: b.Velocity, Radius: b.Radius}
}

// Snapshot renders the table.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Event:        g.event,
		Tick:         g.ticks,
		Puck:         viewOf(g.puck),
		Paddles:      make([]PaddleView, 0, len(g.paddles)),
		Score:        g.score,
		Players:      g.Players(),
		Width:        g.table.Width,
		Height:       g.table.Height,
		GoalWidth:    g.table.GoalWidth(),
		WinningScore: g.table.WinningScore,
	}
	for i, p := range g.paddles {
		s.Paddles = append(s.Paddles, PaddleView{BodyView: viewOf(p), Seat: i, Player: g.seats[i]})
	}
	if g.winner >= 0 {
		s.Winner = g.seats[g.winner]
	}
	return s
}

package tictactoe

// Snapshot is the public view of a grid game. Nothing is hidden in this game.
type Snapshot struct {
	Board     []string `json:"board"`
	WhoseTurn string   `json:"whose_turn"`
	Status    string   `json:"status"`
	Winner    string   `json:"winner"`
	Players   []string `json:"players"`
	MoveCount int      `json:"move_count"`
}

// Snapshot renders the game for any viewer.
func (g *Game) Snapshot() Snapshot {
	board := make([]string, Cells)
	for i, v := range g.board {
		switch v {
		case MarkX:
			board[i] = "X"
		case MarkO:
			board[i] = "O"
		}
	}

	s := Snapshot{
		Board:     board,
		Players:   g.Players(),
		MoveCount: g.moves,
	}

	switch g.outcome {
	case WinX:
		s.Status = StatusFinished
		s.Winner = g.seats[0]
	case WinO:
		s.Status = StatusFinished
		s.Winner = g.seats[1]
	case Tie:
		s.Status = StatusFinished
		s.Winner = "tie"
	default:
		if g.seats[0] == "" || g.seats[1] == "" {
			s.Status = StatusWaiting
		} else {
			s.Status = StatusInProgress
		}
		s.WhoseTurn = g.seats[g.turn]
	}
	return s
}

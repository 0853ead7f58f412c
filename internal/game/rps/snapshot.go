package rps

import "fmt"

// Status values reported in snapshots.
const (
	StatusWaitingForOpponent       = "waiting_for_opponent"
	StatusWaitingForChoices        = "waiting_for_choices"
	StatusWaitingForOpponentChoice = "waiting_for_opponent_choice"
	StatusRoundComplete            = "round_complete"
)

// Snapshot is the view of a round. Choices stay hidden until the round resolves;
// before that only whether each seat has locked in is visible.
type Snapshot struct {
	Player1       string  `json:"player1"`
	Player2       string  `json:"player2"`
	Player1Choice string  `json:"player1_choice,omitempty"`
	Player2Choice string  `json:"player2_choice,omitempty"`
	LockedIn      [2]bool `json:"locked_in"`
	Status        string  `json:"status"`
	Winner        string  `json:"winner,omitempty"`
	Message       string  `json:"message"`
	Wins          [2]int  `json:"wins"`
	Draws         int     `json:"draws"`
	Rounds        int     `json:"rounds"`
}

// Snapshot renders the round for viewer. A viewer who is seated also sees
// their own pending choice.
func (g *Game) Snapshot(viewer string) Snapshot {
	s := Snapshot{
		Player1:  g.seats[0],
		Player2:  g.seats[1],
		LockedIn: [2]bool{g.choices[0] != None, g.choices[1] != None},
		Wins:     g.wins,
		Draws:    g.draws,
		Rounds:   g.rounds,
	}

	switch {
	case g.seats[0] == "" || g.seats[1] == "":
		s.Status = StatusWaitingForOpponent
		s.Message = "Waiting for another player to join."
	case g.result != Pending:
		s.Status = StatusRoundComplete
		s.Player1Choice = g.choices[0].String()
		s.Player2Choice = g.choices[1].String()
		switch g.result {
		case Seat0:
			s.Winner = g.seats[0]
			s.Message = fmt.Sprintf("%s wins this round!", g.seats[0])
		case Seat1:
			s.Winner = g.seats[1]
			s.Message = fmt.Sprintf("%s wins this round!", g.seats[1])
		default:
			s.Winner = "tie"
			s.Message = "Round ended in a tie."
		}
	case s.LockedIn[0] || s.LockedIn[1]:
		s.Status = StatusWaitingForOpponentChoice
		s.Message = "Waiting for the other player to lock in."
	default:
		s.Status = StatusWaitingForChoices
		s.Message = "Choose rock, paper, or scissors."
	}

	if g.result == Pending {
		if seat, ok := g.SeatOf(viewer); ok {
			if seat == 0 {
				s.Player1Choice = g.choices[0].String()
			} else {
				s.Player2Choice = g.choices[1].String()
			}
		}
	}
	return s
}

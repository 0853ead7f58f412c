package engine

import (
	"github.com/cory-johannsen/arcade/internal/game/airhockey"
	"github.com/cory-johannsen/arcade/internal/game/rps"
	"github.com/cory-johannsen/arcade/internal/game/tictactoe"
	"github.com/cory-johannsen/arcade/internal/game/uno"
)

// Move is a move for exactly one variant. Build one with GridMove,
// ChoiceMove, CardsMove or PhysicsMove.
type Move struct {
	kind    Kind
	grid    tictactoe.Move
	choice  rps.Move
	cards   uno.Move
	physics airhockey.Move
}

// Kind returns the variant the move is for.
func (m Move) Kind() Kind { return m.kind }

func GridMove(m tictactoe.Move) Move { return Move{kind: Grid, grid: m} }

func ChoiceMove(m rps.Move) Move { return Move{kind: Choice, choice: m} }

func CardsMove(m uno.Move) Move { return Move{kind: Cards, cards: m} }

func PhysicsMove(m airhockey.Move) Move { return Move{kind: Physics, physics: m} }

// Package uno implements the shedding card game with hidden hands.
package uno

import (
	"fmt"
	"strings"
)

// Color is a card or active color. Wild cards carry Wild.
type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
	Blue   Color = "blue"
	Wild   Color = "wild"
)

// Colors lists the four suit colors in deck order.
var Colors = []Color{Red, Yellow, Green, Blue}

// Rank is a card face.
type Rank string

const (
	Skip         Rank = "skip"
	Reverse      Rank = "reverse"
	DrawTwo      Rank = "draw_two"
	WildCard     Rank = "wild"
	WildDrawFour Rank = "wild_draw_four"
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 108

// Card is one card. Wild cards always have Color == Wild.
type Card struct {
	Color Color `json:"color"`
	Rank  Rank  `json:"rank"`
}

// IsWild reports whether the card may be played on anything.
func (c Card) IsWild() bool {
	return c.Rank == WildCard || c.Rank == WildDrawFour
}

// String renders the card as "color rank".
func (c Card) String() string {
	if c.IsWild() {
		return string(c.Rank)
	}
	return fmt.Sprintf("%s %s", c.Color, c.Rank)
}

// NumberRank returns the rank for digit n.
//
// Precondition: 0 <= n <= 9.
func NumberRank(n int) Rank {
	return Rank(string(rune('0' + n)))
}

// NewDeck returns an unshuffled 108-card deck: per color one 0, two each of
// 1-9, Skip, Reverse and DrawTwo; plus four Wild and four WildDrawFour.
//
// Postcondition: len(result) == DeckSize.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, color := range Colors {
		deck = append(deck, Card{Color: color, Rank: NumberRank(0)})
		for n := 1; n <= 9; n++ {
			deck = append(deck, Card{Color: color, Rank: NumberRank(n)}, Card{Color: color, Rank: NumberRank(n)})
		}
		for _, r := range []Rank{Skip, Reverse, DrawTwo} {
			deck = append(deck, Card{Color: color, Rank: r}, Card{Color: color, Rank: r})
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{Color: Wild, Rank: WildCard}, Card{Color: Wild, Rank: WildDrawFour})
	}
	return deck
}

// ParseColor returns the suit color named by s. Wild is not a suit color.
func ParseColor(s string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Colors {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// ParseCard normalizes a client-supplied card. Wild ranks ignore the supplied
// color; all other ranks need a suit color.
func ParseCard(color, rank string) (Card, bool) {
	r := Rank(strings.ToLower(strings.TrimSpace(rank)))
	r = Rank(strings.ReplaceAll(string(r), " ", "_"))
	switch r {
	case WildCard, WildDrawFour:
		return Card{Color: Wild, Rank: r}, true
	case Skip, Reverse, DrawTwo:
	default:
		if len(r) != 1 || r[0] < '0' || r[0] > '9' {
			return Card{}, false
		}
	}
	c, ok := ParseColor(color)
	if !ok {
		return Card{}, false
	}
	return Card{Color: c, Rank: r}, true
}

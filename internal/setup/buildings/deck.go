package buildings

import (
	"slices"
	"strings"

	"randomcarnegie.app/internal/setup/rng"
)

// Salt separates the building shuffle from other shuffles sharing a seed.
const Salt uint64 = 0

// Deck is the full set of building tokens in draw order.
type Deck []Building

// NewDeck returns both copies of every value in canonical order.
func NewDeck() Deck {
	d := make(Deck, 0, (MaxValue-MinValue+1)*Copies)
	for v := MinValue; v <= MaxValue; v++ {
		for c := 0; c < Copies; c++ {
			d = append(d, Building(v))
		}
	}
	return d
}

// Shuffled returns the deck order for seed.
func Shuffled(seed uint64) Deck {
	return Deck(rng.Permute(seed, Salt, NewDeck()))
}

// String renders the sorted values of the first 32 tokens as two-digit, comma
// separated numbers.
func (d Deck) String() string {
	head := slices.Clone(d[:min(len(d), Placed)])
	slices.Sort(head)
	var sb strings.Builder
	for i, b := range head {
		if i != 0 {
			sb.WriteByte(',')
		}
		v := b.Value()
		sb.WriteByte('0' + v/10)
		sb.WriteByte('0' + v%10)
	}
	return sb.String()
}

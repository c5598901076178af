package donations

import "randomcarnegie.app/internal/setup/rng"

// Salt separates the card shuffle from the building shuffle.
const Salt uint64 = 0x4362256e

const (
	NumCards = 20
	GridCols = 4
	GridRows = 5
)

// Card is an index into the setup card table.
type Card uint8

var cardCities = [NumCards][]City{
	{SaltLakeCity, Reno},
	{StLouis, Chicago},
	{Boston, Washington},
	{NewOrleans, Houston},
	{SanFrancisco, LosAngeles},
	{Cincinnati, Duluth, StLouis, KansasCity},
	{Albany, NewYork, Washington, Pittsburgh},
	{NewOrleans, Atlanta},
	{Boston, NewYork},
	{Chicago, Omaha},
	{Fargo, StPaul},
	{Pittsburgh, NewYork},
	{SanAntonio, Memphis, Dallas},
	{Portland, Boise, Denver, LosAngeles},
	{NewYork, Chicago, NewOrleans, SanFrancisco},
	{Pittsburgh, Boston, Albany},
	{SanFrancisco, SantaFe},
	{NewOrleans, Atlanta, Houston, Charleston},
	{SanFrancisco, Denver},
	{KansasCity, Chicago},
}

// Cities returns the cities printed on the card, in card order.
func (c Card) Cities() []City { return cardCities[c] }

// Cell is the donation space the card points at.
func (c Card) Cell() (col, row int) {
	return int(c) / GridRows, int(c) % GridRows
}

// Deck is the card draw order.
type Deck []Card

func NewDeck() Deck {
	d := make(Deck, NumCards)
	for i := range d {
		d[i] = Card(i)
	}
	return d
}

// Shuffled returns the card order for seed.
func Shuffled(seed uint64) Deck {
	return Deck(rng.Permute(seed, Salt, NewDeck()))
}

// Package setup derives a complete game setup from a seed and options.
package setup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"randomcarnegie.app/internal/setup/buildings"
	"randomcarnegie.app/internal/setup/donations"
)

// Setup is everything a renderer needs for one (seed, options) pair.
type Setup struct {
	Seed      uint64                           `json:"seed"`
	Options   Options                          `json:"options"`
	Buildings string                           `json:"buildings"`
	Layout    buildings.Layout                 `json:"layout"`
	Cells     [buildings.Rows][]buildings.Cell `json:"cells"`
	Donations *Donations                       `json:"donations,omitempty"`
	Digest    string                           `json:"digest"`
}

// Donations is present only for tiers with a non-zero donation budget.
type Donations struct {
	Budget  uint32                                       `json:"budget"`
	Grid    [donations.GridRows][donations.GridCols]bool `json:"grid"`
	Blocked []donations.Blocked                          `json:"blocked"`
}

// Generate validates opts and builds the setup for seed.
func Generate(seed uint64, opts Options) (Setup, error) {
	if err := opts.Validate(); err != nil {
		return Setup{}, err
	}

	deck := buildings.Shuffled(seed)
	layout := buildings.Place(deck, opts.Buildings())

	s := Setup{
		Seed:      seed,
		Options:   opts,
		Buildings: deck.String(),
		Layout:    layout,
		Cells:     layout.Cells(opts.Players),
	}

	if budget := opts.Players.DonationBudget(); budget > 0 {
		res := donations.Restrict(donations.Shuffled(seed), budget)
		s.Donations = &Donations{
			Budget:  budget,
			Grid:    res.Grid,
			Blocked: res.Blocked(),
		}
	}

	digest, err := s.ComputeDigest()
	if err != nil {
		return Setup{}, err
	}
	s.Digest = digest
	return s, nil
}

// ComputeDigest hashes the canonical JSON of the setup without its digest.
func (s Setup) ComputeDigest() (string, error) {
	s.Digest = ""
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (s Setup) SeedString() string { return FormatSeed(s.Seed) }

// Normalize replaces nil slices with empty ones. Decoders such as gob drop
// empty slices, which would otherwise change the canonical JSON.
func (s *Setup) Normalize() {
	for i := range s.Layout.Rows {
		if s.Layout.Rows[i].Entries == nil {
			s.Layout.Rows[i].Entries = []buildings.Entry{}
		}
	}
	for i := range s.Cells {
		if s.Cells[i] == nil {
			s.Cells[i] = []buildings.Cell{}
		}
	}
	if s.Donations != nil && s.Donations.Blocked == nil {
		s.Donations.Blocked = []donations.Blocked{}
	}
}

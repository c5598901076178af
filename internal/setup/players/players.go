// Package players maps a player-count tier to the building visibility mask and
// the donation budget.
package players

import (
	"errors"
	"fmt"
)

var ErrInvalidOption = errors.New("invalid players option")

type Players uint8

const (
	All   Players = 0
	Two   Players = 2
	Three Players = 3
	Four  Players = 4
)

// Default matches the four-player game.
const Default = Four

// Threshold is the bit mask an insertion index must not fully cover to stay visible.
func (p Players) Threshold() uint32 {
	switch p {
	case Two:
		return 1
	case Three:
		return 3
	case Four:
		return 7
	default:
		return 32
	}
}

// Visible reports whether the building copy placed at insertion index idx is
// shown for this tier. With All the threshold exceeds every valid index.
func (p Players) Visible(idx uint32) bool {
	t := p.Threshold()
	return idx&t != t
}

// DonationBudget is the number of blocking disks placed on donations and cities.
func (p Players) DonationBudget() uint32 {
	switch p {
	case Two:
		return 18
	case Three:
		return 9
	default:
		return 0
	}
}

func (p Players) Valid() bool {
	switch p {
	case All, Two, Three, Four:
		return true
	}
	return false
}

func (p Players) String() string {
	switch p {
	case All:
		return "all"
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	}
	return fmt.Sprintf("Players(%d)", uint8(p))
}

func Parse(s string) (Players, error) {
	switch s {
	case "all", "All", "0":
		return All, nil
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4", "":
		return Four, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOption, s)
}

func (p Players) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOption, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Players) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

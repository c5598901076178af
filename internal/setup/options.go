package setup

import (
	"errors"
	"fmt"

	"randomcarnegie.app/internal/setup/buildings"
	"randomcarnegie.app/internal/setup/players"
)

var ErrInvalidOptions = errors.New("invalid setup options")

// Options is the resolved configuration for one setup.
type Options struct {
	Tiles     buildings.Tiles     `json:"tiles" yaml:"tiles"`
	Limit     buildings.Limit     `json:"limit" yaml:"limit"`
	Permanent buildings.Permanent `json:"permanent" yaml:"permanent"`
	Players   players.Players     `json:"players" yaml:"players"`
}

func DefaultOptions() Options {
	b := buildings.DefaultOptions()
	return Options{
		Tiles:     b.Tiles,
		Limit:     b.Limit,
		Permanent: b.Permanent,
		Players:   players.Default,
	}
}

func (o Options) Buildings() buildings.Options {
	return buildings.Options{Tiles: o.Tiles, Limit: o.Limit, Permanent: o.Permanent}
}

func (o Options) Validate() error {
	if err := o.Buildings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if !o.Players.Valid() {
		return fmt.Errorf("%w: players %d", ErrInvalidOptions, uint8(o.Players))
	}
	return nil
}

// ParseOptions resolves text values, leaving empty fields at their defaults.
func ParseOptions(tiles, limit, permanent, playerCount string) (Options, error) {
	o := DefaultOptions()
	var err error
	if tiles != "" {
		if o.Tiles, err = buildings.ParseTiles(tiles); err != nil {
			return o, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	if limit != "" {
		if o.Limit, err = buildings.ParseLimit(limit); err != nil {
			return o, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	if permanent != "" {
		if o.Permanent, err = buildings.ParsePermanent(permanent); err != nil {
			return o, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	if playerCount != "" {
		if o.Players, err = players.Parse(playerCount); err != nil {
			return o, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	return o, nil
}

package buildings

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidOption = errors.New("invalid buildings option")

// Tiles selects which department tiles take part in the layout.
type Tiles uint8

const (
	Base Tiles = iota
	Both
	Expansion
)

func (t Tiles) Valid() bool { return t <= Expansion }

func (t Tiles) String() string {
	switch t {
	case Base:
		return "base"
	case Both:
		return "both"
	case Expansion:
		return "expansion"
	}
	return fmt.Sprintf("Tiles(%d)", uint8(t))
}

func ParseTiles(s string) (Tiles, error) {
	switch s {
	case "base", "":
		return Base, nil
	case "both":
		return Both, nil
	case "expansion":
		return Expansion, nil
	}
	return 0, fmt.Errorf("%w: tiles %q", ErrInvalidOption, s)
}

func (t Tiles) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: tiles %d", ErrInvalidOption, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Tiles) UnmarshalText(b []byte) error {
	v, err := ParseTiles(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Limit caps the number of distinct departments in a row.
type Limit uint8

const (
	LimitFour Limit = 4
	LimitFive Limit = 5
	LimitSix  Limit = 6
	LimitAll  Limit = 8
)

func (l Limit) Valid() bool {
	switch l {
	case LimitFour, LimitFive, LimitSix, LimitAll:
		return true
	}
	return false
}

func (l Limit) String() string { return strconv.Itoa(int(l)) }

func ParseLimit(s string) (Limit, error) {
	if s == "" {
		return LimitFour, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Limit(n).Valid() {
		return 0, fmt.Errorf("%w: limit %q", ErrInvalidOption, s)
	}
	return Limit(n), nil
}

func (l Limit) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: limit %d", ErrInvalidOption, uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *Limit) UnmarshalText(b []byte) error {
	v, err := ParseLimit(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Permanent bounds how many distinct permanent departments each row holds.
type Permanent uint8

const (
	Zero Permanent = iota
	ZeroPlus
	One
	OnePlus
	Two
)

func (p Permanent) Valid() bool { return p <= Two }

// Min and Max return the inclusive bounds per row.
func (p Permanent) Min() int {
	switch p {
	case One, OnePlus:
		return 1
	case Two:
		return 2
	}
	return 0
}

func (p Permanent) Max() int {
	switch p {
	case Zero:
		return 0
	case One:
		return 1
	}
	return 2
}

func (p Permanent) String() string {
	switch p {
	case Zero:
		return "0"
	case ZeroPlus:
		return "0+"
	case One:
		return "1"
	case OnePlus:
		return "1+"
	case Two:
		return "2"
	}
	return fmt.Sprintf("Permanent(%d)", uint8(p))
}

func ParsePermanent(s string) (Permanent, error) {
	switch s {
	case "0":
		return Zero, nil
	case "0+":
		return ZeroPlus, nil
	case "1", "":
		return One, nil
	case "1+":
		return OnePlus, nil
	case "2":
		return Two, nil
	}
	return 0, fmt.Errorf("%w: permanent %q", ErrInvalidOption, s)
}

func (p Permanent) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: permanent %d", ErrInvalidOption, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Permanent) UnmarshalText(b []byte) error {
	v, err := ParsePermanent(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Options controls a layout pass.
type Options struct {
	Tiles     Tiles     `json:"tiles" yaml:"tiles"`
	Limit     Limit     `json:"limit" yaml:"limit"`
	Permanent Permanent `json:"permanent" yaml:"permanent"`
}

func DefaultOptions() Options {
	return Options{Tiles: Base, Limit: LimitFour, Permanent: One}
}

func (o Options) Validate() error {
	if !o.Tiles.Valid() {
		return fmt.Errorf("%w: tiles %d", ErrInvalidOption, uint8(o.Tiles))
	}
	if !o.Limit.Valid() {
		return fmt.Errorf("%w: limit %d", ErrInvalidOption, uint8(o.Limit))
	}
	if !o.Permanent.Valid() {
		return fmt.Errorf("%w: permanent %d", ErrInvalidOption, uint8(o.Permanent))
	}
	return nil
}

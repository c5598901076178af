// Package buildings places the department building tokens into the four board rows.
package buildings

// Building is a token value in [1,32]. Two copies of every value exist.
type Building uint8

const (
	MinValue = 1
	MaxValue = 32
	Copies   = 2

	// Rows on the board, slots per row, and tokens placed per game.
	Rows     = 4
	RowSlots = 8
	Placed   = Rows * RowSlots
)

func (b Building) Value() uint8 { return uint8(b) }

func (b Building) Row() int {
	return int(((b - 1) >> 2) & 3)
}

// Accent reports whether the building is a permanent ("blue") department.
func (b Building) Accent() bool {
	v := b
	if v <= 16 {
		v--
	}
	return v&3 == 3
}

func (b Building) Expansion() bool { return b >= 17 }

func (b Building) In(t Tiles) bool {
	switch t {
	case Base:
		return b <= 16
	case Expansion:
		return b >= 17
	default:
		return true
	}
}

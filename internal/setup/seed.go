package setup

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"strings"
)

// SeedSpace bounds shareable seeds to eight decimal digits.
const SeedSpace = 100000000

var ErrInvalidSeed = errors.New("invalid seed")

// ParseSeed accepts a decimal seed, optionally prefixed with '#' as in share
// links, and reduces it into the seed space.
func ParseSeed(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSeed)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeed, s)
	}
	return v % SeedSpace, nil
}

func FormatSeed(seed uint64) string {
	return fmt.Sprintf("%08d", seed)
}

// RandomSeed draws a fresh shareable seed.
func RandomSeed() uint64 {
	return uint64(rand.Uint32()) % SeedSpace
}

// ShareURL is the link that reproduces seed on the web client.
func ShareURL(base string, seed uint64) string {
	return strings.TrimRight(base, "/") + "/#" + FormatSeed(seed)
}

package rng

import (
	"cmp"
	"math/bits"
	"slices"
)

// Bounded returns a uniform value in [0, n) using the widening multiply with a
// conservative rejection zone. n must be > 0.
func (m *Mcg) Bounded(n uint32) uint32 {
	zone := (n << bits.LeadingZeros32(n)) - 1
	for {
		hi, lo := bits.Mul32(m.Uint32(), n)
		if lo <= zone {
			return hi
		}
	}
}

// Shuffle permutes xs in place with a descending Fisher-Yates pass.
func Shuffle[T any](m *Mcg, xs []T) {
	for i := len(xs) - 1; i >= 1; i-- {
		j := int(m.Bounded(uint32(i + 1)))
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Permute returns a shuffled copy of xs. The copy is sorted first so the result
// depends only on (seed, salt) and the multiset of elements.
func Permute[T cmp.Ordered](seed, salt uint64, xs []T) []T {
	out := slices.Clone(xs)
	slices.Sort(out)
	Shuffle(SeedFromU64(seed^salt), out)
	return out
}

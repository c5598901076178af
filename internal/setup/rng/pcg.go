// Package rng implements the Mcg128Xsl64 generator (also known as Pcg64Mcg) and the
// Fisher-Yates shuffle used to derive setups from a seed.
//
// The exact bit stream matters: shared seeds only reproduce a setup when every
// implementation uses this generator family, seeding procedure and shuffle.
package rng

import "math/bits"

// 128-bit multiplier, split into halves.
const (
	mulHi = 0x2360ED051FC65DA4
	mulLo = 0x4385DF649FCCF645
)

// PCG32 constants used by SeedFromU64 to expand a u64 into the 16-byte seed.
const (
	pcg32Mul = 6364136223846793005
	pcg32Inc = 11634580027462260723
)

// Mcg is a 128-bit multiplicative congruential generator with XSL-RR output.
type Mcg struct {
	hi, lo uint64
}

// New builds a generator from a raw 128-bit state. The low bit is forced on.
func New(hi, lo uint64) *Mcg {
	return &Mcg{hi: hi, lo: lo | 1}
}

// FromSeed reads the seed as a little-endian u128.
func FromSeed(seed [16]byte) *Mcg {
	var lo, hi uint64
	for i := 7; i >= 0; i-- {
		lo = lo<<8 | uint64(seed[i])
		hi = hi<<8 | uint64(seed[i+8])
	}
	return New(hi, lo)
}

// SeedFromU64 expands state into a full seed with four PCG32 outputs.
func SeedFromU64(state uint64) *Mcg {
	var seed [16]byte
	for chunk := 0; chunk < 4; chunk++ {
		state = state*pcg32Mul + pcg32Inc
		xorshifted := uint32(((state >> 18) ^ state) >> 27)
		rot := int(state >> 59)
		x := bits.RotateLeft32(xorshifted, -rot)
		seed[chunk*4] = byte(x)
		seed[chunk*4+1] = byte(x >> 8)
		seed[chunk*4+2] = byte(x >> 16)
		seed[chunk*4+3] = byte(x >> 24)
	}
	return FromSeed(seed)
}

// Uint64 advances the state and returns the next output. It also makes Mcg a
// math/rand/v2 Source.
func (m *Mcg) Uint64() uint64 {
	carry, lo := bits.Mul64(m.lo, mulLo)
	hi := carry + m.lo*mulHi + m.hi*mulLo
	m.hi, m.lo = hi, lo

	rot := int(hi >> 58)
	return bits.RotateLeft64(hi^lo, -rot)
}

// Uint32 truncates the next 64-bit output.
func (m *Mcg) Uint32() uint32 {
	return uint32(m.Uint64())
}

// State returns the raw generator state.
func (m *Mcg) State() (hi, lo uint64) {
	return m.hi, m.lo
}

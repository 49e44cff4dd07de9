// Package bitio implements the bit-addressable stream shared by the bit-level integer codecs.
//
// Bits are written most-significant first: the first bit written is the high bit of the
// first byte. The final byte is zero-padded. Writer accumulates up to 64 bits in a register
// and flushes whole words, the same way a Gorilla encoder buffers its control bits.
//
// Besides raw fixed-width fields the package provides the three universal codes used by
// the codecs:
//
//   - Unary: n is written as n zero bits followed by a single one bit.
//   - Gamma: Elias-gamma of v+1, so zero is representable.
//   - Zeta(k): Boldi-Vigna zeta code of v+1 with shrinking factor k.
package bitio

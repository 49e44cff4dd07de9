// Package codec compresses sequences of non-negative 32-bit integers.
//
// Every codec implements the same Codec contract, so a caller can swap the
// encoding of a row without touching the code around it. Two families are provided:
//
// Bit-level entropy codes (MSB-first bit stream, last byte zero-padded):
//   - Fixed(b): b bits per value
//   - Rice: Golomb-Rice with a per-block parameter from the mean
//   - Gamma and Zeta(k): Elias-gamma and Boldi-Vigna zeta codes of v+1
//   - Elias-Fano, plain and integrated
//
// Byte-aligned block codes ([word count][little-endian words]):
//   - FOR+VB, plain and integrated: 128-value frame-of-reference sub-blocks with
//     a variable-byte fallback and tail
//   - Stream-VByte: separate 2-bit length and data streams
//   - Simple-9: selector-driven word packing
//   - VByte: base-128 variable-byte
//
// Raw stores 4 bytes per value and serves as the baseline.
//
// # Gaps and self-integrating codecs
//
// Most codecs are tuned for small numbers. Callers holding a strictly ascending
// id list apply Delta first, which turns it into gaps minus one, and Undelta
// after decoding. Codecs reporting SelfIntegrating() take the ascending list
// directly and do their own gap handling.
//
//	c := codec.MustNew(format.CodecGamma)
//	ids := []uint32{3, 4, 9, 100}
//	codec.Delta(ids) // [3 0 4 90]
//	block, err := c.Compress(ids, 0, len(ids))
//	...
//	out := make([]uint32, 4)
//	_, err = c.Decompress(block, out, 0, len(out))
//	codec.Undelta(out) // [3 4 9 100]
//
// Blocks do not always carry their value count; the caller stores it next to the block.
//
// All codecs are safe for concurrent use. Each instance counts bytes in and out
// in its Stats.
package codec

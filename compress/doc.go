// Package compress wraps general-purpose compressors used for the snapshot envelope.
//
// A container snapshot is a sequence of already compressed rows. Rows compressed
// by a bit-level codec rarely shrink further, but byte-aligned codecs and the
// per-row length prefixes often do, so the snapshot payload can optionally be
// passed through one more algorithm:
//   - None: stored as-is
//   - Zstd: best ratio
//   - S2: fast, moderate ratio
//   - LZ4: fastest decompression
//
// Every algorithm appends to a caller-provided buffer, which lets the snapshot
// writer reuse pooled buffers across calls:
//
//	alg, _ := compress.New(format.CompressionS2)
//	packed, err := alg.Compress(buf[:0], payload)
//	...
//	payload, err = alg.Decompress(nil, packed, rawSize)
//
// Decompress takes the raw size recorded by the writer and rejects data that
// decodes to a different length.
//
// # Build tags
//
// Zstd uses github.com/klauspost/compress/zstd by default. Building with
// -tags cgozstd switches to github.com/valyala/gozstd.
package compress

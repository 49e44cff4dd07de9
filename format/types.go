package format

import "strings"

type (
	// CodecType identifies an integer sequence codec.
	CodecType uint8
	// CompressionType identifies the general-purpose compressor applied to snapshot payloads.
	CompressionType uint8
)

const (
	CodecRaw                 CodecType = 0x01 // CodecRaw stores 4 little-endian bytes per value.
	CodecFixed               CodecType = 0x02 // CodecFixed stores every value in a fixed number of bits.
	CodecRice                CodecType = 0x03 // CodecRice is Golomb-Rice coding with a per-block parameter.
	CodecGamma               CodecType = 0x04 // CodecGamma is Elias-gamma coding.
	CodecZeta                CodecType = 0x05 // CodecZeta is Boldi-Vigna zeta(k) coding.
	CodecEliasFano           CodecType = 0x06 // CodecEliasFano is Elias-Fano over delta-transformed input.
	CodecIntegratedEliasFano CodecType = 0x07 // CodecIntegratedEliasFano is Elias-Fano over ascending input.
	CodecFORVB               CodecType = 0x08 // CodecFORVB is frame-of-reference with variable-byte fallback.
	CodecIntegratedFORVB     CodecType = 0x09 // CodecIntegratedFORVB is differential frame-of-reference with variable-byte fallback.
	CodecStreamVByte         CodecType = 0x0A // CodecStreamVByte is the stream-vbyte control/data layout.
	CodecSimple9             CodecType = 0x0B // CodecSimple9 is selector-based word packing.
	CodecVByte               CodecType = 0x0C // CodecVByte is plain variable-byte coding.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

var codecNames = map[CodecType]string{
	CodecRaw:                 "raw",
	CodecFixed:               "fixed",
	CodecRice:                "rice",
	CodecGamma:               "gamma",
	CodecZeta:                "zeta",
	CodecEliasFano:           "ef",
	CodecIntegratedEliasFano: "ief",
	CodecFORVB:               "forvb",
	CodecIntegratedFORVB:     "iforvb",
	CodecStreamVByte:         "streamvbyte",
	CodecSimple9:             "simple9",
	CodecVByte:               "vbyte",
}

// CodecTypes returns all known codec types in ascending order.
func CodecTypes() []CodecType {
	types := make([]CodecType, 0, len(codecNames))
	for t := CodecRaw; t <= CodecVByte; t++ {
		types = append(types, t)
	}

	return types
}

func (c CodecType) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}

	return "unknown"
}

// ParseCodecType resolves a codec name as printed by CodecType.String.
// Matching is case-insensitive; "eliasfano" and "integrated-eliasfano" are accepted aliases.
func ParseCodecType(name string) (CodecType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "eliasfano", "elias-fano":
		return CodecEliasFano, true
	case "integrated-eliasfano", "integrated-elias-fano":
		return CodecIntegratedEliasFano, true
	}

	for t, n := range codecNames {
		if n == name {
			return t, true
		}
	}

	return 0, false
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType resolves a compression name, case-insensitively.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

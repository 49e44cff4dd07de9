package codec

import "errors"

var errSimple9Selector = errors.New("invalid simple-9 selector")

// simple9Layout describes how one selector splits the 28 payload bits.
type simple9Layout struct {
	count int
	width int
	mask  uint32
}

// simple9Layouts is indexed by selector. Selector simple9Escape stores one raw
// 32-bit value in the following word.
var simple9Layouts = [...]simple9Layout{
	{28, 1, 1<<1 - 1},
	{14, 2, 1<<2 - 1},
	{9, 3, 1<<3 - 1},
	{7, 4, 1<<4 - 1},
	{5, 5, 1<<5 - 1},
	{4, 7, 1<<7 - 1},
	{3, 9, 1<<9 - 1},
	{2, 14, 1<<14 - 1},
	{1, 28, 1<<28 - 1},
}

const (
	simple9Escape      = len(simple9Layouts)
	simple9SelectorBit = 28
)

// simple9Scheme packs as many values as fit into each 32-bit word: the top
// four bits select a layout from simple9Layouts, the low 28 bits hold the values.
// The last word of a block may be only partly filled; the decoder knows the
// value count and stops early.
type simple9Scheme struct{}

func (simple9Scheme) encode(dst []uint32, values []uint32) ([]uint32, error) {
	pos := 0
	for pos < len(values) {
		selector, count := simple9Pick(values[pos:])
		if selector == simple9Escape {
			dst = append(dst, uint32(simple9Escape)<<simple9SelectorBit, values[pos])
			pos++

			continue
		}

		layout := simple9Layouts[selector]
		word := uint32(selector) << simple9SelectorBit
		for j, v := range values[pos : pos+count] {
			word |= v << (j * layout.width)
		}
		dst = append(dst, word)
		pos += count
	}

	return dst, nil
}

// simple9Pick returns the densest selector whose values all fit, and how many values it takes.
func simple9Pick(values []uint32) (int, int) {
	for selector, layout := range simple9Layouts {
		count := min(layout.count, len(values))
		fits := true
		for _, v := range values[:count] {
			if v > layout.mask {
				fits = false
				break
			}
		}
		if fits {
			return selector, count
		}
	}

	return simple9Escape, 1
}

func (simple9Scheme) decode(words []uint32, out []uint32) error {
	pos := 0
	for i := 0; i < len(out); {
		if pos >= len(words) {
			return errShortStream
		}
		word := words[pos]
		pos++

		selector := int(word >> simple9SelectorBit)
		if selector == simple9Escape {
			if pos >= len(words) {
				return errShortStream
			}
			out[i] = words[pos]
			pos++
			i++

			continue
		}
		if selector > simple9Escape {
			return errSimple9Selector
		}

		layout := simple9Layouts[selector]
		count := min(layout.count, len(out)-i)
		for j := range count {
			out[i+j] = (word >> (j * layout.width)) & layout.mask
		}
		i += count
	}

	return nil
}

package codec

// Delta replaces a strictly ascending sequence by its gaps, in place.
//
// seq[0] keeps its absolute value and seq[i] becomes seq[i]-seq[i-1]-1, so a run
// of consecutive ids turns into zeros. The result is undefined for input that is
// not strictly ascending.
func Delta(seq []uint32) {
	for i := len(seq) - 1; i > 0; i-- {
		seq[i] = seq[i] - seq[i-1] - 1
	}
}

// Undelta reverses Delta in place.
func Undelta(seq []uint32) {
	for i := 1; i < len(seq); i++ {
		seq[i] = seq[i] + seq[i-1] + 1
	}
}

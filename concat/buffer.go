package concat

// bitBuffer is a minimal Fielder backed by a plain bool slice: the
// scratch buffer Run allocates internally when it needs a fresh
// same-width Fielder that isn't any caller's operand, independent of
// whatever concrete type the caller's own Fielders happen to be.
type bitBuffer struct {
	bits []bool
}

func newBitBuffer(bw int) *bitBuffer {
	return &bitBuffer{bits: make([]bool, bw)}
}

func (b *bitBuffer) BW() int { return len(b.bits) }

func (b *bitBuffer) GetBit(i int) bool { return b.bits[i] }

func (b *bitBuffer) SetBit(i int, v bool) { b.bits[i] = v }

package bits

// Resize copies rhs into b, truncating or extending as needed. If
// extending, every new high bit is set to extension (true for ones,
// false for zeros). This is the shared
// implementation behind ZeroResize and SignResize.
func (b *Bits) Resize(rhs *Bits, extension bool) {
	n := min(b.bw, rhs.bw)
	for i := 0; i < n; i++ {
		b.SetBit(i, rhs.GetBit(i))
	}
	for i := n; i < b.bw; i++ {
		b.SetBit(i, extension)
	}
}

// ZeroResize copies rhs into b, filling any new high bits with 0.
func (b *Bits) ZeroResize(rhs *Bits) {
	b.Resize(rhs, false)
}

// SignResize copies rhs into b, filling any new high bits with rhs's
// own sign bit (the msb of rhs before resizing), treating rhs as
// signed. This must stay a distinct code path from ZeroResize: an
// earlier revision of the reference implementation had SignResize
// silently fall through to the zero-filling behavior, which is the
// bug this implementation avoids by keeping the extension bit
// explicit.
func (b *Bits) SignResize(rhs *Bits) {
	b.Resize(rhs, rhs.Msb())
}

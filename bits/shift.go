package bits

import "github.com/tindar/bitwidth/digit"

// digitShl shifts digits left by whole digit positions, zero-filling
// from the bottom.
func digitShl(d []digit.Digit, digits int) {
	n := len(d)
	if digits >= n {
		for i := range d {
			d[i] = 0
		}
		return
	}
	for i := n - 1; i >= digits; i-- {
		d[i] = d[i-digits]
	}
	for i := 0; i < digits; i++ {
		d[i] = 0
	}
}

// digitShr shifts digits right by whole digit positions, zero-filling
// from the top.
func digitShr(d []digit.Digit, digits int) {
	n := len(d)
	if digits >= n {
		for i := range d {
			d[i] = 0
		}
		return
	}
	for i := 0; i < n-digits; i++ {
		d[i] = d[i+digits]
	}
	for i := n - digits; i < n; i++ {
		d[i] = 0
	}
}

// subdigitShl shifts d left by s bits (0 < s < BitsPerDigit), zero-filling
// from the bottom.
func subdigitShl(d []digit.Digit, s int) {
	if s == 0 {
		return
	}
	for i := len(d) - 1; i > 0; i-- {
		d[i] = (d[i] << s) | (d[i-1] >> (digit.BitsPerDigit - s))
	}
	d[0] <<= s
}

// subdigitShr shifts d right by s bits (0 < s < BitsPerDigit). If
// signExtend is true, the vacated high bits are filled with 1 instead
// of 0 (arithmetic shift).
func subdigitShr(d []digit.Digit, s int, signExtend bool) {
	if s == 0 {
		return
	}
	n := len(d)
	for i := 0; i < n-1; i++ {
		d[i] = (d[i] >> s) | (d[i+1] << (digit.BitsPerDigit - s))
	}
	if signExtend {
		d[n-1] = (d[n-1] >> s) | (digit.Max << (digit.BitsPerDigit - s))
	} else {
		d[n-1] >>= s
	}
}

// Shl shifts b left by s bits, zero-filling from the bottom. Reports
// ok=false (leaving b unchanged) if s >= bw.
func (b *Bits) Shl(s int) (ok bool) {
	if s < 0 || s >= b.bw {
		return false
	}
	if s == 0 {
		return true
	}
	dshift, sshift := s/digit.BitsPerDigit, s%digit.BitsPerDigit
	digitShl(b.digits, dshift)
	subdigitShl(b.digits, sshift)
	b.ClearUnusedBits()
	return true
}

// Lshr shifts b right (logical, zero-fill) by s bits. Reports
// ok=false (leaving b unchanged) if s >= bw.
func (b *Bits) Lshr(s int) (ok bool) {
	if s < 0 || s >= b.bw {
		return false
	}
	if s == 0 {
		return true
	}
	dshift, sshift := s/digit.BitsPerDigit, s%digit.BitsPerDigit
	digitShr(b.digits, dshift)
	subdigitShr(b.digits, sshift, false)
	return true
}

// Ashr shifts b right (arithmetic, sign-extending) by s bits. Reports
// ok=false (leaving b unchanged) if s >= bw.
func (b *Bits) Ashr(s int) (ok bool) {
	if s < 0 || s >= b.bw {
		return false
	}
	sign := b.Msb()
	if s == 0 {
		return true
	}
	if sign {
		b.digits[len(b.digits)-1] |= ^b.lastMask()
	}
	dshift, sshift := s/digit.BitsPerDigit, s%digit.BitsPerDigit
	digitShr(b.digits, dshift)
	if sign {
		fillFromTop(b.digits, dshift)
	}
	subdigitShr(b.digits, sshift, sign)
	b.ClearUnusedBits()
	return true
}

// fillFromTop sets the top `digits` digits to all-ones, used to
// sign-extend after a whole-digit right shift.
func fillFromTop(d []digit.Digit, digits int) {
	n := len(d)
	for i := n - digits; i < n; i++ {
		if i >= 0 {
			d[i] = digit.Max
		}
	}
}

// rotlImpl rotates the bits of b left by s positions, wrapping around bw.
// Caller guarantees 0 <= s < bw.
func (b *Bits) rotlImpl(s int) {
	if s == 0 {
		return
	}
	tmp := b.Clone()
	b.Zero()
	// newBit[i] = tmp.bit[(i - s) mod bw]
	for i := 0; i < b.bw; i++ {
		src := i - s
		src %= b.bw
		if src < 0 {
			src += b.bw
		}
		if tmp.GetBit(src) {
			b.SetBit(i, true)
		}
	}
}

// RotL rotates b left by s bits, wrapping around bw. Reports ok=false
// (leaving b unchanged) if s is out of [0, bw).
func (b *Bits) RotL(s int) (ok bool) {
	if s < 0 || s >= b.bw {
		return false
	}
	b.rotlImpl(s)
	return true
}

// RotR rotates b right by s bits, wrapping around bw. Reports
// ok=false (leaving b unchanged) if s is out of [0, bw).
func (b *Bits) RotR(s int) (ok bool) {
	if s < 0 || s >= b.bw {
		return false
	}
	if s == 0 {
		return true
	}
	b.rotlImpl(b.bw - s)
	return true
}

// Rev reverses the bit order of b (bit i <-> bit bw-1-i).
func (b *Bits) Rev() {
	tmp := b.Clone()
	for i := 0; i < b.bw; i++ {
		b.SetBit(i, tmp.GetBit(b.bw-1-i))
	}
}

// Funnel performs a power-of-two-width funnel shift: src (of width 2w)
// supplies a window of width w starting at bit position s (0 <= s < w)
// of the doubled value, written to dst (of width w). s is itself a
// Bits value of width log2(w). Returns ok=false if widths don't match
// the 2w/w/log2(w) relationship.
func Funnel(dst *Bits, src *Bits, s *Bits) bool {
	w := dst.bw
	if src.bw != 2*w || s.bw >= 63 || 1<<uint(s.bw) != w {
		return false
	}
	shiftAmt := 0
	for i := 0; i < s.bw; i++ {
		if s.GetBit(i) {
			shiftAmt |= 1 << i
		}
	}
	if shiftAmt >= w {
		return false
	}
	tmp := src.Clone()
	tmp.Lshr(shiftAmt)
	for i := 0; i < w; i++ {
		dst.SetBit(i, tmp.GetBit(i))
	}
	return true
}

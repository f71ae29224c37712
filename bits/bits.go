// Package bits implements the width-generic bit-string primitive that
// every owning container in package awi and every mimicking type in
// package dag is built from: Bits, a fat reference over a caller-owned
// slice of digits plus a bitwidth.
//
// A Bits value never owns its storage. Callers that need an owning
// container use package awi; Bits itself only ever borrows.
package bits

import (
	"github.com/tindar/bitwidth/digit"
)

// Bits is a fat reference: a borrowed slice of digits together with the
// number of significant bits in that slice. The last digit may have
// high bits beyond bw that are unused; every operation here maintains
// the discipline that those unused bits are always zero between calls
// (the "cleared unused bits" invariant), so comparisons, counts, and
// hashes can treat the digit slice directly without masking first.
type Bits struct {
	digits []digit.Digit
	bw     int
}

// NewBitsView constructs a Bits view over caller-owned storage. The
// storage is not copied: mutations through the returned Bits write
// directly into storage. Panics if storage is too short for bw, or if
// bw is not positive.
func NewBitsView(storage []digit.Digit, bw int) *Bits {
	if bw <= 0 {
		panic("bits: bitwidth must be positive")
	}
	n := DigitsForBits(bw)
	if len(storage) < n {
		panic("bits: storage too short for bitwidth")
	}
	b := &Bits{digits: storage[:n], bw: bw}
	b.ClearUnusedBits()
	return b
}

// DigitsForBits returns the number of digits needed to hold bw bits.
func DigitsForBits(bw int) int {
	return (bw + digit.BitsPerDigit - 1) / digit.BitsPerDigit
}

// BW returns the bitwidth.
func (b *Bits) BW() int { return b.bw }

// Len returns the number of digits backing b.
func (b *Bits) Len() int { return len(b.digits) }

// Unused returns the number of unused high bits in the last digit.
func (b *Bits) Unused() int {
	extra := b.bw % digit.BitsPerDigit
	if extra == 0 {
		return 0
	}
	return digit.BitsPerDigit - extra
}

// lastMask returns a mask with the used bits of the last digit set.
func (b *Bits) lastMask() digit.Digit {
	u := b.Unused()
	if u == 0 {
		return digit.Max
	}
	return digit.Max >> u
}

// ClearUnusedBits zeroes any bits beyond bw in the last digit. Every
// operation in this package that can set a bit beyond bw calls this
// before returning (the others cannot break the invariant), so
// callers only need this directly after using RawSlice to mutate
// storage out from under the invariant.
func (b *Bits) ClearUnusedBits() {
	if len(b.digits) == 0 {
		return
	}
	last := len(b.digits) - 1
	b.digits[last] &= b.lastMask()
}

// AssertClearedUnusedBits panics if the unused-bit invariant has been
// violated, which can only happen if a caller wrote through RawSlice
// without calling ClearUnusedBits afterward.
func (b *Bits) AssertClearedUnusedBits() {
	if len(b.digits) == 0 {
		return
	}
	last := len(b.digits) - 1
	if b.digits[last]&^b.lastMask() != 0 {
		panic("bits: unused bits invariant violated")
	}
}

// RawSlice exposes the backing digits directly, little-endian digit
// order. Callers that mutate through this slice must call
// ClearUnusedBits before any other method observes the result.
func (b *Bits) RawSlice() []digit.Digit { return b.digits }

// Digit returns digit i, or 0 if i is out of range.
func (b *Bits) Digit(i int) digit.Digit {
	if i < 0 || i >= len(b.digits) {
		return 0
	}
	return b.digits[i]
}

// SetDigit sets digit i and reclears the unused-bit invariant. Panics
// if i is out of range.
func (b *Bits) SetDigit(i int, v digit.Digit) {
	b.digits[i] = v
	b.ClearUnusedBits()
}

// Clone copies b's digits into freshly allocated storage.
func (b *Bits) Clone() *Bits {
	cp := make([]digit.Digit, len(b.digits))
	copy(cp, b.digits)
	return &Bits{digits: cp, bw: b.bw}
}

// CopyFrom copies rhs's digits into b. Panics on bitwidth mismatch.
func (b *Bits) CopyFrom(rhs *Bits) {
	mustSameBW(b, rhs)
	copy(b.digits, rhs.digits)
}

// Zero sets every bit of b to 0.
func (b *Bits) Zero() {
	for i := range b.digits {
		b.digits[i] = 0
	}
}

// Umax sets b to all ones (the unsigned maximum for bw).
func (b *Bits) Umax() {
	for i := range b.digits {
		b.digits[i] = digit.Max
	}
	b.ClearUnusedBits()
}

// Imax sets b to the signed maximum (umax with msb cleared).
func (b *Bits) Imax() {
	b.Umax()
	b.setBitRaw(b.bw-1, 0)
}

// Imin sets b to the signed minimum (only the msb set).
func (b *Bits) Imin() {
	b.Zero()
	b.setBitRaw(b.bw-1, 1)
}

// Uone sets b to 1.
func (b *Bits) Uone() {
	b.Zero()
	b.digits[0] = 1
}

func (b *Bits) setBitRaw(i int, v digit.Digit) {
	word, bit := i/digit.BitsPerDigit, uint(i%digit.BitsPerDigit)
	if v != 0 {
		b.digits[word] |= digit.Digit(1) << bit
	} else {
		b.digits[word] &^= digit.Digit(1) << bit
	}
}

func mustSameBW(a, c *Bits) {
	if a.bw != c.bw {
		panic("bits: bitwidth mismatch")
	}
}

// IsZero reports whether every bit of b is 0.
func (b *Bits) IsZero() bool {
	for _, d := range b.digits {
		if d != 0 {
			return false
		}
	}
	return true
}

// IsUmax reports whether b equals the unsigned maximum.
func (b *Bits) IsUmax() bool {
	if len(b.digits) == 0 {
		return true
	}
	for i := 0; i < len(b.digits)-1; i++ {
		if b.digits[i] != digit.Max {
			return false
		}
	}
	return b.digits[len(b.digits)-1] == b.lastMask()
}

// Msb returns the most significant bit of b.
func (b *Bits) Msb() bool {
	return b.GetBit(b.bw - 1)
}

// Lsb returns the least significant bit of b.
func (b *Bits) Lsb() bool {
	return b.digits[0]&1 != 0
}

// GetBit returns bit i of b. Panics if i is out of range.
func (b *Bits) GetBit(i int) bool {
	if i < 0 || i >= b.bw {
		panic("bits: bit index out of range")
	}
	word, bit := i/digit.BitsPerDigit, uint(i%digit.BitsPerDigit)
	return b.digits[word]&(digit.Digit(1)<<bit) != 0
}

// SetBit sets bit i of b to v. Panics if i is out of range.
func (b *Bits) SetBit(i int, v bool) {
	if i < 0 || i >= b.bw {
		panic("bits: bit index out of range")
	}
	var d digit.Digit
	if v {
		d = 1
	}
	b.setBitRaw(i, d)
}

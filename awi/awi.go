// Package awi implements the owning bit-string containers built on top
// of package bits: ExtAwi (heap-allocated, fixed width for its
// lifetime) and Awi (resizable, growing geometrically like a slice).
// InlAwi, the by-value fixed-width family, lives in inlawi.go.
package awi

import (
	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/digit"
)

// ExtAwi is a heap-allocated bit string whose width never changes
// after construction.
type ExtAwi struct {
	storage []digit.Digit
	view    *bits.Bits
}

// NewExtAwi allocates a zeroed ExtAwi of the given bitwidth.
func NewExtAwi(bw int) *ExtAwi {
	storage := make([]digit.Digit, bits.DigitsForBits(bw))
	return &ExtAwi{storage: storage, view: bits.NewBitsView(storage, bw)}
}

// Bits returns the underlying view for use with package bits
// operations.
func (a *ExtAwi) Bits() *bits.Bits { return a.view }

// BW returns the bitwidth.
func (a *ExtAwi) BW() int { return a.view.BW() }

// inlineDigits is the capacity of the inline union arm: one digit,
// i.e. up to W bits stored by value with no heap allocation at all.
const inlineDigits = 1

// Awi is a resizable owning bit string. Unlike ExtAwi, its bitwidth can
// change after construction via Resize/ZeroResize/SignResize.
//
// Storage is the same inline-digit/heap union described in spec §4.D:
// a value whose digits fit in the inline arm (bw <= W) lives entirely
// in a's own memory with no allocation; once a grows past that, heap
// takes over and grows geometrically (to the next power-of-two digit
// count) so repeated small growths don't reallocate every time. heap
// == nil is the discriminator (the "cap_bytes == 0" state): it is only
// nil while the inline arm is in use.
type Awi struct {
	inline [inlineDigits]digit.Digit
	heap   []digit.Digit
	view   *bits.Bits
}

// NewAwi allocates a zeroed Awi of the given bitwidth, using the inline
// arm (no allocation) when bw fits in a single digit.
func NewAwi(bw int) *Awi {
	a := &Awi{}
	need := bits.DigitsForBits(bw)
	if need <= inlineDigits {
		a.view = bits.NewBitsView(a.inline[:], bw)
		return a
	}
	a.heap = make([]digit.Digit, nextPow2(need))
	a.view = bits.NewBitsView(a.heap, bw)
	return a
}

// Bits returns the underlying view for use with package bits
// operations. The returned view is only valid until the next call to
// a method that changes a's bitwidth (Resize/ZeroResize/SignResize/
// Reserve/ShrinkTo), since those may reallocate storage or switch
// union arms.
func (a *Awi) Bits() *bits.Bits { return a.view }

// BW returns the current bitwidth.
func (a *Awi) BW() int { return a.view.BW() }

// storage returns the digit slice currently backing a: the inline arm
// when heap is nil, the heap allocation otherwise.
func (a *Awi) storage() []digit.Digit {
	if a.heap != nil {
		return a.heap
	}
	return a.inline[:]
}

// capDigits returns the number of digits a can hold without
// reallocating or switching union arms.
func (a *Awi) capDigits() int {
	if a.heap != nil {
		return len(a.heap)
	}
	return inlineDigits
}

// Reserve grows a's backing storage so it can hold at least bw bits
// without reallocating on a subsequent resize, without changing a's
// current bitwidth or contents. Reserving past the inline arm's
// capacity moves a onto the heap permanently; Reserve never moves a
// heap-backed value back onto the inline arm (use ShrinkTo for that).
func (a *Awi) Reserve(bw int) {
	need := bits.DigitsForBits(bw)
	if need <= a.capDigits() {
		return
	}
	newHeap := make([]digit.Digit, nextPow2(need))
	copy(newHeap, a.storage())
	a.heap = newHeap
	a.view = bits.NewBitsView(a.heap, a.view.BW())
}

// ShrinkTo reallocates a's storage down to exactly the digits needed
// for its current bitwidth, dropping any reserved slack capacity. If
// the current bitwidth now fits in the inline arm, ShrinkTo moves a
// back onto it and frees the heap allocation.
func (a *Awi) ShrinkTo() {
	need := bits.DigitsForBits(a.view.BW())
	if need <= inlineDigits {
		if a.heap == nil {
			return
		}
		copy(a.inline[:need], a.heap[:need])
		a.heap = nil
		a.view = bits.NewBitsView(a.inline[:], a.view.BW())
		return
	}
	if need == len(a.heap) {
		return
	}
	newHeap := make([]digit.Digit, need)
	copy(newHeap, a.heap[:need])
	a.heap = newHeap
	a.view = bits.NewBitsView(a.heap, a.view.BW())
}

// resizeTo changes a's bitwidth to newBW, reallocating storage (or
// switching union arms) if necessary, and fills new high bits with
// extension.
func (a *Awi) resizeTo(newBW int, extension bool) {
	old := a.view
	need := bits.DigitsForBits(newBW)
	if need > a.capDigits() {
		a.Reserve(newBW)
	}
	newView := bits.NewBitsView(a.storage()[:need], newBW)
	newView.Resize(old, extension)
	a.view = newView
}

// Resize changes a's bitwidth, filling any new high bits with
// extension.
func (a *Awi) Resize(newBW int, extension bool) {
	a.resizeTo(newBW, extension)
}

// ZeroResize changes a's bitwidth, filling any new high bits with 0.
func (a *Awi) ZeroResize(newBW int) {
	a.resizeTo(newBW, false)
}

// SignResize changes a's bitwidth, filling any new high bits with a's
// own current sign bit. Kept textually distinct from ZeroResize for
// the same reason bits.Bits.SignResize is: this must never silently
// degrade to zero-fill.
func (a *Awi) SignResize(newBW int) {
	a.resizeTo(newBW, a.view.Msb())
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

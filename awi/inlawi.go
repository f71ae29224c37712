package awi

import (
	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/digit"
)

// InlAwi is a fixed-width bit string stored inline (no heap
// allocation), the Go analogue of the original's const-generic
// InlAwi<BW, LEN>. Go has no const-generic bitwidth parameter, so
// instead of one generic type indexed by bit count, InlAwi is backed
// by a small array sized for a specific digit count; callers pick the
// constructor matching their bitwidth. Widths up to 256 bits get a
// dedicated zero-allocation type below (InlAwi64, InlAwi128,
// InlAwi192, InlAwi256); InlAwiN covers any other digit count over a
// digit slice the caller supplies, so whether its digits live on the
// heap depends on where the caller put them.
type InlAwi64 struct {
	d  [1]digit.Digit
	bw int
}

// NewInlAwi64 constructs an InlAwi64 of the given bitwidth. Panics if
// bw does not fit in one digit.
func NewInlAwi64(bw int) *InlAwi64 {
	if bw <= 0 || bw > digit.BitsPerDigit {
		panic("awi: bitwidth does not fit InlAwi64")
	}
	a := &InlAwi64{bw: bw}
	return a
}

// Bits returns a view over a's inline storage.
func (a *InlAwi64) Bits() *bits.Bits { return bits.NewBitsView(a.d[:], a.bw) }

// InlAwi128 is the two-digit (up to 128-bit) member of the InlAwi
// family.
type InlAwi128 struct {
	d  [2]digit.Digit
	bw int
}

// NewInlAwi128 constructs an InlAwi128 of the given bitwidth. Panics if
// bw does not fit in two digits.
func NewInlAwi128(bw int) *InlAwi128 {
	if bw <= 0 || bw > 2*digit.BitsPerDigit {
		panic("awi: bitwidth does not fit InlAwi128")
	}
	return &InlAwi128{bw: bw}
}

// Bits returns a view over a's inline storage.
func (a *InlAwi128) Bits() *bits.Bits { return bits.NewBitsView(a.d[:], a.bw) }

// InlAwi192 is the three-digit (up to 192-bit) member of the family.
type InlAwi192 struct {
	d  [3]digit.Digit
	bw int
}

// NewInlAwi192 constructs an InlAwi192 of the given bitwidth.
func NewInlAwi192(bw int) *InlAwi192 {
	if bw <= 0 || bw > 3*digit.BitsPerDigit {
		panic("awi: bitwidth does not fit InlAwi192")
	}
	return &InlAwi192{bw: bw}
}

// Bits returns a view over a's inline storage.
func (a *InlAwi192) Bits() *bits.Bits { return bits.NewBitsView(a.d[:], a.bw) }

// InlAwi256 is the four-digit (up to 256-bit) member of the family.
type InlAwi256 struct {
	d  [4]digit.Digit
	bw int
}

// NewInlAwi256 constructs an InlAwi256 of the given bitwidth.
func NewInlAwi256(bw int) *InlAwi256 {
	if bw <= 0 || bw > 4*digit.BitsPerDigit {
		panic("awi: bitwidth does not fit InlAwi256")
	}
	return &InlAwi256{bw: bw}
}

// Bits returns a view over a's inline storage.
func (a *InlAwi256) Bits() *bits.Bits { return bits.NewBitsView(a.d[:], a.bw) }

// InlAwiN covers any digit count the dedicated InlAwi* family above
// doesn't, still with no heap allocation for digits smaller than the
// array size chosen by the caller at the call site (the array literal
// itself may still escape to the heap under Go's usual escape
// analysis rules, same as any other composite literal whose address
// is taken — this is the practical limit of emulating a const-generic
// parameter without one).
type InlAwiN struct {
	d  []digit.Digit
	bw int
}

// NewInlAwiN constructs an InlAwiN of the given bitwidth backed by a
// caller-supplied fixed-size array (pass arr[:] for a local [N]Digit
// array). Panics if arr is too short for bw.
func NewInlAwiN(arr []digit.Digit, bw int) *InlAwiN {
	if bw <= 0 {
		panic("awi: bitwidth must be positive")
	}
	if len(arr) < bits.DigitsForBits(bw) {
		panic("awi: array too short for bitwidth")
	}
	return &InlAwiN{d: arr, bw: bw}
}

// Bits returns a view over a's inline storage.
func (a *InlAwiN) Bits() *bits.Bits { return bits.NewBitsView(a.d, a.bw) }

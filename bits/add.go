package bits

import "github.com/tindar/bitwidth/digit"

// CinSum computes b's digits as lhs + rhs + cin (cin is 0 or 1),
// returning the final carry-out bit and whether the addition
// overflowed the signed range. Reports ok=false (leaving b unchanged)
// on bitwidth mismatch.
func (b *Bits) CinSum(cin bool, lhs, rhs *Bits) (carryOut, signedOverflow, ok bool) {
	if b.bw != lhs.bw || b.bw != rhs.bw {
		return false, false, false
	}
	var c digit.Digit
	if cin {
		c = 1
	}
	for i := range b.digits {
		lo, carry := digit.WidenAdd(lhs.digits[i], rhs.digits[i], c)
		b.digits[i] = lo
		c = carry
	}
	carryOut = c != 0
	if u := b.Unused(); u != 0 {
		carryOut = b.digits[len(b.digits)-1]>>uint(digit.BitsPerDigit-u) != 0
	}
	b.ClearUnusedBits()

	lm, rm, sm := lhs.Msb(), rhs.Msb(), b.Msb()
	signedOverflow = (lm == rm) && (sm != lm)
	return carryOut, signedOverflow, true
}

// Add computes b = lhs + rhs. Reports ok=false (leaving b unchanged)
// on bitwidth mismatch.
func (b *Bits) Add(lhs, rhs *Bits) (ok bool) {
	_, _, ok = b.CinSum(false, lhs, rhs)
	return ok
}

// Sub computes b = lhs - rhs. Reports ok=false (leaving b unchanged)
// on bitwidth mismatch.
func (b *Bits) Sub(lhs, rhs *Bits) (ok bool) {
	if b.bw != lhs.bw || b.bw != rhs.bw {
		return false
	}
	notRhs := rhs.Clone()
	notRhs.Not()
	_, _, ok = b.CinSum(true, lhs, notRhs)
	return ok
}

// Rsb computes b = rhs - lhs (reverse subtract). Reports ok=false
// (leaving b unchanged) on bitwidth mismatch.
func (b *Bits) Rsb(lhs, rhs *Bits) (ok bool) {
	return b.Sub(rhs, lhs)
}

// Inc adds cin to b in place (b+1 when cin is true, b unchanged
// otherwise), returning the carry-out.
func (b *Bits) Inc(cin bool) (carryOut bool) {
	var c digit.Digit
	if cin {
		c = 1
	}
	for i := range b.digits {
		lo, carry := digit.WidenAdd(b.digits[i], 0, c)
		b.digits[i] = lo
		c = carry
	}
	if u := b.Unused(); u != 0 {
		c = b.digits[len(b.digits)-1] >> uint(digit.BitsPerDigit-u)
	}
	b.ClearUnusedBits()
	return c != 0
}

// Dec subtracts 1 from b in place unless cin is true (b becomes
// b-1+cin, the original's cin-as-not-borrow convention), returning the
// carry-out, which is false only when b was 0 and cin was false.
func (b *Bits) Dec(cin bool) (carryOut bool) {
	var c digit.Digit
	if cin {
		c = 1
	}
	for i := range b.digits {
		lo, carry := digit.WidenAdd(b.digits[i], digit.Max, c)
		b.digits[i] = lo
		c = carry
	}
	b.ClearUnusedBits()
	return c != 0
}

// Neg negates b in place (two's complement) if negate is true,
// otherwise leaves b unchanged.
func (b *Bits) Neg(negate bool) {
	if !negate {
		return
	}
	b.Not()
	b.Inc(true)
}

// Abs replaces b with its absolute value, treating b as signed.
func (b *Bits) Abs() {
	b.Neg(b.Msb())
}

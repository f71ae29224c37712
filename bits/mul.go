package bits

import "github.com/tindar/bitwidth/digit"

// ShortCinMul multiplies b by a single-digit rhs, adding a single-digit
// carry-in, and returns the final carry-out digit. b's digits are
// overwritten with the low bw bits of the product.
func (b *Bits) ShortCinMul(cin digit.Digit, rhs digit.Digit) (carryOut digit.Digit) {
	c := cin
	for i := range b.digits {
		lo, hi := digit.WidenMulAdd(b.digits[i], rhs, c)
		b.digits[i] = lo
		c = hi
	}
	b.ClearUnusedBits()
	return c
}

// ShortMulAddTriOp computes b += lhs * rhs, where rhs is a single
// digit, returning the carry-out digit. Returns ok=false (leaving b
// unchanged) on bitwidth mismatch between b and lhs.
func (b *Bits) ShortMulAddTriOp(lhs *Bits, rhs digit.Digit) (carryOut digit.Digit, ok bool) {
	if b.bw != lhs.bw {
		return 0, false
	}
	var c digit.Digit
	for i := range b.digits {
		lo, hi := digit.WidenMulAdd(lhs.digits[i], rhs, b.digits[i])
		lo2, carry2 := digit.WidenAdd(lo, c, 0)
		b.digits[i] = lo2
		c = hi + carry2
	}
	b.ClearUnusedBits()
	return c, true
}

// MulAdd computes b += lhs * rhs using the textbook O(n^2) schoolbook
// schedule: for each digit of rhs, a shifted ShortMulAddTriOp pass.
// Reports ok=false (leaving b unchanged) on bitwidth mismatch.
func (b *Bits) MulAdd(lhs, rhs *Bits) (ok bool) {
	if b.bw != lhs.bw || b.bw != rhs.bw {
		return false
	}
	n := len(b.digits)
	acc := make([]digit.Digit, n)
	copy(acc, b.digits)
	for j := 0; j < n; j++ {
		rd := rhs.digits[j]
		if rd == 0 {
			continue
		}
		var carry digit.Digit
		for i := 0; i+j < n; i++ {
			lo, hi := digit.WidenMulAdd(lhs.digits[i], rd, acc[i+j])
			lo2, c2 := digit.WidenAdd(lo, carry, 0)
			acc[i+j] = lo2
			carry = hi + c2
		}
	}
	copy(b.digits, acc)
	b.ClearUnusedBits()
	return true
}

// Mul computes b = lhs * rhs (b's previous value is discarded: Mul
// zeroes b itself and then wraps MulAdd for a fresh product).
// Reports ok=false (leaving b unchanged) on bitwidth mismatch.
func (b *Bits) Mul(lhs, rhs *Bits) (ok bool) {
	if b.bw != lhs.bw || b.bw != rhs.bw {
		return false
	}
	b.Zero()
	return b.MulAdd(lhs, rhs)
}

// ArbUmulAdd computes b += lhs * rhs using unsigned operands of
// arbitrary (possibly different) widths than b, truncating the result
// to bw. This is the general entry point the width-matched MulAdd
// specializes.
func (b *Bits) ArbUmulAdd(lhs, rhs *Bits) {
	n := len(b.digits)
	ln, rn := len(lhs.digits), len(rhs.digits)
	acc := make([]digit.Digit, n)
	copy(acc, b.digits)
	for j := 0; j < rn; j++ {
		rd := rhs.digits[j]
		if rd == 0 || j >= n {
			continue
		}
		var carry digit.Digit
		for i := 0; i < ln && i+j < n; i++ {
			lo, hi := digit.WidenMulAdd(lhs.digits[i], rd, acc[i+j])
			lo2, c2 := digit.WidenAdd(lo, carry, 0)
			acc[i+j] = lo2
			carry = hi + c2
		}
		k := j + ln
		for k < n && carry != 0 {
			lo, c2 := digit.WidenAdd(acc[k], carry, 0)
			acc[k] = lo
			carry = c2
			k++
		}
	}
	copy(b.digits, acc)
	b.ClearUnusedBits()
}

// ArbImulAdd computes b += lhs * rhs with lhs and rhs treated as
// signed, arbitrary-width operands, truncating to bw.
func (b *Bits) ArbImulAdd(lhs, rhs *Bits) {
	l := lhs.Clone()
	r := rhs.Clone()
	lNeg := l.Msb()
	rNeg := r.Msb()
	l.Abs()
	r.Abs()
	if lNeg == rNeg {
		b.ArbUmulAdd(l, r)
		return
	}
	tmp := b.Clone()
	tmp.Zero()
	tmp.ArbUmulAdd(l, r)
	tmp.Neg(true)
	b.Add(b, tmp)
}

package bits

import "github.com/tindar/bitwidth/digit"

// shl1 shifts b left by one bit, shifting bitIn into position 0.
func (b *Bits) shl1(bitIn bool) {
	carry := bitIn
	for i := range b.digits {
		nextCarry := b.digits[i]>>(digit.BitsPerDigit-1) != 0
		var c digit.Digit
		if carry {
			c = 1
		}
		b.digits[i] = (b.digits[i] << 1) | c
		carry = nextCarry
	}
	b.ClearUnusedBits()
}

// subInPlace computes b -= rhs, wrapping on underflow, matching two's
// complement subtraction semantics. On bitwidth mismatch b is left
// unchanged.
func (b *Bits) subInPlace(rhs *Bits) {
	b.Sub(b, rhs)
}

// shortUDivide handles the case where div fits in a single digit: a
// classic base-2^64 short division, one digit of duo at a time from
// most to least significant, each step delegating to digit.DDivision
// (which itself degrades to a single bits.Div64 call once its divisor
// is single-digit). Caller guarantees div fits one digit and is
// nonzero.
func (q *Bits) shortUDivide(rem, duo, div *Bits) {
	divDigit := div.digits[0]
	var carry digit.Digit
	for i := len(duo.digits) - 1; i >= 0; i-- {
		ql, _, rl, _ := digit.DDivision(duo.digits[i], carry, divDigit, 0)
		q.digits[i] = ql
		carry = rl
	}
	q.ClearUnusedBits()
	rem.Zero()
	rem.digits[0] = carry
	rem.ClearUnusedBits()
}

// UDivide computes quo = duo / div and rem = duo % div (unsigned),
// where q (the receiver), rem, duo, and div all share the same
// bitwidth. Returns ok=false (leaving quo and rem unchanged) if div is
// zero.
//
// This follows a shortened version of the reference implementation's
// "trifecta" schedule: a 0-quotient fast path when duo < div, a
// single-digit-divisor fast path (shortUDivide, built on
// digit.DDivision), and otherwise the general bit-at-a-time
// undersubtracting long division as the schoolbook fallback for
// multi-digit divisors.
func (q *Bits) UDivide(rem, duo, div *Bits) (ok bool) {
	if div.IsZero() {
		return false
	}
	if q.bw != duo.bw || rem.bw != duo.bw || div.bw != duo.bw {
		return false
	}
	if ult, _ := Ult(duo, div); ult {
		q.Zero()
		rem.CopyFrom(duo)
		return true
	}
	if len(div.digits) == 1 {
		q.shortUDivide(rem, duo, div)
		return true
	}
	q.Zero()
	rem.Zero()
	for i := duo.bw - 1; i >= 0; i-- {
		rem.shl1(duo.GetBit(i))
		if ule, _ := Ule(div, rem); ule {
			rem.subInPlace(div)
			q.SetBit(i, true)
		}
	}
	return true
}

// IDivide computes quo = duo / div and rem = duo % div (signed,
// truncating toward zero), where q, rem, duo, and div all share the
// same bitwidth. Returns ok=false (leaving quo and rem unchanged) if
// div is zero or any width disagrees with duo's, per §4.C/§7's
// recoverable-no-mutation domain-error contract. Handles the imin/-1
// case naturally by delegating sign handling to UDivide the same way
// the reference implementation's idivide negates operands, calls
// udivide, and negates the results back: Abs on imin yields imin
// (§4.C), so duo=imin, div=-1 falls out of the ordinary path as
// quo=imin, rem=0, the documented overflow result.
func (q *Bits) IDivide(rem, duo, div *Bits) (ok bool) {
	if div.IsZero() {
		return false
	}
	if q.bw != duo.bw || rem.bw != duo.bw || div.bw != duo.bw {
		return false
	}
	d := duo.Clone()
	v := div.Clone()
	duoNeg := d.Msb()
	divNeg := v.Msb()
	d.Abs()
	v.Abs()
	uq := NewBitsView(make([]digit.Digit, len(duo.digits)), duo.bw)
	ur := NewBitsView(make([]digit.Digit, len(duo.digits)), duo.bw)
	if !uq.UDivide(ur, d, v) {
		return false
	}
	uq.Neg(duoNeg != divNeg)
	ur.Neg(duoNeg)
	q.CopyFrom(uq)
	rem.CopyFrom(ur)
	return true
}

// Package digit implements the machine-word-sized arithmetic primitives
// that every width-generic operation in package bits is built from:
// widening add, widening multiply-add, and double-digit division.
package digit

import "math/bits"

// Digit is the machine-word-sized unsigned integer that backs every
// arbitrary-width bit string. W = 64 is the reference width named in the
// specification; a 32-bit Digit would also satisfy every contract here,
// just with twice as many digits per bitwidth.
type Digit = uint64

// BitsPerDigit is the width W of a single Digit, in bits.
const BitsPerDigit = 64

// Max is the all-ones digit.
const Max Digit = ^Digit(0)

// WidenAdd computes low + carry*2^W = x + y + z, where carry is 0, 1, or 2.
func WidenAdd(x, y, z Digit) (low, carry Digit) {
	sum, c0 := bits.Add64(x, y, 0)
	sum, c1 := bits.Add64(sum, z, 0)
	return sum, Digit(c0 + c1)
}

// WidenMulAdd computes low + high*2^W = x*y + z exactly.
func WidenMulAdd(x, y, z Digit) (low, high Digit) {
	hi, lo := bits.Mul64(x, y)
	lo2, carry := bits.Add64(lo, z, 0)
	hi2 := hi + carry
	return lo2, hi2
}

// DDivision computes a two-digit by two-digit division:
// (quoLo,quoHi), (remLo,remHi) such that
// duo = quo*div + rem, rem < div, given duo = duoLo + duoHi*2^W and
// div = divLo + divHi*2^W. Panics if div == 0.
func DDivision(duoLo, duoHi, divLo, divHi Digit) (quoLo, quoHi, remLo, remHi Digit) {
	if divLo == 0 && divHi == 0 {
		panic("digit: division by zero")
	}
	// Fast paths mirroring the "trifecta" ladder from the reference
	// implementation, specialized to a two-limb dividend/divisor since a
	// Digit is already W=64 bits and bits.Div64 supplies a native
	// 128-by-64 divide.
	if divHi == 0 {
		if duoHi < divLo {
			// single call to bits.Div64 suffices: quotient and remainder
			// both fit in one digit after the first step, we still need
			// to handle the low digit afterward.
			q1, r1 := bits.Div64(duoHi, duoLo, divLo)
			return q1, 0, r1, 0
		}
		// duoHi >= divLo: quotient needs two digits. Divide high digit
		// first, then bring down the low digit with the remainder as
		// carry-in, matching short division digit-by-digit.
		qHi, rHi := bits.Div64(0, duoHi, divLo)
		qLo, rLo := bits.Div64(rHi, duoLo, divLo)
		return qLo, qHi, rLo, 0
	}
	// Full 128-by-128 division: compare magnitudes first.
	if greaterDD(divLo, divHi, duoLo, duoHi) {
		return 0, 0, duoLo, duoHi
	}
	// General undersubtracting long division, one bit of quotient per
	// iteration: this is the schoolbook fallback the trifecta ladder in
	// the reference implementation bottoms out to once the divisor no
	// longer fits a fast single- or double-digit path. It is quadratic
	// in the worst case, but a two-digit divisor never exceeds 128 bit
	// shifts, so it stays bounded.
	var qLo, qHi, rLo, rHi Digit
	for i := 2*BitsPerDigit - 1; i >= 0; i-- {
		rLo, rHi = shlDD1(rLo, rHi, bitAt(duoLo, duoHi, i))
		if greaterOrEqualDD(rLo, rHi, divLo, divHi) {
			rLo, rHi, _ = subDD2(rLo, rHi, divLo, divHi)
			qLo, qHi = setBit(qLo, qHi, i)
		}
	}
	return qLo, qHi, rLo, rHi
}

func greaterDD(aLo, aHi, bLo, bHi Digit) bool {
	if aHi != bHi {
		return aHi > bHi
	}
	return aLo > bLo
}

func greaterOrEqualDD(aLo, aHi, bLo, bHi Digit) bool {
	if aHi != bHi {
		return aHi > bHi
	}
	return aLo >= bLo
}

// subDD2 computes a 128-bit subtraction with borrow-out.
func subDD2(aLo, aHi, bLo, bHi Digit) (lo, hi Digit, borrow bool) {
	lo, b0 := bits.Sub64(aLo, bLo, 0)
	hi, b1 := bits.Sub64(aHi, bHi, b0)
	return lo, hi, b1 != 0
}

// shlDD1 shifts a 128-bit value left by one bit, shifting bitIn (0 or 1)
// into the vacated low bit.
func shlDD1(lo, hi Digit, bitIn Digit) (newLo, newHi Digit) {
	newHi = (hi << 1) | (lo >> (BitsPerDigit - 1))
	newLo = (lo << 1) | bitIn
	return
}

// bitAt extracts bit i (0 = least significant) of the 128-bit value
// (lo, hi) as 0 or 1.
func bitAt(lo, hi Digit, i int) Digit {
	if i < BitsPerDigit {
		return (lo >> i) & 1
	}
	return (hi >> (i - BitsPerDigit)) & 1
}

// setBit returns (lo, hi) with bit i set to 1.
func setBit(lo, hi Digit, i int) (newLo, newHi Digit) {
	if i < BitsPerDigit {
		return lo | (Digit(1) << i), hi
	}
	return lo, hi | (Digit(1) << (i - BitsPerDigit))
}

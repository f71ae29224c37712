package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tindar/bitwidth/digit"
)

func newBits(bw int) *Bits {
	storage := make([]digit.Digit, DigitsForBits(bw))
	return NewBitsView(storage, bw)
}

func bitsFromUint(bw int, v uint64) *Bits {
	b := newBits(bw)
	for i := 0; i < bw && i < 64; i++ {
		if v&(1<<uint(i)) != 0 {
			b.SetBit(i, true)
		}
	}
	return b
}

func TestClearedUnusedBitsAfterView(t *testing.T) {
	storage := []digit.Digit{digit.Max}
	b := NewBitsView(storage, 5)
	assert.Equal(t, digit.Digit(0x1f), b.digits[0])
}

func TestNotInvolution(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bw := rapid.IntRange(1, 200).Draw(rt, "bw")
		v := rapid.Uint64().Draw(rt, "v")
		b := bitsFromUint(bw, v)
		orig := b.Clone()
		b.Not()
		b.Not()
		eq, ok := Eq(orig, b)
		require.True(rt, ok)
		require.True(rt, eq)
	})
}

func TestDeMorgan(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bw := rapid.IntRange(1, 130).Draw(rt, "bw")
		a := bitsFromUint(bw, rapid.Uint64().Draw(rt, "a"))
		c := bitsFromUint(bw, rapid.Uint64().Draw(rt, "c"))

		lhs := newBits(bw)
		lhs.CopyFrom(a)
		lhs.And(c)
		lhs.Not()

		rhs := newBits(bw)
		notA := a.Clone()
		notA.Not()
		notC := c.Clone()
		notC.Not()
		rhs.CopyFrom(notA)
		rhs.Or(notC)

		eq, ok := Eq(lhs, rhs)
		require.True(rt, ok)
		require.True(rt, eq)
	})
}

func TestShlRotlIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bw := rapid.IntRange(1, 130).Draw(rt, "bw")
		v := rapid.Uint64().Draw(rt, "v")
		s := rapid.IntRange(0, bw-1).Draw(rt, "s")

		a := bitsFromUint(bw, v)
		b := a.Clone()
		b.RotL(s)

		// For s < bw, a left rotate never shifts any bit past the top:
		// bits that would have been lost to a plain Shl reappear at the
		// bottom. Verify the low s bits of the rotated value equal the
		// top s bits of the original.
		for i := 0; i < s; i++ {
			require.Equal(rt, a.GetBit(bw-s+i), b.GetBit(i))
		}
		for i := s; i < bw; i++ {
			require.Equal(rt, a.GetBit(i-s), b.GetBit(i))
		}
	})
}

func TestRevInvolution(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bw := rapid.IntRange(1, 130).Draw(rt, "bw")
		a := bitsFromUint(bw, rapid.Uint64().Draw(rt, "a"))
		orig := a.Clone()
		a.Rev()
		a.Rev()
		eq, ok := Eq(orig, a)
		require.True(rt, ok)
		require.True(rt, eq)
	})
}

func TestUDivideIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bw := rapid.IntRange(1, 130).Draw(rt, "bw")
		duo := bitsFromUint(bw, rapid.Uint64().Draw(rt, "duo"))
		div := bitsFromUint(bw, rapid.Uint64().Draw(rt, "div"))
		if div.IsZero() {
			div.SetBit(0, true)
		}

		quo := newBits(bw)
		rem := newBits(bw)
		ok := quo.UDivide(rem, duo, div)
		require.True(rt, ok)

		// quo*div + rem == duo (mod 2^bw), rem < div
		prod := newBits(bw)
		prod.Mul(quo, div)
		sum := newBits(bw)
		sum.Add(prod, rem)
		eq, ok := Eq(sum, duo)
		require.True(rt, ok)
		require.True(rt, eq)
		ult, ok := Ult(rem, div)
		require.True(rt, ok)
		require.True(rt, ult)
	})
}

func TestZeroResizeSignResizeDistinct(t *testing.T) {
	src := bitsFromUint(4, 0b1000) // -8 as i4, msb set
	zr := newBits(8)
	zr.ZeroResize(src)
	sr := newBits(8)
	sr.SignResize(src)

	eqZrSr, _ := Eq(zr, sr)
	assert.False(t, eqZrSr)
	assert.False(t, zr.Msb())
	assert.True(t, sr.GetBit(4))
	assert.True(t, sr.GetBit(7))
}

func TestFieldPreservesRest(t *testing.T) {
	dst := bitsFromUint(16, 0xffff)
	src := bitsFromUint(8, 0x00)
	ok := Field(dst, 4, src, 0, 8)
	assert.True(t, ok)
	assert.Equal(t, digit.Digit(0x0f), dst.digits[0]&0xf)
	assert.True(t, dst.GetBit(12))
	assert.True(t, dst.GetBit(15))
}

func TestFieldRejectsOutOfRange(t *testing.T) {
	dst := bitsFromUint(16, 0xffff)
	src := bitsFromUint(8, 0x00)
	before := dst.Clone()
	ok := Field(dst, 12, src, 0, 8) // 12+8 > 16, out of range for dst
	assert.False(t, ok)
	eq, _ := Eq(before, dst)
	assert.True(t, eq)
}

func TestRotateRejectsOutOfRange(t *testing.T) {
	b := bitsFromUint(8, 0xa5)
	before := b.Clone()
	assert.False(t, b.RotL(8))
	eq1, _ := Eq(before, b)
	assert.True(t, eq1)
	assert.False(t, b.RotR(9))
	eq2, _ := Eq(before, b)
	assert.True(t, eq2)
}

func TestCompareWidthMismatchIsNoOpNotPanic(t *testing.T) {
	a := bitsFromUint(8, 1)
	b := bitsFromUint(16, 1)

	_, ok := Eq(a, b)
	assert.False(t, ok)
	_, ok = Ult(a, b)
	assert.False(t, ok)
	_, ok = Ilt(a, b)
	assert.False(t, ok)
	_, ok = Ule(a, b)
	assert.False(t, ok)
	_, ok = Ile(a, b)
	assert.False(t, ok)
	_, ok = Ne(a, b)
	assert.False(t, ok)
}

func TestHexFormatSeedScenario(t *testing.T) {
	b := bitsFromUint(100, 0)
	// 0xfedcba9876543210 fits in the low 64 bits of a 100-bit value.
	storage := b.RawSlice()
	storage[0] = 0xfedcba9876543210
	b.ClearUnusedBits()
	assert.Equal(t, "0xfedcba98_76543210_u100", b.HexString())
}

func TestIDivideRejectsWidthMismatch(t *testing.T) {
	duo := bitsFromUint(8, 10)
	div := bitsFromUint(8, 3)
	quo := newBits(8)
	rem := newBits(8)
	before := quo.Clone()
	beforeRem := rem.Clone()

	wrongWidthDiv := newBits(16)
	ok := quo.IDivide(rem, duo, wrongWidthDiv)
	assert.False(t, ok)
	eqQuo, _ := Eq(before, quo)
	assert.True(t, eqQuo)
	eqRem, _ := Eq(beforeRem, rem)
	assert.True(t, eqRem)

	ok = quo.IDivide(rem, duo, div)
	require.True(t, ok)
	assert.Equal(t, uint64(3), quo.digits[0]&0xff)
	assert.Equal(t, uint64(1), rem.digits[0]&0xff)
}

func TestIDivideIminByNegOneOverflows(t *testing.T) {
	const bw = 8
	duo := newBits(bw)
	duo.Imin() // -128
	div := newBits(bw)
	div.Uone()
	div.Neg(true) // -1

	quo := newBits(bw)
	rem := newBits(bw)
	ok := quo.IDivide(rem, duo, div)
	require.True(t, ok)

	wantQuo := newBits(bw)
	wantQuo.Imin()
	eqQuo, _ := Eq(wantQuo, quo)
	assert.True(t, eqQuo, "imin/-1 should overflow back to imin, got %s", quo)
	assert.True(t, rem.IsZero())
}

func TestUDivideDivisorZero(t *testing.T) {
	bw := 32
	duo := bitsFromUint(bw, 10)
	div := newBits(bw)
	quo := newBits(bw)
	rem := newBits(bw)
	ok := quo.UDivide(rem, duo, div)
	assert.False(t, ok)
}

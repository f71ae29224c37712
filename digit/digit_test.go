package digit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func toBig(lo, hi Digit) *big.Int {
	x := new(big.Int).SetUint64(hi)
	x.Lsh(x, BitsPerDigit)
	x.Or(x, new(big.Int).SetUint64(lo))
	return x
}

func fromBig(x *big.Int) (lo, hi Digit) {
	mask := new(big.Int).SetUint64(Max)
	loB := new(big.Int).And(x, mask)
	hiB := new(big.Int).Rsh(x, BitsPerDigit)
	hiB.And(hiB, mask)
	return loB.Uint64(), hiB.Uint64()
}

func TestWidenAdd(t *testing.T) {
	low, carry := WidenAdd(Max, Max, 1)
	assert.Equal(t, Max, low)
	assert.Equal(t, Digit(1), carry)

	low, carry = WidenAdd(Max, Max, Max)
	assert.Equal(t, Max-1, low)
	assert.Equal(t, Digit(2), carry)

	low, carry = WidenAdd(0, 0, 0)
	assert.Equal(t, Digit(0), low)
	assert.Equal(t, Digit(0), carry)
}

func TestWidenMulAdd(t *testing.T) {
	low, high := WidenMulAdd(Max, Max, Max)
	want := new(big.Int).SetUint64(Max)
	want.Mul(want, want)
	want.Add(want, new(big.Int).SetUint64(Max))
	wantLo, wantHi := fromBig(want)
	assert.Equal(t, wantLo, low)
	assert.Equal(t, wantHi, high)
}

func TestWidenAddProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Uint64().Draw(rt, "x")
		y := rapid.Uint64().Draw(rt, "y")
		z := rapid.Uint64().Draw(rt, "z")
		low, carry := WidenAdd(x, y, z)
		got := toBig(low, carry)
		want := new(big.Int).SetUint64(x)
		want.Add(want, new(big.Int).SetUint64(y))
		want.Add(want, new(big.Int).SetUint64(z))
		require.Equal(rt, 0, got.Cmp(want))
	})
}

func TestWidenMulAddProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Uint64().Draw(rt, "x")
		y := rapid.Uint64().Draw(rt, "y")
		z := rapid.Uint64().Draw(rt, "z")
		low, high := WidenMulAdd(x, y, z)
		got := toBig(low, high)
		want := new(big.Int).SetUint64(x)
		want.Mul(want, new(big.Int).SetUint64(y))
		want.Add(want, new(big.Int).SetUint64(z))
		require.Equal(rt, 0, got.Cmp(want))
	})
}

func TestDDivisionPanicsOnZero(t *testing.T) {
	assert.Panics(t, func() {
		DDivision(1, 0, 0, 0)
	})
}

func TestDDivisionHighDigitDivisor(t *testing.T) {
	qLo, qHi, rLo, rHi := DDivision(7, 0, 0, 3)
	assert.Equal(t, Digit(0), qLo)
	assert.Equal(t, Digit(0), qHi)
	assert.Equal(t, Digit(7), rLo)
	assert.Equal(t, Digit(0), rHi)
}

func TestDDivisionDivisorGreaterThanDividend(t *testing.T) {
	qLo, qHi, rLo, rHi := DDivision(5, 0, 0, 10)
	assert.Equal(t, Digit(0), qLo)
	assert.Equal(t, Digit(0), qHi)
	assert.Equal(t, Digit(5), rLo)
	assert.Equal(t, Digit(0), rHi)
}

// TestDDivisionTwoPossibilityBoundary exercises DDivision on the
// two-possibility boundary case: duo = 2^(2W)-1, div = 2^(W-1)+1.
func TestDDivisionTwoPossibilityBoundary(t *testing.T) {
	duoLo, duoHi := Max, Max
	divLo, divHi := (Digit(1)<<(BitsPerDigit-1))+1, Digit(0)
	qLo, qHi, rLo, rHi := DDivision(duoLo, duoHi, divLo, divHi)

	duo := toBig(duoLo, duoHi)
	div := toBig(divLo, divHi)
	quo := toBig(qLo, qHi)
	rem := toBig(rLo, rHi)

	check := new(big.Int).Mul(quo, div)
	check.Add(check, rem)
	assert.Equal(t, 0, check.Cmp(duo))
	assert.Equal(t, -1, rem.Cmp(div))
}

func TestDDivisionProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duoLo := rapid.Uint64().Draw(rt, "duoLo")
		duoHi := rapid.Uint64().Draw(rt, "duoHi")
		divLo := rapid.Uint64().Draw(rt, "divLo")
		divHi := rapid.Uint64().Draw(rt, "divHi")
		if divLo == 0 && divHi == 0 {
			divLo = 1
		}

		qLo, qHi, rLo, rHi := DDivision(duoLo, duoHi, divLo, divHi)

		duo := toBig(duoLo, duoHi)
		div := toBig(divLo, divHi)
		quo := toBig(qLo, qHi)
		rem := toBig(rLo, rHi)

		reconstructed := new(big.Int).Mul(quo, div)
		reconstructed.Add(reconstructed, rem)
		require.Equal(rt, 0, reconstructed.Cmp(duo), "quo*div+rem must equal duo")
		require.Equal(rt, -1, rem.Cmp(div), "remainder must be less than divisor")
	})
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/dag/eval"
	"github.com/tindar/bitwidth/dag/lower"
)

func evalExpr(t *testing.T, src string) eval.Result {
	t.Helper()
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	root, err := ParseExpr(src)
	require.NoError(t, err)

	id, err := lower.Lower(e.Arena, root.ID())
	require.NoError(t, err)

	return eval.Evaluate(e.Arena, id)
}

func TestParseExprArithmetic(t *testing.T) {
	res := evalExpr(t, "3_u8 + 4_u8 * 2_u8")
	require.Equal(t, eval.Valid, res.Kind)
	assert.Equal(t, uint64(11), toUint64(res.Value))
}

func TestParseExprParens(t *testing.T) {
	res := evalExpr(t, "(3_u8 + 4_u8) * 2_u8")
	require.Equal(t, eval.Valid, res.Kind)
	assert.Equal(t, uint64(14), toUint64(res.Value))
}

func TestParseExprBitwise(t *testing.T) {
	res := evalExpr(t, "0b1100_u8 & 0b1010_u8 | 0b0001_u8")
	require.Equal(t, eval.Valid, res.Kind)
	assert.Equal(t, uint64(0b1001), toUint64(res.Value))
}

func TestParseExprUnaryNot(t *testing.T) {
	res := evalExpr(t, "~0_u8")
	require.Equal(t, eval.Valid, res.Kind)
	assert.Equal(t, uint64(0xff), toUint64(res.Value))
}

func TestParseExprUnaryMinus(t *testing.T) {
	res := evalExpr(t, "-1_u8")
	require.Equal(t, eval.Valid, res.Kind)
	assert.Equal(t, uint64(0xff), toUint64(res.Value))
}

func TestParseExprComparisons(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"3_u8 < 5_u8", true},
		{"5_u8 < 3_u8", false},
		{"5_u8 == 5_u8", true},
		{"5_u8 != 5_u8", false},
		{"5_u8 <= 5_u8", true},
		{"6_u8 <= 5_u8", false},
	}
	for _, c := range cases {
		res := evalExpr(t, c.src)
		require.Equal(t, eval.Valid, res.Kind, c.src)
		assert.Equal(t, c.want, res.Value.Lsb(), c.src)
	}
}

func TestParseExprRejectsWidthMismatch(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)
	_, err := ParseExpr("5_u8 == 5_u16")
	assert.Error(t, err)
}

func TestParseExprRejectsTrailingGarbage(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)
	_, err := ParseExpr("5_u8 )")
	assert.Error(t, err)
}

func toUint64(b *bits.Bits) uint64 {
	var v uint64
	for i := 0; i < b.BW() && i < 64; i++ {
		if b.GetBit(i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

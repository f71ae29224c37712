package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/digit"
)

func literalBits(bw int, v uint64) *bits.Bits {
	b := bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
	for i := 0; i < bw && i < 64; i++ {
		if v&(1<<uint(i)) != 0 {
			b.SetBit(i, true)
		}
	}
	return b
}

func TestEvaluateLiteralAdd(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewLiteral(literalBits(8, 3))
	b := dag.NewLiteral(literalBits(8, 4))
	c := a.Add(b)

	res := Evaluate(e.Arena, c.ID())
	require.Equal(t, Valid, res.Kind)
	eq, _ := bits.Eq(res.Value, literalBits(8, 7))
	assert.True(t, eq)
}

func TestEvaluateOpaqueIsUnevaluatable(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewOpaque(8)
	b := dag.NewLiteral(literalBits(8, 1))
	c := a.Add(b)

	res := Evaluate(e.Arena, c.ID())
	assert.Equal(t, PassUnevaluatable, res.Kind)

	aRes := Evaluate(e.Arena, a.ID())
	assert.Equal(t, Unevaluatable, aRes.Kind)
}

func TestEvaluateEqualLiterals(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewLiteral(literalBits(8, 5))
	b := dag.NewLiteral(literalBits(8, 5))
	eq := a.Eq(b)

	res := Evaluate(e.Arena, eq.ID())
	require.Equal(t, Valid, res.Kind)
	assert.True(t, res.Value.Lsb())
}

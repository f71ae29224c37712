package lower

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/dag/eval"
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

func TestLowerSubMatchesEvaluation(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewLiteral(literalBits(8, 10))
	b := dag.NewLiteral(literalBits(8, 3))
	c := a.Sub(b)

	want := eval.Evaluate(e.Arena, c.ID())
	require.Equal(t, eval.Valid, want.Kind)

	loweredID, err := Lower(e.Arena, c.ID())
	require.NoError(t, err)

	got := eval.Evaluate(e.Arena, loweredID)
	require.Equal(t, eval.Valid, got.Kind)
	eq, _ := bits.Eq(want.Value, got.Value)
	assert.True(t, eq, "lowered Sub disagrees with direct Sub: want %s got %s", want.Value, got.Value)

	st := e.Arena.Get(loweredID)
	_, isCopy := st.Op.(dag.OpCopy)
	assert.True(t, isCopy, "Lower should graft behind an OpCopy at the original site")
}

func TestLowerNeMatchesDirectEvaluation(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewLiteral(literalBits(8, 5))
	b := dag.NewLiteral(literalBits(8, 6))
	ne := e.Arena.Insert(1, dag.OpNe{Lhs: a.ID(), Rhs: b.ID()}, "")

	direct := eval.Evaluate(e.Arena, ne)
	assert.Equal(t, eval.Valid, direct.Kind, "Ne over literal operands evaluates directly")

	loweredID, err := Lower(e.Arena, ne)
	require.NoError(t, err)

	got := eval.Evaluate(e.Arena, loweredID)
	require.Equal(t, eval.Valid, got.Kind)
	assert.True(t, got.Value.Lsb(), "5 != 6 should evaluate true")
}

func TestLowerNeEqualOperandsEvaluatesFalse(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewLiteral(literalBits(8, 9))
	b := dag.NewLiteral(literalBits(8, 9))
	ne := e.Arena.Insert(1, dag.OpNe{Lhs: a.ID(), Rhs: b.ID()}, "")

	loweredID, err := Lower(e.Arena, ne)
	require.NoError(t, err)

	got := eval.Evaluate(e.Arena, loweredID)
	require.Equal(t, eval.Valid, got.Kind)
	assert.False(t, got.Value.Lsb())
}

func TestLowerUleMatchesExpected(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	cases := []struct {
		lhs, rhs uint64
		want     bool
	}{
		{3, 5, true},
		{5, 5, true},
		{5, 3, false},
	}
	for _, c := range cases {
		a := dag.NewLiteral(literalBits(8, c.lhs))
		b := dag.NewLiteral(literalBits(8, c.rhs))
		ule := e.Arena.Insert(1, dag.OpUle{Lhs: a.ID(), Rhs: b.ID()}, "")

		loweredID, err := Lower(e.Arena, ule)
		require.NoError(t, err)

		got := eval.Evaluate(e.Arena, loweredID)
		require.Equal(t, eval.Valid, got.Kind)
		assert.Equal(t, c.want, got.Value.Lsb(), "%d <= %d", c.lhs, c.rhs)
	}
}

func TestGraftReplacesPlaceholdersNotOtherOpaques(t *testing.T) {
	// Regression guard: a lowering must map each placeholder back to
	// the operand it was built to stand in for, not whichever operand
	// the structural walk happens to reach first; Ule is
	// order-sensitive, so a swap would make 200 <= 100 read true.
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	lhs := dag.NewLiteral(literalBits(8, 200))
	rhs := dag.NewLiteral(literalBits(8, 100))
	ule := e.Arena.Insert(1, dag.OpUle{Lhs: lhs.ID(), Rhs: rhs.ID()}, "")

	loweredID, err := Lower(e.Arena, ule)
	require.NoError(t, err)

	got := eval.Evaluate(e.Arena, loweredID)
	require.Equal(t, eval.Valid, got.Kind)
	assert.False(t, got.Value.Lsb(), "200 <= 100 is false")
}

func TestPruneKeepsOnlyReachableStates(t *testing.T) {
	e := dag.PushEpoch()
	defer dag.PopEpoch(e)

	a := dag.NewLiteral(literalBits(8, 1))
	b := dag.NewLiteral(literalBits(8, 2))
	root := a.Add(b)
	dead := b.Not() // dead: nothing roots this

	reachable := Prune(e.Arena, []dag.StateId{root.ID()})
	assert.True(t, reachable[root.ID()])
	assert.True(t, reachable[a.ID()])
	assert.True(t, reachable[b.ID()])

	allIds := e.Arena.Ids()
	var unreachable []dag.StateId
	for _, id := range allIds {
		if !reachable[id] {
			unreachable = append(unreachable, id)
		}
	}

	if diff := cmp.Diff([]dag.StateId{dead.ID()}, unreachable, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unreachable set mismatch (-want +got):\n%s", diff)
	}
}

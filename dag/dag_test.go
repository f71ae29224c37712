package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopLIFO(t *testing.T) {
	e1 := PushEpoch()
	e2 := PushEpoch()
	assert.Panics(t, func() { PopEpoch(e1) })
	PopEpoch(e2)
	PopEpoch(e1)
}

func TestRecordsOpsIntoActiveEpoch(t *testing.T) {
	e := PushEpoch()
	defer PopEpoch(e)

	a := NewOpaque(8)
	b := NewOpaque(8)
	c := a.Add(b)

	require.Equal(t, 8, c.BW())
	st := e.Arena.Get(c.ID())
	_, isAdd := st.Op.(OpAdd)
	assert.True(t, isAdd)
}

func TestMismatchedEpochPanics(t *testing.T) {
	e1 := PushEpoch()
	a := NewOpaque(8)
	PopEpoch(e1)

	e2 := PushEpoch()
	defer PopEpoch(e2)
	b := NewOpaque(8)

	assert.Panics(t, func() { a.Add(b) })
}

func TestAssertRequiresSingleBit(t *testing.T) {
	e := PushEpoch()
	defer PopEpoch(e)
	a := NewOpaque(8)
	assert.Panics(t, func() { a.Assert() })
}

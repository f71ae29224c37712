package awi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindar/bitwidth/bits"
)

func TestExtAwiBasic(t *testing.T) {
	a := NewExtAwi(40)
	assert.Equal(t, 40, a.BW())
	assert.True(t, a.Bits().IsZero())
}

func TestAwiResizeGrowsAndPreserves(t *testing.T) {
	a := NewAwi(8)
	a.Bits().SetBit(7, true) // -1 if signed, high bit set
	a.SignResize(16)
	require.Equal(t, 16, a.BW())
	assert.True(t, a.Bits().GetBit(7))
	assert.True(t, a.Bits().GetBit(15)) // sign-extended
	assert.True(t, a.Bits().GetBit(8))  // sign fill
}

func TestAwiZeroResizeDoesNotSignExtend(t *testing.T) {
	a := NewAwi(8)
	a.Bits().SetBit(7, true)
	a.ZeroResize(16)
	assert.False(t, a.Bits().GetBit(15))
	assert.True(t, a.Bits().GetBit(7))
}

func TestAwiReserveThenGrowPreservesContent(t *testing.T) {
	a := NewAwi(8)
	a.Bits().SetBit(3, true)
	a.Reserve(256)
	a.ZeroResize(64)
	assert.True(t, a.Bits().GetBit(3))
	assert.Equal(t, 64, a.BW())
}

func TestInlAwi128Bits(t *testing.T) {
	a := NewInlAwi128(100)
	v := a.Bits()
	v.SetBit(99, true)
	eq, _ := bits.Eq(v, v)
	assert.True(t, eq)
	assert.True(t, v.GetBit(99))
}

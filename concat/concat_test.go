package concat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/digit"
)

func newBits(bw int) *bits.Bits {
	return bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
}

func bitsFromUint(bw int, v uint64) *bits.Bits {
	b := newBits(bw)
	for i := 0; i < bw && i < 64; i++ {
		if v&(1<<uint(i)) != 0 {
			b.SetBit(i, true)
		}
	}
	return b
}

func TestParseSimpleConcat(t *testing.T) {
	prog, err := Parse("a, b")
	require.NoError(t, err)
	require.Len(t, prog.Concats, 1)
	assert.Len(t, prog.Concats[0].Components, 2)
}

func TestCompileAndRunConcat(t *testing.T) {
	prog, err := Parse("hi, lo")
	require.NoError(t, err)

	plan, err := Compile(prog, map[string]int{"hi": 4, "lo": 4})
	require.NoError(t, err)

	sink := newBits(8)
	hi := bitsFromUint(4, 0xa)
	lo := bitsFromUint(4, 0x5)
	err = plan.RunBits(sink, map[string]*bits.Bits{"hi": hi, "lo": lo})
	require.NoError(t, err)

	assert.Equal(t, "0xa5_u8", sink.HexString())
}

func TestCompileWithLiteralAndRange(t *testing.T) {
	prog, err := Parse("0xf:4, src[0..4]")
	require.NoError(t, err)

	plan, err := Compile(prog, map[string]int{"src": 8})
	require.NoError(t, err)

	sink := newBits(8)
	src := bitsFromUint(8, 0xab)
	err = plan.RunBits(sink, map[string]*bits.Bits{"src": src})
	require.NoError(t, err)

	assert.Equal(t, "0xfb_u8", sink.HexString())
}

func TestCompileWithFiller(t *testing.T) {
	prog, err := Parse("a, _:4, b")
	require.NoError(t, err)

	plan, err := Compile(prog, map[string]int{"a": 4, "b": 4})
	require.NoError(t, err)
	assert.Equal(t, 12, plan.Concats[0].TotalWidth)

	sink := newBits(12)
	for i := 0; i < 12; i++ {
		sink.SetBit(i, true)
	}
	a := bitsFromUint(4, 0x0)
	b := bitsFromUint(4, 0x0)
	err = plan.RunBits(sink, map[string]*bits.Bits{"a": a, "b": b})
	require.NoError(t, err)

	// the filler's 4 bits in the middle are untouched (still 1 from
	// the all-ones seed), the a/b bits were overwritten with 0.
	assert.False(t, sink.GetBit(0))
	assert.True(t, sink.GetBit(5))
	assert.False(t, sink.GetBit(8))
}

func TestParseRejectsMultipleUnspecifiedFillers(t *testing.T) {
	_, err := Parse("a, _, _, b")
	assert.Error(t, err)
}

func TestParseRejectsLiteralInSink(t *testing.T) {
	_, err := Parse("a; 0x5:4")
	assert.Error(t, err)
}

func TestMultiSinkFieldsBufferToEachSink(t *testing.T) {
	prog, err := Parse("a, b; x, y; p, q")
	require.NoError(t, err)
	require.Len(t, prog.Concats, 3)

	plan, err := Compile(prog, map[string]int{
		"a": 4, "b": 4, "x": 4, "y": 4, "p": 4, "q": 4,
	})
	require.NoError(t, err)

	a := bitsFromUint(4, 0xa)
	b := bitsFromUint(4, 0x5)
	x, y := newBits(4), newBits(4)
	p, q := newBits(4), newBits(4)
	buf := newBits(8)

	err = plan.RunBits(buf, map[string]*bits.Bits{
		"a": a, "b": b, "x": x, "y": y, "p": p, "q": q,
	})
	require.NoError(t, err)

	assert.Equal(t, "0xa5_u8", buf.HexString())
	assert.Equal(t, "0xa_u4", x.HexString())
	assert.Equal(t, "0x5_u4", y.HexString())
	assert.Equal(t, "0xa_u4", p.HexString())
	assert.Equal(t, "0x5_u4", q.HexString())
}

func TestSourceFillerPassesThroughEachSinkIndependently(t *testing.T) {
	// The source has a filler in the middle: the 4 bits it doesn't
	// cover must come from each sink's own prior content, not from a
	// shared default, so two sinks with different pre-existing filler
	// bits must end up with different results.
	prog, err := Parse("a, _:4, b; x; y")
	require.NoError(t, err)

	plan, err := Compile(prog, map[string]int{"a": 4, "b": 4, "x": 12, "y": 12})
	require.NoError(t, err)

	a := bitsFromUint(4, 0x0)
	b := bitsFromUint(4, 0x0)

	x := newBits(12)
	for i := 4; i < 8; i++ {
		x.SetBit(i, true) // x's filler bits start as all-ones
	}
	y := newBits(12) // y's filler bits start as all-zero

	buf := newBits(12)
	err = plan.RunBits(buf, map[string]*bits.Bits{"a": a, "b": b, "x": x, "y": y})
	require.NoError(t, err)

	assert.True(t, x.GetBit(4), "x's filler bits should pass through unchanged")
	assert.True(t, x.GetBit(7))
	assert.False(t, x.GetBit(0), "x's a/b bits should be overwritten by the source")

	assert.False(t, y.GetBit(4), "y's filler bits should pass through unchanged")
	assert.False(t, y.GetBit(7))
	assert.False(t, y.GetBit(0))
}

func TestInitializerWordSeedsUncoveredBitsOnConstruction(t *testing.T) {
	prog, err := Parse("umax: a, _:4")
	require.NoError(t, err)
	assert.Equal(t, InitUmax, prog.Init)

	plan, err := Compile(prog, map[string]int{"a": 4})
	require.NoError(t, err)

	a := bitsFromUint(4, 0x0)
	buf := newBits(8) // starts zeroed; only matches umax: below if Run actually applies it
	err = plan.RunBits(buf, map[string]*bits.Bits{"a": a})
	require.NoError(t, err)

	// a (0x0) overwrites the high nibble; the filler's low nibble
	// comes from the umax: initializer, not from buf's prior zero
	// content. Leading zero nibbles are stripped by HexString.
	assert.Equal(t, "0xf_u8", buf.HexString())
}

func TestInitializerWordNotConfusedWithVarNamedLikeOne(t *testing.T) {
	prog, err := Parse("opaque[0..4], b")
	require.NoError(t, err)
	assert.Equal(t, InitNone, prog.Init, "opaque here is an ordinary variable reference, not the initializer word")
	require.Len(t, prog.Concats[0].Components, 2)
	assert.Equal(t, "opaque", prog.Concats[0].Components[0].Name)
}

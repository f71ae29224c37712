package serde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/digit"
)

func bitsFromUint(bw int, v uint64) *bits.Bits {
	b := bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
	for i := 0; i < bw && i < 64; i++ {
		if v&(1<<uint(i)) != 0 {
			b.SetBit(i, true)
		}
	}
	return b
}

func eqBits(a, b *bits.Bits) bool {
	eq, _ := bits.Eq(a, b)
	return eq
}

func TestFormatHexSeedScenario(t *testing.T) {
	b := bitsFromUint(100, 0xfedcba9876543210)
	assert.Equal(t, "0xfedcba98_76543210_u100", b.HexString())
	assert.Equal(t, "0xfedcba9876543210_u100", Format(b, 16, false, 0))
}

func TestFormatParseRoundTripDecimal(t *testing.T) {
	b := bitsFromUint(32, 123456789)
	s := Format(b, 10, false, 0)
	assert.Equal(t, "123456789_u32", s)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.True(t, eqBits(b, parsed.Bits()))
}

func TestFormatParseRoundTripBinaryOctal(t *testing.T) {
	b := bitsFromUint(16, 0b1010110010100000)
	bin := Format(b, 2, false, 0)
	parsedBin, err := Parse(bin)
	require.NoError(t, err)
	assert.True(t, eqBits(b, parsedBin.Bits()))

	oct := Format(b, 8, false, 0)
	parsedOct, err := Parse(oct)
	require.NoError(t, err)
	assert.True(t, eqBits(b, parsedOct.Bits()))
}

func TestFormatParseSigned(t *testing.T) {
	b := bitsFromUint(8, 5)
	b.Neg(true) // b = -5

	s := Format(b, 10, true, 0)
	assert.Equal(t, "-5_i8", s)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.True(t, eqBits(b, parsed.Bits()))
}

func TestParseRejectsSignOnUnsigned(t *testing.T) {
	_, err := Parse("-5_u8")
	assert.Error(t, err)
}

func TestParseRejectsMissingWidthSuffix(t *testing.T) {
	_, err := Parse("123")
	assert.Error(t, err)
}

func TestFormatParseFixedPointExactHalf(t *testing.T) {
	// 0.5 with 4 fractional bits is exactly representable (0.5 == 1/2).
	raw := bitsFromUint(8, 0b00001000) // integer part 0 (bits 4..7), frac bits 0..3 = 1000b = 8/16 = 0.5
	s := Format(raw, 10, false, 4)
	assert.Equal(t, "0.5_u8_f4", s)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.True(t, eqBits(raw, parsed.Bits()))
}

func TestParseFixedPointBankersRounding(t *testing.T) {
	// With 1 fractional bit, the only representable fractions are 0.0
	// and 0.5: decimal 0.25 sits exactly halfway between them, and
	// decimal 0.75 sits exactly halfway between 0.5 and the next whole
	// unit. Round-half-to-even picks the even candidate each time: 0
	// for 0.25 (0 is even, 1 is odd), and a full-unit carry for 0.75
	// (1 is odd, 2 is even).
	p1, err := Parse("0.25_u8_f1")
	require.NoError(t, err)
	assert.True(t, eqBits(bitsFromUint(8, 0), p1.Bits()), "got %s", p1.Bits())

	p2, err := Parse("0.75_u8_f1")
	require.NoError(t, err)
	assert.True(t, eqBits(bitsFromUint(8, 2), p2.Bits()), "got %s", p2.Bits())
}

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	b := bitsFromUint(40, 0x1122334455)
	data := ToBytes(b)
	require.Len(t, data, 5)
	assert.Equal(t, []byte{0x55, 0x44, 0x33, 0x22, 0x11}, data)

	back, err := FromBytes(data, 40)
	require.NoError(t, err)
	assert.True(t, eqBits(b, back.Bits()))
}

func TestFromBytesTooShort(t *testing.T) {
	_, err := FromBytes([]byte{1, 2}, 32)
	assert.Error(t, err)
}

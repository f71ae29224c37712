package bits

import (
	"fmt"
	"strings"
)

// formatRadix renders the significant digits of b in the given
// power-of-two radix, grouped in runs of 32/bitsPerChar characters
// (8 hex, 10 octal or 32 binary digits) separated by underscores,
// most significant group first, matching the seed
// scenario 0xfedcba98_76543210_u100 (the full 100-bit width renders as
// just its 16 significant hex digits, grouped 8-and-8, not zero-padded
// out to 25 characters).
func (b *Bits) formatRadix(bitsPerChar int, digits string, prefix string) string {
	nChars := (b.bw + bitsPerChar - 1) / bitsPerChar
	out := make([]byte, nChars)
	for i := 0; i < nChars; i++ {
		start := i * bitsPerChar
		v := 0
		for j := 0; j < bitsPerChar; j++ {
			bitIdx := start + j
			if bitIdx < b.bw && b.GetBit(bitIdx) {
				v |= 1 << j
			}
		}
		out[nChars-1-i] = digits[v]
	}
	s := string(out)
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}

	groupSize := 32 / bitsPerChar
	if groupSize < 1 {
		groupSize = 1
	}
	var grouped strings.Builder
	rem := len(s) % groupSize
	if rem != 0 {
		grouped.WriteString(s[:rem])
		if rem != len(s) {
			grouped.WriteByte('_')
		}
		s = s[rem:]
	}
	for len(s) > 0 {
		grouped.WriteString(s[:groupSize])
		s = s[groupSize:]
		if len(s) > 0 {
			grouped.WriteByte('_')
		}
	}
	return fmt.Sprintf("%s%s_u%d", prefix, grouped.String(), b.bw)
}

// HexString renders b as lowercase hex, e.g. "0xfedcba98_76543210_u100".
func (b *Bits) HexString() string {
	return b.formatRadix(4, "0123456789abcdef", "0x")
}

// UpperHexString renders b as uppercase hex.
func (b *Bits) UpperHexString() string {
	return b.formatRadix(4, "0123456789ABCDEF", "0X")
}

// OctString renders b in octal.
func (b *Bits) OctString() string {
	return b.formatRadix(3, "01234567", "0o")
}

// BinString renders b in binary.
func (b *Bits) BinString() string {
	return b.formatRadix(1, "01", "0b")
}

// String implements fmt.Stringer, defaulting to hex.
func (b *Bits) String() string {
	return b.HexString()
}

// Format implements fmt.Formatter, supporting %x, %X, %o, %b, and %v
// (hex), plus the '#' flag is accepted but ignored since the 0x/0o/0b
// prefix is always emitted.
func (b *Bits) Format(f fmt.State, verb rune) {
	var s string
	switch verb {
	case 'x', 'v':
		s = b.HexString()
	case 'X':
		s = b.UpperHexString()
	case 'o':
		s = b.OctString()
	case 'b':
		s = b.BinString()
	default:
		s = b.HexString()
	}
	fmt.Fprint(f, s)
}

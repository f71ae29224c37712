// Package serde implements the string and byte codec for bit strings:
// a self-describing literal format (optional sign, radix prefix,
// digits, optional fixed-point fraction, and a mandatory _uN/_iN
// width suffix plus an optional _fN fixed-point suffix) and a portable
// little-endian byte representation.
//
// Radix 10, the one non-power-of-two radix accepted, routes digit
// conversion through bits.UDivide (formatting) and bits.ShortCinMul
// (parsing). Parsing uses the same ShortCinMul schedule for the
// power-of-two radixes, whose formatting instead reads bit groups
// directly; no separate arbitrary-precision decimal engine is used.
package serde

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tindar/bitwidth/awi"
	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/digit"
)

// ParseError reports a malformed literal, carrying the byte offset
// into the original source string nearest the failure.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("serde: parse error at byte %d: %s", e.Pos, e.Msg)
}

func parseErr(pos int, format string, a ...any) error {
	return errors.WithStack(&ParseError{Pos: pos, Msg: fmt.Sprintf(format, a...)})
}

func validateRadix(radix int) {
	switch radix {
	case 2, 8, 10, 16:
		return
	default:
		panic(fmt.Sprintf("serde: unsupported radix %d (only 2, 8, 10, 16)", radix))
	}
}

func digitTable(radix int) string {
	const full = "0123456789abcdef"
	return full[:radix]
}

func radixPrefix(radix int) string {
	switch radix {
	case 2:
		return "0b"
	case 8:
		return "0o"
	case 16:
		return "0x"
	default:
		return ""
	}
}

func digitValue(c byte, radix int) (int, bool) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'f':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		v = int(c-'A') + 10
	default:
		return 0, false
	}
	if v >= radix {
		return 0, false
	}
	return v, true
}

func readValue(b *bits.Bits, from, width int) int {
	v := 0
	for i := 0; i < width && from+i < b.BW(); i++ {
		if b.GetBit(from + i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

func isZeroRange(b *bits.Bits, lo, hi int) bool {
	for i := lo; i < hi; i++ {
		if b.GetBit(i) {
			return false
		}
	}
	return true
}

func clearRange(b *bits.Bits, lo, hi int) {
	for i := lo; i < hi; i++ {
		b.SetBit(i, false)
	}
}

func newScratch(bw int) *bits.Bits {
	return bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
}

// Format renders b as a self-describing literal: an optional "-" (only
// ever emitted when signed is true and b's msb is set), the radix
// prefix, the magnitude's significant digits, an optional "."
// fractional part when fracBits > 0, and a trailing _uN or _iN width
// suffix (plus _fN when fracBits > 0). Always round-trips through
// Parse. Panics if radix isn't one of 2, 8, 10, 16.
func Format(b *bits.Bits, radix int, signed bool, fracBits int) string {
	validateRadix(radix)
	mag := b.Clone()
	neg := false
	if signed && mag.Msb() {
		neg = true
		mag.Neg(true)
	}

	intPart := mag
	if fracBits > 0 {
		intPart = mag.Clone()
		intPart.Lshr(fracBits)
	}

	table := digitTable(radix)
	var intStr string
	switch radix {
	case 2:
		intStr = formatIntPartPow2(intPart, 1, table)
	case 8:
		intStr = formatIntPartPow2(intPart, 3, table)
	case 16:
		intStr = formatIntPartPow2(intPart, 4, table)
	default:
		intStr = formatIntPartDecimal(intPart, table)
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(radixPrefix(radix))
	sb.WriteString(intStr)
	if fracBits > 0 {
		sb.WriteByte('.')
		frac := formatFractionExact(mag, fracBits, radix, table)
		if frac == "" {
			frac = "0"
		}
		sb.WriteString(frac)
	}
	if signed {
		fmt.Fprintf(&sb, "_i%d", b.BW())
	} else {
		fmt.Fprintf(&sb, "_u%d", b.BW())
	}
	if fracBits > 0 {
		fmt.Fprintf(&sb, "_f%d", fracBits)
	}
	return sb.String()
}

func formatIntPartPow2(v *bits.Bits, bitsPerChar int, table string) string {
	bw := v.BW()
	nChars := (bw + bitsPerChar - 1) / bitsPerChar
	out := make([]byte, nChars)
	for i := 0; i < nChars; i++ {
		val := readValue(v, i*bitsPerChar, bitsPerChar)
		out[nChars-1-i] = table[val]
	}
	s := string(out)
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func formatIntPartDecimal(v *bits.Bits, table string) string {
	if v.IsZero() {
		return "0"
	}
	bw := v.BW()
	n := v.Clone()
	ten := newScratch(bw)
	ten.SetBit(1, true)
	ten.SetBit(3, true) // 10 = 0b1010
	quo := newScratch(bw)
	rem := newScratch(bw)

	var rev []byte
	for !n.IsZero() {
		quo.UDivide(rem, n, ten)
		rev = append(rev, table[readValue(rem, 0, 4)])
		n.CopyFrom(quo)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return string(rev)
}

// formatFractionExact expands mag's low fracBits bits into radix
// digits by repeated multiplication, which is always exact (no
// rounding): since the multiplier is always even for every radix this
// package supports, the binary fraction's remainder provably reaches
// zero within fracBits iterations.
func formatFractionExact(mag *bits.Bits, fracBits, radix int, table string) string {
	workW := fracBits + 4
	num := newScratch(workW)
	for i := 0; i < fracBits; i++ {
		num.SetBit(i, mag.GetBit(i))
	}
	var sb strings.Builder
	for i := 0; i < fracBits; i++ {
		if isZeroRange(num, 0, fracBits) {
			break
		}
		num.ShortCinMul(0, digit.Digit(radix))
		sb.WriteByte(table[readValue(num, fracBits, 4)])
		clearRange(num, fracBits, workW)
	}
	return sb.String()
}

// Parse reads a literal in the format Format produces (see the package
// doc) and returns the value as a fresh, exactly-sized Awi. Fractional
// digits beyond what fracBits can exactly represent are rounded to
// nearest, ties to even.
func Parse(s string) (*awi.Awi, error) {
	body, bw, signed, fracBits, err := splitSuffix(s)
	if err != nil {
		return nil, err
	}
	if bw <= 0 {
		return nil, parseErr(len(s), "width must be positive")
	}

	pos := 0
	neg := false
	if pos < len(body) && (body[pos] == '-' || body[pos] == '+') {
		neg = body[pos] == '-'
		pos++
	}
	if neg && !signed {
		return nil, parseErr(0, "a _u (unsigned) literal cannot carry a sign")
	}

	radix := 10
	rest := body[pos:]
	switch {
	case strings.HasPrefix(rest, "0b") || strings.HasPrefix(rest, "0B"):
		radix, rest = 2, rest[2:]
	case strings.HasPrefix(rest, "0o") || strings.HasPrefix(rest, "0O"):
		radix, rest = 8, rest[2:]
	case strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X"):
		radix, rest = 16, rest[2:]
	}
	validateRadix(radix)

	intDigits, fracDigits, hasDot := strings.Cut(rest, ".")
	if !hasDot {
		fracDigits = ""
	}
	intDigits = strings.ReplaceAll(intDigits, "_", "")
	fracDigits = strings.ReplaceAll(fracDigits, "_", "")
	if intDigits == "" {
		intDigits = "0"
	}
	if fracDigits != "" && fracBits == 0 {
		return nil, parseErr(pos, "fractional digits require a _fN suffix")
	}

	intVal := newScratch(bw)
	for i := 0; i < len(intDigits); i++ {
		d, ok := digitValue(intDigits[i], radix)
		if !ok {
			return nil, parseErr(pos+i, "invalid digit %q for radix %d", intDigits[i], radix)
		}
		intVal.ShortCinMul(digit.Digit(d), digit.Digit(radix))
	}

	if fracBits > 0 {
		intVal.Shl(fracBits)
		fracVal, carry, err := computeFracScaled(fracDigits, radix, fracBits, pos+len(intDigits)+1)
		if err != nil {
			return nil, err
		}
		if fracVal != nil {
			bits.Field(intVal, 0, fracVal, 0, fracBits)
		}
		if carry && fracBits < bw {
			unit := newScratch(bw)
			unit.SetBit(fracBits, true)
			intVal.Add(intVal, unit)
		}
	}

	if neg {
		intVal.Neg(true)
	}

	result := awi.NewAwi(bw)
	result.Bits().CopyFrom(intVal)
	return result, nil
}

// computeFracScaled converts fracDigits (read as a radix-N fraction)
// into the nearest fracBits-wide binary fraction, rounding ties to
// even. Returns nil if fracDigits is empty (fraction is exactly zero).
// carry reports that rounding pushed the fraction up to a full unit
// (2^fracBits); the caller must add that unit into the integer part
// itself and treat the fraction as zero.
func computeFracScaled(fracDigits string, radix, fracBits, errPos int) (fracVal *bits.Bits, carry bool, err error) {
	if fracDigits == "" {
		return nil, false, nil
	}
	n := len(fracDigits)
	workW := n*4 + fracBits + 8
	numerator := newScratch(workW)
	denom := newScratch(workW)
	denom.Uone()
	for i := 0; i < n; i++ {
		d, ok := digitValue(fracDigits[i], radix)
		if !ok {
			return nil, false, parseErr(errPos+i, "invalid fractional digit %q for radix %d", fracDigits[i], radix)
		}
		numerator.ShortCinMul(digit.Digit(d), digit.Digit(radix))
		denom.ShortCinMul(0, digit.Digit(radix))
	}

	scaled := numerator.Clone()
	scaled.Shl(fracBits)

	quo := newScratch(workW)
	rem := newScratch(workW)
	quo.UDivide(rem, scaled, denom)

	doubledRem := rem.Clone()
	doubledRem.Shl(1)
	ult, _ := bits.Ult(denom, doubledRem)
	eq, _ := bits.Eq(denom, doubledRem)
	switch {
	case ult:
		quo.Inc(true)
	case eq && quo.Lsb():
		quo.Inc(true)
	}

	if quo.GetBit(fracBits) {
		return nil, true, nil
	}
	result := newScratch(fracBits)
	result.ZeroResize(quo)
	return result, false, nil
}

// splitSuffix strips the trailing _fN (optional) and _uN/_iN
// (mandatory) suffixes from s, returning the remaining literal body.
func splitSuffix(s string) (body string, bw int, signed bool, fracBits int, err error) {
	rest := s
	if idx := suffixIndex(rest, "_f"); idx >= 0 {
		fb, convErr := strconv.Atoi(rest[idx+2:])
		if convErr != nil || fb <= 0 {
			return "", 0, false, 0, parseErr(idx, "malformed _f suffix")
		}
		fracBits = fb
		rest = rest[:idx]
	}

	uIdx := suffixIndex(rest, "_u")
	iIdx := suffixIndex(rest, "_i")
	switch {
	case uIdx >= 0:
		w, convErr := strconv.Atoi(rest[uIdx+2:])
		if convErr != nil {
			return "", 0, false, 0, parseErr(uIdx, "malformed _u suffix")
		}
		bw, signed, rest = w, false, rest[:uIdx]
	case iIdx >= 0:
		w, convErr := strconv.Atoi(rest[iIdx+2:])
		if convErr != nil {
			return "", 0, false, 0, parseErr(iIdx, "malformed _i suffix")
		}
		bw, signed, rest = w, true, rest[:iIdx]
	default:
		return "", 0, false, 0, parseErr(len(s), "literal must end with a _uN or _iN width suffix")
	}
	if bw <= 0 {
		return "", 0, false, 0, parseErr(len(s), "width must be positive")
	}
	return rest, bw, signed, fracBits, nil
}

// suffixIndex finds the last occurrence of marker in s such that
// everything after it is one or more decimal digits, or -1 if there is
// no such occurrence.
func suffixIndex(s, marker string) int {
	i := strings.LastIndex(s, marker)
	if i < 0 {
		return -1
	}
	digits := s[i+len(marker):]
	if digits == "" {
		return -1
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return -1
		}
	}
	return i
}

// ToBytes renders b as a portable little-endian byte slice, exactly
// ceil(bw/8) bytes long.
func ToBytes(b *bits.Bits) []byte {
	n := (b.BW() + 7) / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		word, shift := i/8, uint((i%8)*8)
		out[i] = byte(b.Digit(word) >> shift)
	}
	return out
}

// FromBytes reads bw bits from a little-endian byte slice (as produced
// by ToBytes) into a freshly allocated Awi. Returns an error if data is
// too short.
func FromBytes(data []byte, bw int) (*awi.Awi, error) {
	if bw <= 0 {
		return nil, errors.New("serde: bitwidth must be positive")
	}
	need := (bw + 7) / 8
	if len(data) < need {
		return nil, errors.Errorf("serde: need %d bytes for %d bits, got %d", need, bw, len(data))
	}
	a := awi.NewAwi(bw)
	v := a.Bits()
	for w := 0; w < bits.DigitsForBits(bw); w++ {
		var d digit.Digit
		for byteIdx := 0; byteIdx < 8; byteIdx++ {
			idx := w*8 + byteIdx
			if idx >= need {
				break
			}
			d |= digit.Digit(data[idx]) << uint(byteIdx*8)
		}
		v.SetDigit(w, d)
	}
	return a, nil
}

package dag

import (
	concretebits "github.com/tindar/bitwidth/bits"
)

// Bits is the symbolic mimicking type: it looks and behaves like an
// ordinary bit string, but every method records an Op node into the
// active epoch's arena instead of touching memory. A Bits value is
// only valid while the epoch that created it remains open.
type Bits struct {
	id    StateId
	bw    int
	epoch *Epoch
}

func mustActiveEpoch() *Epoch {
	e := ActiveEpoch()
	if e == nil {
		panic("dag: no active epoch; call PushEpoch first")
	}
	return e
}

func wrap(e *Epoch, bw int, op Op) *Bits {
	id := e.Arena.Insert(bw, op, "")
	return &Bits{id: id, bw: bw, epoch: e}
}

// ID returns the StateId this value is recorded as.
func (b *Bits) ID() StateId { return b.id }

// BW returns the bitwidth.
func (b *Bits) BW() int { return b.bw }

// NewLiteral records a constant value into the active epoch.
func NewLiteral(value *concretebits.Bits) *Bits {
	e := mustActiveEpoch()
	return wrap(e, value.BW(), OpLiteral{Value: value})
}

// NewOpaque records a bw-bit externally-supplied value (e.g. a
// function argument) into the active epoch.
func NewOpaque(bw int) *Bits {
	e := mustActiveEpoch()
	return wrap(e, bw, OpOpaque{NZBW: bw})
}

// Reify wraps an id already present in e's arena as a mimicking Bits
// value, for callers that built a state directly via Arena.Insert
// (e.g. a comparison op with no dedicated Bits constructor) and now
// want to keep composing with the ordinary method set.
func Reify(e *Epoch, bw int, id StateId) *Bits {
	return &Bits{id: id, bw: bw, epoch: e}
}

func (b *Bits) mustSameEpoch(rhs *Bits) {
	if b.epoch != rhs.epoch {
		panic("dag: operands belong to different epochs")
	}
}

// Not returns a new value with every bit of b inverted.
func (b *Bits) Not() *Bits {
	return wrap(b.epoch, b.bw, OpNot{X: b.id})
}

// Or, And, Xor are bitwise binary ops. Panic on bitwidth mismatch.
func (b *Bits) Or(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpOr{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) And(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpAnd{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) Xor(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpXor{Lhs: b.id, Rhs: rhs.id})
}

// Add, Sub are the addition family.
func (b *Bits) Add(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpAdd{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) Sub(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpSub{Lhs: b.id, Rhs: rhs.id})
}

// Mul multiplies b by rhs, truncated to b's width.
func (b *Bits) Mul(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpMul{Lhs: b.id, Rhs: rhs.id})
}

// Shl, Lshr, Ashr shift b by a dynamically-valued amount s.
func (b *Bits) Shl(s *Bits) *Bits {
	b.mustSameEpoch(s)
	return wrap(b.epoch, b.bw, OpShl{X: b.id, S: s.id})
}

func (b *Bits) Lshr(s *Bits) *Bits {
	b.mustSameEpoch(s)
	return wrap(b.epoch, b.bw, OpLshr{X: b.id, S: s.id})
}

func (b *Bits) Ashr(s *Bits) *Bits {
	b.mustSameEpoch(s)
	return wrap(b.epoch, b.bw, OpAshr{X: b.id, S: s.id})
}

// Eq, Ult return a single-bit Bits.
func (b *Bits) Eq(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, 1, OpEq{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) Ult(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, 1, OpUlt{Lhs: b.id, Rhs: rhs.id})
}

// Mux selects lhs when sel's bit 0 is 0, rhs when it is 1.
func Mux(lhs, rhs, sel *Bits) *Bits {
	lhs.mustSameEpoch(rhs)
	lhs.mustSameEpoch(sel)
	mustSameBW(lhs, rhs)
	return wrap(lhs.epoch, lhs.bw, OpMux{Lhs: lhs.id, Rhs: rhs.id, Sel: sel.id})
}

// ZeroResize, SignResize change bitwidth to w.
func (b *Bits) ZeroResize(w int) *Bits {
	return wrap(b.epoch, w, OpZeroResize{X: b.id, W: w})
}

func (b *Bits) SignResize(w int) *Bits {
	return wrap(b.epoch, w, OpSignResize{X: b.id, W: w})
}

// Field splices width bits of rhs starting at fromStart into a copy of
// b starting at toStart.
func (b *Bits) Field(toStart int, rhs *Bits, fromStart, width int) *Bits {
	b.mustSameEpoch(rhs)
	return wrap(b.epoch, b.bw, OpField{Lhs: b.id, ToStart: toStart, Rhs: rhs.id, FromStart: fromStart, Width: width})
}

// Mul multiplies b by rhs, truncated to b's width.
// (defined above; Rotl/Rotr/UDivide/IDivide/Rev/Abs/CinSum/comparison/
// Lut-family/count-family/predicate constructors follow.)

// Rotl, Rotr rotate b by a dynamically-valued amount s.
func (b *Bits) Rotl(s *Bits) *Bits {
	b.mustSameEpoch(s)
	return wrap(b.epoch, b.bw, OpRotl{X: b.id, S: s.id})
}

func (b *Bits) Rotr(s *Bits) *Bits {
	b.mustSameEpoch(s)
	return wrap(b.epoch, b.bw, OpRotr{X: b.id, S: s.id})
}

// Rev reverses the bit order of b.
func (b *Bits) Rev() *Bits {
	return wrap(b.epoch, b.bw, OpRev{X: b.id})
}

// Abs replaces b with its absolute value, treating b as signed.
func (b *Bits) Abs() *Bits {
	return wrap(b.epoch, b.bw, OpAbs{X: b.id})
}

// CinSum computes lhs + rhs + cin (cin a single-bit value), the
// general form Add/Sub compile down to.
func CinSum(cin, lhs, rhs *Bits) *Bits {
	lhs.mustSameEpoch(rhs)
	lhs.mustSameEpoch(cin)
	mustSameBW(lhs, rhs)
	return wrap(lhs.epoch, lhs.bw, OpCinSum{Cin: cin.id, Lhs: lhs.id, Rhs: rhs.id})
}

// Rsb computes rhs - lhs (reverse subtract).
func (b *Bits) Rsb(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, b.bw, OpRsb{Lhs: b.id, Rhs: rhs.id})
}

// Inc adds cin (a single-bit value) to b.
func (b *Bits) Inc(cin *Bits) *Bits {
	b.mustSameEpoch(cin)
	return wrap(b.epoch, b.bw, OpInc{X: b.id, Cin: cin.id})
}

// Dec computes b-1+cin (cin a single-bit value), so a set cin leaves
// b unchanged.
func (b *Bits) Dec(cin *Bits) *Bits {
	b.mustSameEpoch(cin)
	return wrap(b.epoch, b.bw, OpDec{X: b.id, Cin: cin.id})
}

// Neg negates b (two's complement) when negate's bit 0 is set.
func (b *Bits) Neg(negate *Bits) *Bits {
	b.mustSameEpoch(negate)
	return wrap(b.epoch, b.bw, OpNeg{X: b.id, Negate: negate.id})
}

// UDivide, IDivide record a (quotient, remainder) division pair as two
// states sharing the same operands. Both return (quo, rem).
func UDivide(duo, div *Bits) (quo, rem *Bits) {
	duo.mustSameEpoch(div)
	mustSameBW(duo, div)
	quo = wrap(duo.epoch, duo.bw, OpUDivide{Duo: duo.id, Div: div.id, WantRem: false})
	rem = wrap(duo.epoch, duo.bw, OpUDivide{Duo: duo.id, Div: div.id, WantRem: true})
	return quo, rem
}

func IDivide(duo, div *Bits) (quo, rem *Bits) {
	duo.mustSameEpoch(div)
	mustSameBW(duo, div)
	quo = wrap(duo.epoch, duo.bw, OpIDivide{Duo: duo.id, Div: div.id, WantRem: false})
	rem = wrap(duo.epoch, duo.bw, OpIDivide{Duo: duo.id, Div: div.id, WantRem: true})
	return quo, rem
}

// Ne, Ule, Ilt, Ile are the remaining comparisons, each returning a
// single-bit Bits.
func (b *Bits) Ne(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, 1, OpNe{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) Ule(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, 1, OpUle{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) Ilt(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, 1, OpIlt{Lhs: b.id, Rhs: rhs.id})
}

func (b *Bits) Ile(rhs *Bits) *Bits {
	b.mustSameEpoch(rhs)
	mustSameBW(b, rhs)
	return wrap(b.epoch, 1, OpIle{Lhs: b.id, Rhs: rhs.id})
}

// Lut looks up an entryWidth-wide entry (entryWidth = b.bw) in table
// at the dynamically-valued position inx.
func (b *Bits) Lut(table, inx *Bits) *Bits {
	b.mustSameEpoch(table)
	b.mustSameEpoch(inx)
	return wrap(b.epoch, b.bw, OpLut{Table: table.id, Inx: inx.id, EntryW: b.bw})
}

// LutSet writes entry into table at the dynamically-valued position
// inx, returning the new table value.
func LutSet(table, entry, inx *Bits) *Bits {
	table.mustSameEpoch(entry)
	table.mustSameEpoch(inx)
	return wrap(table.epoch, table.bw, OpLutSet{Table: table.id, Entry: entry.id, Inx: inx.id})
}

// Get reads the single bit of b at the dynamically-valued position
// inx, returning a single-bit Bits.
func (b *Bits) Get(inx *Bits) *Bits {
	b.mustSameEpoch(inx)
	return wrap(b.epoch, 1, OpGet{X: b.id, Inx: inx.id})
}

// Set writes bit (a single-bit Bits) into b at the dynamically-valued
// position inx, returning the new value.
func (b *Bits) Set(inx, bit *Bits) *Bits {
	b.mustSameEpoch(inx)
	b.mustSameEpoch(bit)
	return wrap(b.epoch, b.bw, OpSet{X: b.id, Inx: inx.id, Bit: bit.id})
}

// MulAdd computes b + lhs*rhs, truncated to b's width.
func (b *Bits) MulAdd(lhs, rhs *Bits) *Bits {
	b.mustSameEpoch(lhs)
	b.mustSameEpoch(rhs)
	return wrap(b.epoch, b.bw, OpMulAdd{Acc: b.id, Lhs: lhs.id, Rhs: rhs.id})
}

// Funnel performs a power-of-two-width funnel shift: b (of width 2w)
// supplies a window of width w starting at bit position s (of width
// log2(w)) of the doubled value. w is given explicitly since it can't
// be inferred from b alone.
func (b *Bits) Funnel(w int, s *Bits) *Bits {
	b.mustSameEpoch(s)
	return wrap(b.epoch, w, OpFunnel{X: b.id, S: s.id})
}

// IsZero, IsUmax, IsImax, IsImin, IsUone, Lsb, Msb are unary
// predicates, each returning a single-bit Bits.
func (b *Bits) IsZero() *Bits { return wrap(b.epoch, 1, OpIsZero{X: b.id}) }
func (b *Bits) IsUmax() *Bits { return wrap(b.epoch, 1, OpIsUmax{X: b.id}) }
func (b *Bits) IsImax() *Bits { return wrap(b.epoch, 1, OpIsImax{X: b.id}) }
func (b *Bits) IsImin() *Bits { return wrap(b.epoch, 1, OpIsImin{X: b.id}) }
func (b *Bits) IsUone() *Bits { return wrap(b.epoch, 1, OpIsUone{X: b.id}) }
func (b *Bits) Lsb() *Bits    { return wrap(b.epoch, 1, OpLsb{X: b.id}) }
func (b *Bits) Msb() *Bits    { return wrap(b.epoch, 1, OpMsb{X: b.id}) }

// Lz, Tz, Sig, CountOnes are the bit-counting family. Each returns a
// w-bit Bits (w given explicitly, since the count doesn't follow b's
// own width).
func (b *Bits) Lz(w int) *Bits        { return wrap(b.epoch, w, OpLz{X: b.id, W: w}) }
func (b *Bits) Tz(w int) *Bits        { return wrap(b.epoch, w, OpTz{X: b.id, W: w}) }
func (b *Bits) Sig(w int) *Bits       { return wrap(b.epoch, w, OpSig{X: b.id, W: w}) }
func (b *Bits) CountOnes(w int) *Bits { return wrap(b.epoch, w, OpCountOnes{X: b.id, W: w}) }

// Resize changes b's width to w, filling any new high bits with the
// dynamically-valued extension bit.
func (b *Bits) Resize(w int, extension *Bits) *Bits {
	b.mustSameEpoch(extension)
	return wrap(b.epoch, w, OpResize{X: b.id, W: w, Extension: extension.id})
}

// ZeroResizeOverflow, SignResizeOverflow report (as a single-bit Bits)
// whether resizing b to w bits would be lossy.
func (b *Bits) ZeroResizeOverflow(w int) *Bits {
	return wrap(b.epoch, 1, OpZeroResizeOverflow{X: b.id, W: w})
}

func (b *Bits) SignResizeOverflow(w int) *Bits {
	return wrap(b.epoch, 1, OpSignResizeOverflow{X: b.id, W: w})
}

// Assert registers b (which must be a single-bit value) as an
// assertion checked by its epoch.
func (b *Bits) Assert() {
	if b.bw != 1 {
		panic("dag: Assert requires a 1-bit value")
	}
	b.epoch.RegisterAssertion(b.id)
}

func mustSameBW(a, b *Bits) {
	if a.bw != b.bw {
		panic("dag: bitwidth mismatch")
	}
}

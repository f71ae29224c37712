package dag

import "github.com/tindar/bitwidth/bits"

// Op is the tagged union of everything a State can record. Each
// concrete type below corresponds to one arity grouping named in the
// operation catalog this mirrors: leaves carry no operands, unary/
// binary/ternary carry a fixed number, and the field family carries
// the extra static integer parameters a field-style splice needs.
type Op interface {
	// Operands returns every StateId this op reads, in a fixed order
	// specific to the op (e.g. lhs before rhs).
	Operands() []StateId
	// OpName is a short, stable name used in diagnostics and dumps.
	OpName() string
}

// --- Leaves: no operands ---

// OpLiteral is a constant value with no operands.
type OpLiteral struct{ Value *bits.Bits }

func (OpLiteral) Operands() []StateId { return nil }
func (OpLiteral) OpName() string      { return "Literal" }

// OpOpaque is an externally-supplied value (a function input, or a
// lowering placeholder) with no recorded operands.
type OpOpaque struct{ NZBW int }

func (OpOpaque) Operands() []StateId { return nil }
func (OpOpaque) OpName() string      { return "Opaque" }

// --- Structural ---

// OpAssert marks a single-bit state as an assertion checked by its
// epoch.
type OpAssert struct{ X StateId }

func (o OpAssert) Operands() []StateId { return []StateId{o.X} }
func (OpAssert) OpName() string        { return "Assert" }

// OpCopy is an identity node, used by the lowerer to graft a
// replacement subgraph in without disturbing referents of the
// original site.
type OpCopy struct{ X StateId }

func (o OpCopy) Operands() []StateId { return []StateId{o.X} }
func (OpCopy) OpName() string        { return "Copy" }

// OpConcat concatenates its operands, most significant first.
type OpConcat struct{ Xs []StateId }

func (o OpConcat) Operands() []StateId { return o.Xs }
func (OpConcat) OpName() string        { return "Concat" }

// --- Static-indexed (primitive gate set target) ---

// OpStaticGet reads a single statically-known bit of X.
type OpStaticGet struct {
	X   StateId
	Inx int
}

func (o OpStaticGet) Operands() []StateId { return []StateId{o.X} }
func (OpStaticGet) OpName() string        { return "StaticGet" }

// OpStaticSet writes Bit into a statically-known bit position of X.
type OpStaticSet struct {
	X   StateId
	Inx int
	Bit StateId
}

func (o OpStaticSet) Operands() []StateId { return []StateId{o.X, o.Bit} }
func (OpStaticSet) OpName() string        { return "StaticSet" }

// OpStaticLut looks Inx up in a compile-time-constant Lut.
type OpStaticLut struct {
	Inx StateId
	Lut *bits.Bits
}

func (o OpStaticLut) Operands() []StateId { return []StateId{o.Inx} }
func (OpStaticLut) OpName() string        { return "StaticLut" }

// --- Width-changing ---

// OpZeroResize changes X's width to W, filling new high bits with 0.
type OpZeroResize struct {
	X StateId
	W int
}

func (o OpZeroResize) Operands() []StateId { return []StateId{o.X} }
func (OpZeroResize) OpName() string        { return "ZeroResize" }

// OpSignResize changes X's width to W, sign-extending.
type OpSignResize struct {
	X StateId
	W int
}

func (o OpSignResize) Operands() []StateId { return []StateId{o.X} }
func (OpSignResize) OpName() string        { return "SignResize" }

// --- Unary ---

// OpNot bitwise-inverts X.
type OpNot struct{ X StateId }

func (o OpNot) Operands() []StateId { return []StateId{o.X} }
func (OpNot) OpName() string        { return "Not" }

// OpRev reverses the bit order of X.
type OpRev struct{ X StateId }

func (o OpRev) Operands() []StateId { return []StateId{o.X} }
func (OpRev) OpName() string        { return "Rev" }

// OpAbs replaces X with its absolute value (signed).
type OpAbs struct{ X StateId }

func (o OpAbs) Operands() []StateId { return []StateId{o.X} }
func (OpAbs) OpName() string        { return "Abs" }

// --- Binary ---

// OpOr, OpAnd, OpXor are bitwise binary ops.
type OpOr struct{ Lhs, Rhs StateId }
type OpAnd struct{ Lhs, Rhs StateId }
type OpXor struct{ Lhs, Rhs StateId }

func (o OpOr) Operands() []StateId  { return []StateId{o.Lhs, o.Rhs} }
func (OpOr) OpName() string         { return "Or" }
func (o OpAnd) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpAnd) OpName() string        { return "And" }
func (o OpXor) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpXor) OpName() string        { return "Xor" }

// OpAdd, OpSub are the addition family.
type OpAdd struct{ Lhs, Rhs StateId }
type OpSub struct{ Lhs, Rhs StateId }

func (o OpAdd) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpAdd) OpName() string        { return "Add" }
func (o OpSub) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpSub) OpName() string        { return "Sub" }

// OpCinSum computes Lhs + Rhs + Cin (a single-bit operand), the
// general form Add/Sub delegate to.
type OpCinSum struct{ Cin, Lhs, Rhs StateId }

func (o OpCinSum) Operands() []StateId { return []StateId{o.Cin, o.Lhs, o.Rhs} }
func (OpCinSum) OpName() string        { return "CinSum" }

// OpMul multiplies Lhs by Rhs, truncating to the result's width.
type OpMul struct{ Lhs, Rhs StateId }

func (o OpMul) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpMul) OpName() string        { return "Mul" }

// OpUDivide, OpIDivide compute (Quo, Rem) pairs; they appear as two
// states sharing the same operands, distinguished by which half of
// the pair a given state represents.
type OpUDivide struct {
	Duo, Div StateId
	WantRem  bool
}
type OpIDivide struct {
	Duo, Div StateId
	WantRem  bool
}

func (o OpUDivide) Operands() []StateId { return []StateId{o.Duo, o.Div} }
func (OpUDivide) OpName() string        { return "UDivide" }
func (o OpIDivide) Operands() []StateId { return []StateId{o.Duo, o.Div} }
func (OpIDivide) OpName() string        { return "IDivide" }

// OpShl, OpLshr, OpAshr, OpRotl, OpRotr shift/rotate X by a
// dynamically-valued amount S.
type OpShl struct{ X, S StateId }
type OpLshr struct{ X, S StateId }
type OpAshr struct{ X, S StateId }
type OpRotl struct{ X, S StateId }
type OpRotr struct{ X, S StateId }

func (o OpShl) Operands() []StateId  { return []StateId{o.X, o.S} }
func (OpShl) OpName() string         { return "Shl" }
func (o OpLshr) Operands() []StateId { return []StateId{o.X, o.S} }
func (OpLshr) OpName() string        { return "Lshr" }
func (o OpAshr) Operands() []StateId { return []StateId{o.X, o.S} }
func (OpAshr) OpName() string        { return "Ashr" }
func (o OpRotl) Operands() []StateId { return []StateId{o.X, o.S} }
func (OpRotl) OpName() string        { return "Rotl" }
func (o OpRotr) Operands() []StateId { return []StateId{o.X, o.S} }
func (OpRotr) OpName() string        { return "Rotr" }

// OpEq, OpNe, OpUlt, OpUle, OpIlt, OpIle are comparisons, always
// producing a single-bit result.
type OpEq struct{ Lhs, Rhs StateId }
type OpNe struct{ Lhs, Rhs StateId }
type OpUlt struct{ Lhs, Rhs StateId }
type OpUle struct{ Lhs, Rhs StateId }
type OpIlt struct{ Lhs, Rhs StateId }
type OpIle struct{ Lhs, Rhs StateId }

func (o OpEq) Operands() []StateId  { return []StateId{o.Lhs, o.Rhs} }
func (OpEq) OpName() string         { return "Eq" }
func (o OpNe) Operands() []StateId  { return []StateId{o.Lhs, o.Rhs} }
func (OpNe) OpName() string         { return "Ne" }
func (o OpUlt) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpUlt) OpName() string        { return "Ult" }
func (o OpUle) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpUle) OpName() string        { return "Ule" }
func (o OpIlt) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpIlt) OpName() string        { return "Ilt" }
func (o OpIle) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpIle) OpName() string        { return "Ile" }

// OpLut looks Inx up in dynamically-valued Table, where Table holds
// 2^Inx.bw entries of EntryW bits each and the result is EntryW bits
// wide.
type OpLut struct {
	Table, Inx StateId
	EntryW     int
}

func (o OpLut) Operands() []StateId { return []StateId{o.Table, o.Inx} }
func (OpLut) OpName() string        { return "Lut" }

// OpRsb computes Rhs - Lhs (reverse subtract).
type OpRsb struct{ Lhs, Rhs StateId }

func (o OpRsb) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpRsb) OpName() string        { return "Rsb" }

// OpInc adds the single-bit Cin to X (X+Cin); OpDec computes X-1+Cin,
// so a set Cin leaves X unchanged.
type OpInc struct{ X, Cin StateId }
type OpDec struct{ X, Cin StateId }

func (o OpInc) Operands() []StateId { return []StateId{o.X, o.Cin} }
func (OpInc) OpName() string        { return "Inc" }
func (o OpDec) Operands() []StateId { return []StateId{o.X, o.Cin} }
func (OpDec) OpName() string        { return "Dec" }

// OpNeg negates X (two's complement) when Negate (a single-bit
// operand) is set, otherwise passes X through unchanged.
type OpNeg struct{ X, Negate StateId }

func (o OpNeg) Operands() []StateId { return []StateId{o.X, o.Negate} }
func (OpNeg) OpName() string        { return "Neg" }

// OpGet reads the single bit of X at the dynamically-valued position
// Inx.
type OpGet struct{ X, Inx StateId }

func (o OpGet) Operands() []StateId { return []StateId{o.X, o.Inx} }
func (OpGet) OpName() string        { return "Get" }

// OpSet writes Bit into X at the dynamically-valued position Inx.
type OpSet struct{ X, Inx, Bit StateId }

func (o OpSet) Operands() []StateId { return []StateId{o.X, o.Inx, o.Bit} }
func (OpSet) OpName() string        { return "Set" }

// OpMulAdd computes Acc + Lhs*Rhs, truncated to Acc's width.
type OpMulAdd struct{ Acc, Lhs, Rhs StateId }

func (o OpMulAdd) Operands() []StateId { return []StateId{o.Acc, o.Lhs, o.Rhs} }
func (OpMulAdd) OpName() string        { return "MulAdd" }

// OpFunnel performs a power-of-two-width funnel shift: X (of width 2w)
// supplies a window of width w starting at bit position S (of width
// log2(w)) of the doubled value. The result is w bits wide.
type OpFunnel struct{ X, S StateId }

func (o OpFunnel) Operands() []StateId { return []StateId{o.X, o.S} }
func (OpFunnel) OpName() string        { return "Funnel" }

// --- Unary predicates (1-bit result) ---

type OpIsZero struct{ X StateId }
type OpIsUmax struct{ X StateId }
type OpIsImax struct{ X StateId }
type OpIsImin struct{ X StateId }
type OpIsUone struct{ X StateId }
type OpLsb struct{ X StateId }
type OpMsb struct{ X StateId }

func (o OpIsZero) Operands() []StateId { return []StateId{o.X} }
func (OpIsZero) OpName() string        { return "IsZero" }
func (o OpIsUmax) Operands() []StateId { return []StateId{o.X} }
func (OpIsUmax) OpName() string        { return "IsUmax" }
func (o OpIsImax) Operands() []StateId { return []StateId{o.X} }
func (OpIsImax) OpName() string        { return "IsImax" }
func (o OpIsImin) Operands() []StateId { return []StateId{o.X} }
func (OpIsImin) OpName() string        { return "IsImin" }
func (o OpIsUone) Operands() []StateId { return []StateId{o.X} }
func (OpIsUone) OpName() string        { return "IsUone" }
func (o OpLsb) Operands() []StateId     { return []StateId{o.X} }
func (OpLsb) OpName() string            { return "Lsb" }
func (o OpMsb) Operands() []StateId     { return []StateId{o.X} }
func (OpMsb) OpName() string            { return "Msb" }

// --- Count family (unary, explicit result width W) ---

type OpLz struct {
	X StateId
	W int
}
type OpTz struct {
	X StateId
	W int
}
type OpSig struct {
	X StateId
	W int
}
type OpCountOnes struct {
	X StateId
	W int
}

func (o OpLz) Operands() []StateId        { return []StateId{o.X} }
func (OpLz) OpName() string               { return "Lz" }
func (o OpTz) Operands() []StateId        { return []StateId{o.X} }
func (OpTz) OpName() string               { return "Tz" }
func (o OpSig) Operands() []StateId       { return []StateId{o.X} }
func (OpSig) OpName() string              { return "Sig" }
func (o OpCountOnes) Operands() []StateId { return []StateId{o.X} }
func (OpCountOnes) OpName() string        { return "CountOnes" }

// OpResize changes X's width to W, filling any new high bits with the
// value of the single-bit Extension operand (0 or 1), the dynamic
// generalization of ZeroResize/SignResize.
type OpResize struct {
	X         StateId
	W         int
	Extension StateId
}

func (o OpResize) Operands() []StateId { return []StateId{o.X, o.Extension} }
func (OpResize) OpName() string        { return "Resize" }

// OpZeroResizeOverflow, OpSignResizeOverflow report (as a 1-bit result)
// whether resizing X to W bits and then resizing back would lose
// information, i.e. whether the resize was lossy.
type OpZeroResizeOverflow struct {
	X StateId
	W int
}
type OpSignResizeOverflow struct {
	X StateId
	W int
}

func (o OpZeroResizeOverflow) Operands() []StateId { return []StateId{o.X} }
func (OpZeroResizeOverflow) OpName() string         { return "ZeroResizeOverflow" }
func (o OpSignResizeOverflow) Operands() []StateId { return []StateId{o.X} }
func (OpSignResizeOverflow) OpName() string         { return "SignResizeOverflow" }

// OpInvalid and OpArgument are leaf error markers: a state that
// couldn't be constructed (a malformed argument, or a point the
// builder explicitly marked unreachable), carrying a diagnostic
// message instead of a value.
type OpInvalid struct{ Msg string }
type OpArgument struct{ Msg string }

func (OpInvalid) Operands() []StateId  { return nil }
func (OpInvalid) OpName() string       { return "Invalid" }
func (OpArgument) Operands() []StateId { return nil }
func (OpArgument) OpName() string      { return "Argument" }

// --- Ternary ---

// OpMux selects Lhs (Sel=0) or Rhs (Sel=1).
type OpMux struct{ Lhs, Rhs, Sel StateId }

func (o OpMux) Operands() []StateId { return []StateId{o.Lhs, o.Rhs, o.Sel} }
func (OpMux) OpName() string        { return "Mux" }

// OpLutSet writes Entry into Table at position Inx.
type OpLutSet struct{ Table, Entry, Inx StateId }

func (o OpLutSet) Operands() []StateId { return []StateId{o.Table, o.Entry, o.Inx} }
func (OpLutSet) OpName() string        { return "LutSet" }

// --- Field family ---

// OpField splices Width bits of Rhs starting at FromStart into Lhs
// starting at ToStart.
type OpField struct {
	Lhs       StateId
	ToStart   int
	Rhs       StateId
	FromStart int
	Width     int
}

func (o OpField) Operands() []StateId { return []StateId{o.Lhs, o.Rhs} }
func (OpField) OpName() string        { return "Field" }

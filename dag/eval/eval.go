// Package eval evaluates a StateArena down to concrete bits.Bits
// values wherever every leaf feeding a state is a literal, using an
// iterative depth-first walk (no recursion, so evaluating a deeply
// chained expression never blows the Go call stack).
package eval

import (
	"fmt"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/digit"
)

// Kind is the tag of a Result, mirroring the small sum type the
// original evaluator returns: most states either produce a concrete
// Value (Valid) or can't because some leaf feeding them is an Opaque
// (Unevaluatable) or an earlier operand already came back
// unevaluatable (PassUnevaluatable/Pass).
type Kind int

const (
	Valid Kind = iota
	Pass
	PassUnevaluatable
	Noop
	Unevaluatable
	AssertionSuccess
	AssertionFailure
	EvalErrorKind
)

// Result is the outcome of evaluating one state.
type Result struct {
	Kind  Kind
	Value *bits.Bits
	Err   error
}

func valid(v *bits.Bits) Result { return Result{Kind: Valid, Value: v} }
func unevaluatable() Result     { return Result{Kind: Unevaluatable} }
func passUnevaluatable() Result { return Result{Kind: PassUnevaluatable} }
func evalErr(format string, a ...any) Result {
	return Result{Kind: EvalErrorKind, Err: fmt.Errorf(format, a...)}
}

// Evaluate walks every state id reaches (transitively) and returns the
// result of evaluating id itself. Uses an explicit stack with a
// two-visit (expand, then reduce) pattern and a visit set to guard
// against evaluating the same shared subexpression twice.
func Evaluate(arena *dag.StateArena, id dag.StateId) Result {
	memo := make(map[dag.StateId]Result)
	inProgress := make(map[dag.StateId]bool)

	type frame struct {
		id       dag.StateId
		expanded bool
	}
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if _, done := memo[f.id]; done {
			stack = stack[:len(stack)-1]
			continue
		}
		if !f.expanded {
			if inProgress[f.id] {
				memo[f.id] = evalErr("dag/eval: cycle detected at state %d", f.id)
				stack = stack[:len(stack)-1]
				continue
			}
			inProgress[f.id] = true
			stack[len(stack)-1].expanded = true
			st := arena.Get(f.id)
			for _, o := range st.Op.Operands() {
				if _, done := memo[o]; !done {
					stack = append(stack, frame{id: o})
				}
			}
			continue
		}
		st := arena.Get(f.id)
		memo[f.id] = evalOne(st, memo)
		delete(inProgress, f.id)
		stack = stack[:len(stack)-1]
	}
	return memo[id]
}

// operandValue fetches the concrete value memoized for operand o, or
// reports that the enclosing op can't be evaluated.
func operandValue(memo map[dag.StateId]Result, o dag.StateId) (*bits.Bits, bool) {
	r, ok := memo[o]
	if !ok || r.Kind != Valid {
		return nil, false
	}
	return r.Value, true
}

func evalOne(st *dag.State, memo map[dag.StateId]Result) Result {
	switch op := st.Op.(type) {
	case dag.OpLiteral:
		return valid(op.Value.Clone())
	case dag.OpOpaque:
		return unevaluatable()
	case dag.OpCopy:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(v.Clone())
	case dag.OpNot:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		r := v.Clone()
		r.Not()
		return valid(r)
	case dag.OpRev:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		r := v.Clone()
		r.Rev()
		return valid(r)
	case dag.OpAbs:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		r := v.Clone()
		r.Abs()
		return valid(r)
	case dag.OpOr, dag.OpAnd, dag.OpXor:
		return evalBitwise(op, memo)
	case dag.OpAdd:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		res := newLike(l)
		if ok := res.Add(l, r); !ok {
			return evalErr("dag/eval: Add: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpSub:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		res := newLike(l)
		if ok := res.Sub(l, r); !ok {
			return evalErr("dag/eval: Sub: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpRsb:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		res := newLike(l)
		if ok := res.Rsb(l, r); !ok {
			return evalErr("dag/eval: Rsb: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpCinSum:
		cin, ok1 := operandValue(memo, op.Cin)
		l, ok2 := operandValue(memo, op.Lhs)
		r, ok3 := operandValue(memo, op.Rhs)
		if !ok1 || !ok2 || !ok3 {
			return passUnevaluatable()
		}
		res := newLike(l)
		if _, _, ok := res.CinSum(cin.Lsb(), l, r); !ok {
			return evalErr("dag/eval: CinSum: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpInc:
		v, ok1 := operandValue(memo, op.X)
		cin, ok2 := operandValue(memo, op.Cin)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := v.Clone()
		res.Inc(cin.Lsb())
		return valid(res)
	case dag.OpDec:
		v, ok1 := operandValue(memo, op.X)
		cin, ok2 := operandValue(memo, op.Cin)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := v.Clone()
		res.Dec(cin.Lsb())
		return valid(res)
	case dag.OpNeg:
		v, ok1 := operandValue(memo, op.X)
		neg, ok2 := operandValue(memo, op.Negate)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := v.Clone()
		res.Neg(neg.Lsb())
		return valid(res)
	case dag.OpMul:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		res := newLike(l)
		if ok := res.Mul(l, r); !ok {
			return evalErr("dag/eval: Mul: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpMulAdd:
		acc, ok1 := operandValue(memo, op.Acc)
		l, ok2 := operandValue(memo, op.Lhs)
		r, ok3 := operandValue(memo, op.Rhs)
		if !ok1 || !ok2 || !ok3 {
			return passUnevaluatable()
		}
		res := acc.Clone()
		if ok := res.MulAdd(l, r); !ok {
			return evalErr("dag/eval: MulAdd: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpUDivide:
		d, v, ok := binaryOperands(memo, op.Duo, op.Div)
		if !ok {
			return passUnevaluatable()
		}
		quo, rem := newLike(d), newLike(d)
		if ok := quo.UDivide(rem, d, v); !ok {
			return evalErr("dag/eval: UDivide: division by zero or bitwidth mismatch")
		}
		if op.WantRem {
			return valid(rem)
		}
		return valid(quo)
	case dag.OpIDivide:
		d, v, ok := binaryOperands(memo, op.Duo, op.Div)
		if !ok {
			return passUnevaluatable()
		}
		quo, rem := newLike(d), newLike(d)
		if ok := quo.IDivide(rem, d, v); !ok {
			return evalErr("dag/eval: IDivide: division by zero or bitwidth mismatch")
		}
		if op.WantRem {
			return valid(rem)
		}
		return valid(quo)
	case dag.OpShl:
		return evalShift(op.X, op.S, memo, (*bits.Bits).Shl)
	case dag.OpLshr:
		return evalShift(op.X, op.S, memo, (*bits.Bits).Lshr)
	case dag.OpAshr:
		return evalShift(op.X, op.S, memo, (*bits.Bits).Ashr)
	case dag.OpRotl:
		return evalShift(op.X, op.S, memo, (*bits.Bits).RotL)
	case dag.OpRotr:
		return evalShift(op.X, op.S, memo, (*bits.Bits).RotR)
	case dag.OpEq:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		cmp, _ := bits.Eq(l, r)
		return valid(boolBits(cmp))
	case dag.OpNe:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		cmp, _ := bits.Ne(l, r)
		return valid(boolBits(cmp))
	case dag.OpUlt:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		cmp, _ := bits.Ult(l, r)
		return valid(boolBits(cmp))
	case dag.OpUle:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		cmp, _ := bits.Ule(l, r)
		return valid(boolBits(cmp))
	case dag.OpIlt:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		cmp, _ := bits.Ilt(l, r)
		return valid(boolBits(cmp))
	case dag.OpIle:
		l, r, ok := binaryOperands(memo, op.Lhs, op.Rhs)
		if !ok {
			return passUnevaluatable()
		}
		cmp, _ := bits.Ile(l, r)
		return valid(boolBits(cmp))
	case dag.OpLut:
		table, ok1 := operandValue(memo, op.Table)
		inx, ok2 := operandValue(memo, op.Inx)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := newBits(op.EntryW)
		if ok := res.Lut(table, inx); !ok {
			return evalErr("dag/eval: Lut: inconsistent table/index widths")
		}
		return valid(res)
	case dag.OpLutSet:
		table, ok1 := operandValue(memo, op.Table)
		entry, ok2 := operandValue(memo, op.Entry)
		inx, ok3 := operandValue(memo, op.Inx)
		if !ok1 || !ok2 || !ok3 {
			return passUnevaluatable()
		}
		res := table.Clone()
		if ok := bits.LutSet(res, entry, inx); !ok {
			return evalErr("dag/eval: LutSet: inconsistent table/entry/index widths")
		}
		return valid(res)
	case dag.OpGet:
		v, ok1 := operandValue(memo, op.X)
		inx, ok2 := operandValue(memo, op.Inx)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		i := intValue(inx)
		if i < 0 || i >= v.BW() {
			return evalErr("dag/eval: Get: index %d out of range for %d-bit value", i, v.BW())
		}
		return valid(boolBits(v.GetBit(i)))
	case dag.OpSet:
		v, ok1 := operandValue(memo, op.X)
		inx, ok2 := operandValue(memo, op.Inx)
		bit, ok3 := operandValue(memo, op.Bit)
		if !ok1 || !ok2 || !ok3 {
			return passUnevaluatable()
		}
		i := intValue(inx)
		if i < 0 || i >= v.BW() {
			return evalErr("dag/eval: Set: index %d out of range for %d-bit value", i, v.BW())
		}
		res := v.Clone()
		res.SetBit(i, bit.Lsb())
		return valid(res)
	case dag.OpFunnel:
		v, ok1 := operandValue(memo, op.X)
		s, ok2 := operandValue(memo, op.S)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := newBits(st.NZBW)
		if ok := bits.Funnel(res, v, s); !ok {
			return evalErr("dag/eval: Funnel: inconsistent widths")
		}
		return valid(res)
	case dag.OpMux:
		l, ok1 := operandValue(memo, op.Lhs)
		r, ok2 := operandValue(memo, op.Rhs)
		s, ok3 := operandValue(memo, op.Sel)
		if !ok1 || !ok2 || !ok3 {
			return passUnevaluatable()
		}
		res := newLike(l)
		if ok := res.Mux(l, r, s.Lsb()); !ok {
			return evalErr("dag/eval: Mux: bitwidth mismatch")
		}
		return valid(res)
	case dag.OpZeroResize:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		res := newBits(op.W)
		res.ZeroResize(v)
		return valid(res)
	case dag.OpSignResize:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		res := newBits(op.W)
		res.SignResize(v)
		return valid(res)
	case dag.OpResize:
		v, ok1 := operandValue(memo, op.X)
		ext, ok2 := operandValue(memo, op.Extension)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := newBits(op.W)
		res.Resize(v, ext.Lsb())
		return valid(res)
	case dag.OpZeroResizeOverflow:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		resized := newBits(op.W)
		resized.ZeroResize(v)
		back := newLike(v)
		back.ZeroResize(resized)
		eq, _ := bits.Eq(back, v)
		return valid(boolBits(!eq))
	case dag.OpSignResizeOverflow:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		resized := newBits(op.W)
		resized.SignResize(v)
		back := newLike(v)
		back.SignResize(resized)
		eq, _ := bits.Eq(back, v)
		return valid(boolBits(!eq))
	case dag.OpIsZero:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(boolBits(v.IsZero()))
	case dag.OpIsUmax:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(boolBits(v.IsUmax()))
	case dag.OpIsImax:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		cmp := newLike(v)
		cmp.Imax()
		eq, _ := bits.Eq(cmp, v)
		return valid(boolBits(eq))
	case dag.OpIsImin:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		cmp := newLike(v)
		cmp.Imin()
		eq, _ := bits.Eq(cmp, v)
		return valid(boolBits(eq))
	case dag.OpIsUone:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		cmp := newLike(v)
		cmp.Uone()
		eq, _ := bits.Eq(cmp, v)
		return valid(boolBits(eq))
	case dag.OpLsb:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(boolBits(v.Lsb()))
	case dag.OpMsb:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(boolBits(v.Msb()))
	case dag.OpLz:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(uintBits(op.W, v.Lz()))
	case dag.OpTz:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(uintBits(op.W, v.Tz()))
	case dag.OpSig:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(uintBits(op.W, v.Sig()))
	case dag.OpCountOnes:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		return valid(uintBits(op.W, v.CountOnes()))
	case dag.OpConcat:
		return evalConcat(op, memo)
	case dag.OpStaticGet:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		if op.Inx < 0 || op.Inx >= v.BW() {
			return evalErr("dag/eval: StaticGet: index %d out of range for %d-bit value", op.Inx, v.BW())
		}
		return valid(boolBits(v.GetBit(op.Inx)))
	case dag.OpStaticSet:
		v, ok1 := operandValue(memo, op.X)
		bit, ok2 := operandValue(memo, op.Bit)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		if op.Inx < 0 || op.Inx >= v.BW() {
			return evalErr("dag/eval: StaticSet: index %d out of range for %d-bit value", op.Inx, v.BW())
		}
		res := v.Clone()
		res.SetBit(op.Inx, bit.Lsb())
		return valid(res)
	case dag.OpStaticLut:
		inx, ok := operandValue(memo, op.Inx)
		if !ok {
			return passUnevaluatable()
		}
		res := newBits(st.NZBW)
		if ok := res.Lut(op.Lut, inx); !ok {
			return evalErr("dag/eval: StaticLut: inconsistent table/index widths")
		}
		return valid(res)
	case dag.OpField:
		l, ok1 := operandValue(memo, op.Lhs)
		r, ok2 := operandValue(memo, op.Rhs)
		if !ok1 || !ok2 {
			return passUnevaluatable()
		}
		res := l.Clone()
		if ok := bits.Field(res, op.ToStart, r, op.FromStart, op.Width); !ok {
			return evalErr("dag/eval: Field: out-of-range splice")
		}
		return valid(res)
	case dag.OpInvalid:
		return evalErr("dag/eval: invalid state: %s", op.Msg)
	case dag.OpArgument:
		return evalErr("dag/eval: argument error: %s", op.Msg)
	case dag.OpAssert:
		v, ok := operandValue(memo, op.X)
		if !ok {
			return passUnevaluatable()
		}
		if v.Lsb() {
			return Result{Kind: AssertionSuccess}
		}
		return Result{Kind: AssertionFailure}
	default:
		return evalErr("dag/eval: unsupported op %s", st.Op.OpName())
	}
}

func evalBitwise(op dag.Op, memo map[dag.StateId]Result) Result {
	var lhs, rhs dag.StateId
	switch o := op.(type) {
	case dag.OpOr:
		lhs, rhs = o.Lhs, o.Rhs
	case dag.OpAnd:
		lhs, rhs = o.Lhs, o.Rhs
	case dag.OpXor:
		lhs, rhs = o.Lhs, o.Rhs
	}
	l, r, ok := binaryOperands(memo, lhs, rhs)
	if !ok {
		return passUnevaluatable()
	}
	res := l.Clone()
	var applyOk bool
	switch op.(type) {
	case dag.OpOr:
		applyOk = res.Or(r)
	case dag.OpAnd:
		applyOk = res.And(r)
	case dag.OpXor:
		applyOk = res.Xor(r)
	}
	if !applyOk {
		return evalErr("dag/eval: %s: bitwidth mismatch", op.OpName())
	}
	return valid(res)
}

func evalConcat(op dag.OpConcat, memo map[dag.StateId]Result) Result {
	vals := make([]*bits.Bits, len(op.Xs))
	total := 0
	for i, x := range op.Xs {
		v, ok := operandValue(memo, x)
		if !ok {
			return passUnevaluatable()
		}
		vals[i] = v
		total += v.BW()
	}
	res := newBits(total)
	pos := total
	for _, v := range vals {
		pos -= v.BW()
		bits.Field(res, pos, v, 0, v.BW())
	}
	return valid(res)
}

// evalShift evaluates a dynamically-shifted unary op: apply takes the
// concrete shift amount and reports whether it was in range.
func evalShift(x, s dag.StateId, memo map[dag.StateId]Result, apply func(*bits.Bits, int) bool) Result {
	v, ok1 := operandValue(memo, x)
	sVal, ok2 := operandValue(memo, s)
	if !ok1 || !ok2 {
		return passUnevaluatable()
	}
	res := v.Clone()
	if !apply(res, intValue(sVal)) {
		return evalErr("dag/eval: shift amount out of range")
	}
	return valid(res)
}

func binaryOperands(memo map[dag.StateId]Result, lhs, rhs dag.StateId) (*bits.Bits, *bits.Bits, bool) {
	l, ok1 := operandValue(memo, lhs)
	r, ok2 := operandValue(memo, rhs)
	return l, r, ok1 && ok2
}

func newBits(bw int) *bits.Bits {
	return bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
}

func newLike(b *bits.Bits) *bits.Bits {
	return newBits(b.BW())
}

func boolBits(v bool) *bits.Bits {
	b := newBits(1)
	b.SetBit(0, v)
	return b
}

// uintBits builds a w-bit value holding the unsigned integer n,
// truncated to w bits (used by the bit-counting op family, whose
// result width is chosen by the caller rather than derived from the
// operand).
func uintBits(w int, n int) *bits.Bits {
	b := newBits(w)
	for i := 0; i < w && i < 63; i++ {
		if n&(1<<uint(i)) != 0 {
			b.SetBit(i, true)
		}
	}
	return b
}

// intValue reads v's low bits back out as a plain int, used for
// dynamically-valued shift/rotate amounts and bit indices. Values
// beyond 62 bits saturate rather than overflow, which is harmless
// since no real bitwidth or index reaches that range.
func intValue(v *bits.Bits) int {
	n := 0
	for i := 0; i < v.BW() && i < 62; i++ {
		if v.GetBit(i) {
			n |= 1 << uint(i)
		}
	}
	for i := 62; i < v.BW(); i++ {
		if v.GetBit(i) {
			return 1 << 62
		}
	}
	return n
}

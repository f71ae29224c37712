// Package lower rewrites non-primitive Op nodes into the primitive
// gate set {Opaque, Literal, Copy, StaticGet, StaticSet, StaticLut}.
// A handful of representative ops (Sub, Ne, Ule, Ile) get a dedicated
// rewrite via the "meta" technique: build the replacement as an
// ordinary expression over dag.Bits under a nested epoch, then Graft
// the result back over the original site. Everything else that isn't
// already primitive goes through genericLower, a brute-force
// truth-table bit-blast bounded by a total-input-bit cutoff: it is
// always correct but only applies below the cutoff, since the table
// it builds is exponential in the combined operand width.
package lower

import (
	"github.com/pkg/errors"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/dag/eval"
	"github.com/tindar/bitwidth/digit"
)

// genericLowerCutoff bounds genericLower to ops whose operands carry
// at most this many bits combined; above it the 2^n-row truth table
// would be too large to be worth building, and the op is left
// unlowered.
const genericLowerCutoff = 16

// Lower rewrites the state at id within arena, returning the id of the
// lowered result. Ops already in the primitive gate set, and the leaf
// error markers and Assert (which isn't a value to bit-blast), are
// left untouched. Sub, Ne, Ule, and Ile get the dedicated meta
// rewrite; everything else falls through to genericLower.
func Lower(arena *dag.StateArena, id dag.StateId) (dag.StateId, error) {
	st := arena.Get(id)
	switch op := st.Op.(type) {
	case dag.OpSub:
		return lowerSub(arena, id, op)
	case dag.OpNe:
		return lowerNe(arena, id, op)
	case dag.OpUle:
		return lowerUle(arena, id, op)
	case dag.OpIle:
		return lowerIle(arena, id, op)
	case dag.OpLiteral, dag.OpOpaque, dag.OpCopy, dag.OpStaticGet, dag.OpStaticSet,
		dag.OpStaticLut, dag.OpAssert, dag.OpInvalid, dag.OpArgument:
		return id, nil
	default:
		return genericLower(arena, id, op)
	}
}

// genericLower replaces the state at id with an equivalent circuit
// built only from Literal/StaticGet/StaticSet/StaticLut: it enumerates
// every combination of the op's combined operand bits, concretely
// evaluates the op for each (via a throwaway nested epoch and
// eval.Evaluate), and uses the resulting truth table as one
// per-output-bit StaticLut keyed by an index assembled bit-by-bit out
// of StaticGet reads of the live operands.
func genericLower(arena *dag.StateArena, id dag.StateId, op dag.Op) (dag.StateId, error) {
	operands := op.Operands()
	widths := make([]int, len(operands))
	total := 0
	for i, o := range operands {
		w := arena.Get(o).NZBW
		widths[i] = w
		total += w
	}
	resultW := arena.Get(id).NZBW
	if total == 0 || total > genericLowerCutoff {
		return id, nil
	}

	rows := 1 << uint(total)
	lut := make([]*bits.Bits, resultW)
	for b := range lut {
		lut[b] = bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(rows)), rows)
	}

	e := dag.PushEpoch()
	for combo := 0; combo < rows; combo++ {
		literalIds := make([]dag.StateId, len(operands))
		bitPos := 0
		for i, w := range widths {
			v := zeroBits(w)
			for j := 0; j < w; j++ {
				if combo&(1<<uint(bitPos)) != 0 {
					v.SetBit(j, true)
				}
				bitPos++
			}
			literalIds[i] = e.Arena.Insert(w, dag.OpLiteral{Value: v}, "")
		}
		evalOp := remapOperands(op, literalIds)
		evalID := e.Arena.Insert(resultW, evalOp, "")
		res := eval.Evaluate(e.Arena, evalID)
		if res.Kind != eval.Valid {
			dag.PopEpoch(e)
			return id, errors.Errorf("dag/lower: generic lowering: op %s not concretely evaluable", op.OpName())
		}
		for b := 0; b < resultW; b++ {
			if res.Value.GetBit(b) {
				lut[b].SetBit(combo, true)
			}
		}
	}
	dag.PopEpoch(e)

	idxW := total
	idx := arena.Insert(idxW, dag.OpLiteral{Value: zeroBits(idxW)}, "")
	bitPos := 0
	for i, o := range operands {
		for j := 0; j < widths[i]; j++ {
			bit := arena.Insert(1, dag.OpStaticGet{X: o, Inx: j}, "")
			idx = arena.Insert(idxW, dag.OpStaticSet{X: idx, Inx: bitPos, Bit: bit}, "")
			bitPos++
		}
	}

	result := arena.Insert(resultW, dag.OpLiteral{Value: zeroBits(resultW)}, "")
	for b := 0; b < resultW; b++ {
		bitVal := arena.Insert(1, dag.OpStaticLut{Inx: idx, Lut: lut[b]}, "")
		result = arena.Insert(resultW, dag.OpStaticSet{X: result, Inx: b, Bit: bitVal}, "")
	}

	arena.Get(id).Op = dag.OpCopy{X: result}
	return id, nil
}

func zeroBits(bw int) *bits.Bits {
	return bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
}

// metaBuild opens a nested epoch, hands build one opaque dag.Bits
// placeholder per entry in widths (standing in for the real operands,
// which live in the host arena and can't be referenced directly from
// inside the nested epoch), and returns the epoch, the id build's
// result was recorded under, and the placeholders' ids in the same
// order widths was given in - the order Graft expects originalOperands
// to line up with.
func metaBuild(widths []int, build func(operands []*dag.Bits) *dag.Bits) (epoch *dag.Epoch, root dag.StateId, placeholders []dag.StateId) {
	e := dag.PushEpoch()
	operands := make([]*dag.Bits, len(widths))
	placeholders = make([]dag.StateId, len(widths))
	for i, w := range widths {
		operands[i] = dag.NewOpaque(w)
		placeholders[i] = operands[i].ID()
	}
	result := build(operands)
	root = result.ID()
	dag.PopEpoch(e)
	return e, root, placeholders
}

func literalOne(bw int) *bits.Bits {
	b := bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bw)), bw)
	b.SetBit(0, true)
	return b
}

func lowerSub(arena *dag.StateArena, id dag.StateId, op dag.OpSub) (dag.StateId, error) {
	lhsW := arena.Get(op.Lhs).NZBW
	rhsW := arena.Get(op.Rhs).NZBW
	sub, subRoot, placeholders := metaBuild([]int{lhsW, rhsW}, func(ops []*dag.Bits) *dag.Bits {
		lhs, rhs := ops[0], ops[1]
		one := dag.NewLiteral(literalOne(lhs.BW()))
		return lhs.Add(rhs.Not()).Add(one)
	})
	return Graft(arena, id, sub, subRoot, placeholders, []dag.StateId{op.Lhs, op.Rhs})
}

func lowerNe(arena *dag.StateArena, id dag.StateId, op dag.OpNe) (dag.StateId, error) {
	lhsW := arena.Get(op.Lhs).NZBW
	rhsW := arena.Get(op.Rhs).NZBW
	sub, subRoot, placeholders := metaBuild([]int{lhsW, rhsW}, func(ops []*dag.Bits) *dag.Bits {
		return ops[0].Eq(ops[1]).Not()
	})
	return Graft(arena, id, sub, subRoot, placeholders, []dag.StateId{op.Lhs, op.Rhs})
}

func lowerUle(arena *dag.StateArena, id dag.StateId, op dag.OpUle) (dag.StateId, error) {
	lhsW := arena.Get(op.Lhs).NZBW
	rhsW := arena.Get(op.Rhs).NZBW
	sub, subRoot, placeholders := metaBuild([]int{lhsW, rhsW}, func(ops []*dag.Bits) *dag.Bits {
		// a <= b  <=>  !(b < a)
		return ops[1].Ult(ops[0]).Not()
	})
	return Graft(arena, id, sub, subRoot, placeholders, []dag.StateId{op.Lhs, op.Rhs})
}

func lowerIle(arena *dag.StateArena, id dag.StateId, op dag.OpIle) (dag.StateId, error) {
	lhsW := arena.Get(op.Lhs).NZBW
	rhsW := arena.Get(op.Rhs).NZBW
	sub, subRoot, placeholders := metaBuild([]int{lhsW, rhsW}, func(ops []*dag.Bits) *dag.Bits {
		// a <=s b  <=>  !(b <s a)
		return ops[1].Ilt(ops[0]).Not()
	})
	return Graft(arena, id, sub, subRoot, placeholders, []dag.StateId{op.Lhs, op.Rhs})
}

// Graft splices sub's states into site, replacing each id in
// placeholders with the corresponding live operand id from
// originalOperands (same order, same length), and rewrites the state
// at `at` into an OpCopy pointing at the grafted result, so anything
// in site already referencing `at` now reads the lowered form.
// Returns at.
func Graft(site *dag.StateArena, at dag.StateId, sub *dag.Epoch, subRoot dag.StateId, placeholders, originalOperands []dag.StateId) (dag.StateId, error) {
	if len(placeholders) != len(originalOperands) {
		return at, errors.New("dag/lower: placeholder/operand count mismatch")
	}
	if sub.Arena.Len() == 0 {
		return at, errors.New("dag/lower: empty subgraph to graft")
	}
	remap := make(map[dag.StateId]dag.StateId, len(placeholders))
	for i, p := range placeholders {
		remap[p] = originalOperands[i]
	}
	var walk func(id dag.StateId) dag.StateId
	walk = func(id dag.StateId) dag.StateId {
		if mapped, ok := remap[id]; ok {
			return mapped
		}
		subSt := sub.Arena.Get(id)
		operands := subSt.Op.Operands()
		newOperands := make([]dag.StateId, len(operands))
		for i, o := range operands {
			newOperands[i] = walk(o)
		}
		newOp := remapOperands(subSt.Op, newOperands)
		newID := site.Insert(subSt.NZBW, newOp, subSt.Location)
		remap[id] = newID
		return newID
	}
	graftedRoot := walk(subRoot)
	site.Get(at).Op = dag.OpCopy{X: graftedRoot}
	return at, nil
}

// remapOperands returns a copy of op with its operand ids replaced by
// newOperands, in the same order Op.Operands() reported them.
func remapOperands(op dag.Op, newOperands []dag.StateId) dag.Op {
	switch o := op.(type) {
	case dag.OpNot:
		return dag.OpNot{X: newOperands[0]}
	case dag.OpOr:
		return dag.OpOr{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpAnd:
		return dag.OpAnd{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpXor:
		return dag.OpXor{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpAdd:
		return dag.OpAdd{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpSub:
		return dag.OpSub{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpMul:
		return dag.OpMul{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpEq:
		return dag.OpEq{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpUlt:
		return dag.OpUlt{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpMux:
		return dag.OpMux{Lhs: newOperands[0], Rhs: newOperands[1], Sel: newOperands[2]}
	case dag.OpCopy:
		return dag.OpCopy{X: newOperands[0]}
	case dag.OpLiteral:
		return o
	case dag.OpOpaque:
		return o
	case dag.OpRev:
		return dag.OpRev{X: newOperands[0]}
	case dag.OpAbs:
		return dag.OpAbs{X: newOperands[0]}
	case dag.OpRsb:
		return dag.OpRsb{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpCinSum:
		return dag.OpCinSum{Cin: newOperands[0], Lhs: newOperands[1], Rhs: newOperands[2]}
	case dag.OpInc:
		return dag.OpInc{X: newOperands[0], Cin: newOperands[1]}
	case dag.OpDec:
		return dag.OpDec{X: newOperands[0], Cin: newOperands[1]}
	case dag.OpNeg:
		return dag.OpNeg{X: newOperands[0], Negate: newOperands[1]}
	case dag.OpMulAdd:
		return dag.OpMulAdd{Acc: newOperands[0], Lhs: newOperands[1], Rhs: newOperands[2]}
	case dag.OpUDivide:
		return dag.OpUDivide{Duo: newOperands[0], Div: newOperands[1], WantRem: o.WantRem}
	case dag.OpIDivide:
		return dag.OpIDivide{Duo: newOperands[0], Div: newOperands[1], WantRem: o.WantRem}
	case dag.OpShl:
		return dag.OpShl{X: newOperands[0], S: newOperands[1]}
	case dag.OpLshr:
		return dag.OpLshr{X: newOperands[0], S: newOperands[1]}
	case dag.OpAshr:
		return dag.OpAshr{X: newOperands[0], S: newOperands[1]}
	case dag.OpRotl:
		return dag.OpRotl{X: newOperands[0], S: newOperands[1]}
	case dag.OpRotr:
		return dag.OpRotr{X: newOperands[0], S: newOperands[1]}
	case dag.OpNe:
		return dag.OpNe{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpUle:
		return dag.OpUle{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpIlt:
		return dag.OpIlt{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpIle:
		return dag.OpIle{Lhs: newOperands[0], Rhs: newOperands[1]}
	case dag.OpLut:
		return dag.OpLut{Table: newOperands[0], Inx: newOperands[1], EntryW: o.EntryW}
	case dag.OpLutSet:
		return dag.OpLutSet{Table: newOperands[0], Entry: newOperands[1], Inx: newOperands[2]}
	case dag.OpGet:
		return dag.OpGet{X: newOperands[0], Inx: newOperands[1]}
	case dag.OpSet:
		return dag.OpSet{X: newOperands[0], Inx: newOperands[1], Bit: newOperands[2]}
	case dag.OpFunnel:
		return dag.OpFunnel{X: newOperands[0], S: newOperands[1]}
	case dag.OpIsZero:
		return dag.OpIsZero{X: newOperands[0]}
	case dag.OpIsUmax:
		return dag.OpIsUmax{X: newOperands[0]}
	case dag.OpIsImax:
		return dag.OpIsImax{X: newOperands[0]}
	case dag.OpIsImin:
		return dag.OpIsImin{X: newOperands[0]}
	case dag.OpIsUone:
		return dag.OpIsUone{X: newOperands[0]}
	case dag.OpLsb:
		return dag.OpLsb{X: newOperands[0]}
	case dag.OpMsb:
		return dag.OpMsb{X: newOperands[0]}
	case dag.OpLz:
		return dag.OpLz{X: newOperands[0], W: o.W}
	case dag.OpTz:
		return dag.OpTz{X: newOperands[0], W: o.W}
	case dag.OpSig:
		return dag.OpSig{X: newOperands[0], W: o.W}
	case dag.OpCountOnes:
		return dag.OpCountOnes{X: newOperands[0], W: o.W}
	case dag.OpResize:
		return dag.OpResize{X: newOperands[0], W: o.W, Extension: newOperands[1]}
	case dag.OpZeroResizeOverflow:
		return dag.OpZeroResizeOverflow{X: newOperands[0], W: o.W}
	case dag.OpSignResizeOverflow:
		return dag.OpSignResizeOverflow{X: newOperands[0], W: o.W}
	case dag.OpZeroResize:
		return dag.OpZeroResize{X: newOperands[0], W: o.W}
	case dag.OpSignResize:
		return dag.OpSignResize{X: newOperands[0], W: o.W}
	case dag.OpConcat:
		return dag.OpConcat{Xs: newOperands}
	case dag.OpStaticGet:
		return dag.OpStaticGet{X: newOperands[0], Inx: o.Inx}
	case dag.OpStaticSet:
		return dag.OpStaticSet{X: newOperands[0], Inx: o.Inx, Bit: newOperands[1]}
	case dag.OpStaticLut:
		return dag.OpStaticLut{Inx: newOperands[0], Lut: o.Lut}
	case dag.OpField:
		return dag.OpField{Lhs: newOperands[0], ToStart: o.ToStart, Rhs: newOperands[1], FromStart: o.FromStart, Width: o.Width}
	case dag.OpAssert:
		return dag.OpAssert{X: newOperands[0]}
	case dag.OpInvalid:
		return o
	case dag.OpArgument:
		return o
	default:
		panic("dag/lower: remapOperands: unsupported op " + op.OpName())
	}
}

// Prune performs a mark-and-sweep reachability pass over arena
// starting from roots (a last-in first-out worklist), the same shape the original
// compiler's dead-function elimination uses (there: functions reached
// by call edges from main.main; here: states reached by operand edges
// from the DAG's designated outputs). It reports which ids are live
// rather than physically compacting the arena, since other code may
// still hold StateIds by index.
func Prune(arena *dag.StateArena, roots []dag.StateId) map[dag.StateId]bool {
	reachable := make(map[dag.StateId]bool)
	var worklist []dag.StateId
	for _, r := range roots {
		if !reachable[r] {
			reachable[r] = true
			worklist = append(worklist, r)
		}
	}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		st := arena.Get(id)
		for _, o := range st.Op.Operands() {
			if !reachable[o] {
				reachable[o] = true
				worklist = append(worklist, o)
			}
		}
	}
	return reachable
}

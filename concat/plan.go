// Package concat implements a small concatenation/bitfield macro
// compiler: source text describing how pieces of named bit strings
// (and inline literals, and alignment fillers) field into a shared
// buffer and back out to named sinks, compiled ahead of time into a
// Plan that can be replayed against concrete operands without
// re-parsing.
package concat

import (
	"github.com/pkg/errors"

	"github.com/tindar/bitwidth/bits"
)

// Fielder is the minimal surface a concatenation operand needs: its
// own bitwidth plus single-bit read/write. *bits.Bits already
// satisfies this, so a Plan compiled once can run against any concrete
// bit storage. GetBit returns a plain bool, so a symbolic type such as
// dag.Bits does not implement Fielder and cannot replay a Plan.
type Fielder interface {
	BW() int
	GetBit(i int) bool
	SetBit(i int, v bool)
}

// fieldOp is one emitted bitfield operation. pos is the bit's position
// within the concatenation's own TotalWidth, which doubles as the
// buffer's position: the same coordinate space source and sink
// concatenations are compiled against. varStart is only meaningful for
// componentVar: the bit's position within the named operand.
type fieldOp struct {
	kind     componentKind
	name     string
	varStart int
	width    int
	pos      int
	litValue uint64
}

// ConcatPlan is the emitted form of one semicolon-separated
// concatenation: an ordered list of field operations, its total
// resolved bitwidth, and whether it contains a filler (a position no
// component covers).
type ConcatPlan struct {
	ops        []fieldOp
	TotalWidth int
	HasFiller  bool
}

// Plan is the compiled form of a Program, ready to run repeatedly
// against concrete operands via Run. Concats[0] is the source
// concatenation (read from named operands into a shared buffer);
// Concats[1:] are sinks (the buffer fielded back out to named
// operands).
type Plan struct {
	Init    Initializer
	Concats []ConcatPlan
}

// Compile resolves a parsed Program against a concrete set of operand
// bitwidths: it normalizes ranges, merges adjacent literals, resolves
// at most one unspecified-width filler per concatenation against the
// widths implied by sibling concatenations, and checks that every
// concatenation ends up the same total width (the cross-concatenation
// check named in the macro compiler's stage list).
func Compile(prog *Program, widths map[string]int) (*Plan, error) {
	plan := &Plan{Init: prog.Init}
	knownTotal := -1

	type pending struct {
		comps     []Component
		fillerIdx int // -1 if none
	}
	var pendings []pending

	for _, c := range prog.Concats {
		merged := mergeLiterals(c.Components)
		fillerIdx := -1
		sum := 0
		for i, comp := range merged {
			w, resolved, err := componentWidth(comp, widths)
			if err != nil {
				return nil, err
			}
			if !resolved {
				if fillerIdx != -1 {
					return nil, errors.New("concat: multiple unresolved fillers in one concatenation")
				}
				fillerIdx = i
				continue
			}
			sum += w
		}
		pendings = append(pendings, pending{comps: merged, fillerIdx: fillerIdx})
		if fillerIdx == -1 {
			if knownTotal == -1 || sum > knownTotal {
				knownTotal = sum
			}
		}
	}

	if knownTotal == -1 {
		return nil, errors.New("concat: every concatenation has an unresolved filler; total width is ambiguous")
	}

	for _, p := range pendings {
		cp, err := buildConcatPlan(p.comps, p.fillerIdx, knownTotal, widths)
		if err != nil {
			return nil, err
		}
		plan.Concats = append(plan.Concats, cp)
	}
	return plan, nil
}

func componentWidth(comp Component, widths map[string]int) (width int, resolved bool, err error) {
	switch comp.Kind {
	case componentLiteral:
		return comp.LitWidth, true, nil
	case componentFiller:
		if comp.LitWidth >= 0 {
			return comp.LitWidth, true, nil
		}
		return 0, false, nil
	case componentVar:
		vw, ok := widths[comp.Name]
		if !ok {
			return 0, false, errors.Errorf("concat: unknown operand %q", comp.Name)
		}
		if !comp.HasRange {
			return vw, true, nil
		}
		hi := comp.Hi
		if hi < 0 {
			hi = vw
		}
		if comp.Lo < 0 || hi < comp.Lo || hi > vw {
			return 0, false, errors.Errorf("concat: range [%d..%d) out of bounds for %q (width %d)", comp.Lo, hi, comp.Name, vw)
		}
		return hi - comp.Lo, true, nil
	}
	return 0, false, errors.New("concat: unknown component kind")
}

// mergeLiterals collapses consecutive literal components into one
// wider literal, the "literal merging" compiler stage: an emitted
// concatenation never needs more than one bits.Field call per run of
// adjacent literals.
func mergeLiterals(comps []Component) []Component {
	var out []Component
	for _, c := range comps {
		if c.Kind == componentLiteral && len(out) > 0 && out[len(out)-1].Kind == componentLiteral {
			prev := &out[len(out)-1]
			prev.LitValue = (prev.LitValue << uint(c.LitWidth)) | c.LitValue
			prev.LitWidth += c.LitWidth
			continue
		}
		out = append(out, c)
	}
	return out
}

func buildConcatPlan(comps []Component, fillerIdx, totalWidth int, widths map[string]int) (ConcatPlan, error) {
	cp := ConcatPlan{TotalWidth: totalWidth, HasFiller: fillerIdx != -1}
	resolvedWidths := make([]int, len(comps))
	sum := 0
	for i, comp := range comps {
		if i == fillerIdx {
			continue
		}
		w, _, err := componentWidth(comp, widths)
		if err != nil {
			return cp, err
		}
		resolvedWidths[i] = w
		sum += w
	}
	if fillerIdx != -1 {
		fw := totalWidth - sum
		if fw < 0 {
			return cp, errors.New("concat: filler would need negative width; components exceed total width")
		}
		resolvedWidths[fillerIdx] = fw
		sum += fw
	}
	if sum != totalWidth {
		return cp, errors.Errorf("concat: concatenation resolves to %d bits, want %d", sum, totalWidth)
	}

	pos := totalWidth
	for i, comp := range comps {
		w := resolvedWidths[i]
		pos -= w
		switch comp.Kind {
		case componentFiller:
			// Fillers carry no value of their own: reading one leaves
			// the buffer position untouched, writing one leaves the
			// operand position untouched.
			cp.HasFiller = true
			continue
		case componentLiteral:
			cp.ops = append(cp.ops, fieldOp{kind: componentLiteral, width: w, pos: pos, litValue: comp.LitValue})
		case componentVar:
			lo := comp.Lo
			if !comp.HasRange {
				lo = 0
			}
			cp.ops = append(cp.ops, fieldOp{kind: componentVar, name: comp.Name, varStart: lo, width: w, pos: pos})
		}
	}
	return cp, nil
}

// direction controls which way runConcat moves bits between a
// concatenation's named operands and the shared buffer.
type direction int

const (
	directionRead  direction = iota // operands -> buffer (the source role)
	directionWrite                  // buffer -> operands (the sink role)
)

// runConcat executes one concatenation's field operations against buf
// in the given direction.
func runConcat(buf Fielder, cp ConcatPlan, vars map[string]Fielder, dir direction) error {
	for _, op := range cp.ops {
		switch op.kind {
		case componentLiteral:
			if dir == directionWrite {
				// Parse rejects literals outside the source, so this
				// never actually triggers; kept for symmetry.
				continue
			}
			for i := 0; i < op.width; i++ {
				bit := (op.litValue>>uint(i))&1 != 0
				buf.SetBit(op.pos+i, bit)
			}
		case componentVar:
			operand, ok := vars[op.name]
			if !ok {
				return errors.Errorf("concat: missing operand %q", op.name)
			}
			for i := 0; i < op.width; i++ {
				if dir == directionRead {
					buf.SetBit(op.pos+i, operand.GetBit(op.varStart+i))
				} else {
					operand.SetBit(op.varStart+i, buf.GetBit(op.pos+i))
				}
			}
		}
	}
	return nil
}

// Run executes the plan: the source concatenation reads vars into
// buf, then, if the program has any sinks, buf is fielded back out to
// each of them. With no sinks, buf is itself the macro's result (a
// pure construction). buf must have the source's resolved bitwidth,
// except in the one case where it's unused (see below).
//
// If the source has no filler, buf's value is the same regardless of
// which sink it's headed for, so it's computed once here and fielded
// out to each sink in turn. If the source has a filler, each sink is
// handled independently with its own scratch buffer (buf itself goes
// unused in this case): the scratch buffer is first seeded by reading
// that sink's own current operand values (so the filler positions
// pass through unchanged), then the source's non-filler fields
// overwrite it, then it's written back out to that same sink. This is
// what makes "filler" mean "leave this sink's existing bits alone"
// rather than "leave this undefined".
func (p *Plan) Run(buf Fielder, vars map[string]Fielder) error {
	if len(p.Concats) == 0 {
		return errors.New("concat: empty plan")
	}
	source := p.Concats[0]
	sinks := p.Concats[1:]

	if len(sinks) == 0 {
		if buf.BW() != source.TotalWidth {
			return errors.Errorf("concat: source concatenation produces %d bits, buffer is %d bits", source.TotalWidth, buf.BW())
		}
		if source.HasFiller && p.Init != InitNone {
			// An explicit initializer word seeds the positions the
			// source doesn't cover. Without one, buf's own
			// pre-existing content at those positions passes through
			// untouched, same as a sink would.
			seedInitializer(buf, p.Init)
		}
		return runConcat(buf, source, vars, directionRead)
	}

	for si, sink := range sinks {
		if sink.TotalWidth != source.TotalWidth {
			return errors.Errorf("concat: sink concatenation %d produces %d bits, source is %d bits", si, sink.TotalWidth, source.TotalWidth)
		}
	}

	if !source.HasFiller {
		if buf.BW() != source.TotalWidth {
			return errors.Errorf("concat: source concatenation produces %d bits, buffer is %d bits", source.TotalWidth, buf.BW())
		}
		if err := runConcat(buf, source, vars, directionRead); err != nil {
			return err
		}
		for _, sink := range sinks {
			if err := runConcat(buf, sink, vars, directionWrite); err != nil {
				return err
			}
		}
		return nil
	}

	for _, sink := range sinks {
		target := newBitBuffer(source.TotalWidth)
		if err := runConcat(target, sink, vars, directionRead); err != nil {
			return err
		}
		if err := runConcat(target, source, vars, directionRead); err != nil {
			return err
		}
		if err := runConcat(target, sink, vars, directionWrite); err != nil {
			return err
		}
	}
	return nil
}

// RunBits is a convenience wrapper for the common case of running
// against concrete *bits.Bits operands. buf plays the same role
// documented on Run.
func (p *Plan) RunBits(buf *bits.Bits, vars map[string]*bits.Bits) error {
	fvars := make(map[string]Fielder, len(vars))
	for k, v := range vars {
		fvars[k] = v
	}
	return p.Run(buf, fvars)
}

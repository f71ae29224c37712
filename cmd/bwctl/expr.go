package main

import (
	"fmt"

	"github.com/pkg/errors"

	concretebits "github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/digit"
	"github.com/tindar/bitwidth/serde"
)

func zeroBits(bw int) *concretebits.Bits {
	return concretebits.NewBitsView(make([]digit.Digit, concretebits.DigitsForBits(bw)), bw)
}

// exprTokenKind enumerates the small fixed set of tokens the eval
// expression grammar needs: a self-describing literal, parentheses,
// the arithmetic/bitwise operators, and the comparison operators
// (which the grammar only ever admits once, at the outermost level).
type exprTokenKind int

const (
	exprEOF exprTokenKind = iota
	exprLiteral
	exprLParen
	exprRParen
	exprPlus
	exprMinus
	exprStar
	exprAmp
	exprPipe
	exprCaret
	exprTilde
	exprEqEq
	exprNotEq
	exprLt
	exprLe
)

type exprToken struct {
	kind exprTokenKind
	text string
	pos  int
}

// exprLexError carries the byte offset of a malformed token, matching
// the concat package's lexError convention.
type exprLexError struct {
	pos int
	msg string
}

func (e *exprLexError) Error() string {
	return fmt.Sprintf("bwctl: expr lex error at byte %d: %s", e.pos, e.msg)
}

type exprLexer struct {
	src []byte
	pos int
}

func newExprLexer(src string) *exprLexer {
	return &exprLexer{src: []byte(src)}
}

func isLitChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}

func (l *exprLexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		break
	}
}

func (l *exprLexer) next() (exprToken, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return exprToken{kind: exprEOF, pos: start}, nil
	}
	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return exprToken{kind: exprLParen, pos: start}, nil
	case c == ')':
		l.pos++
		return exprToken{kind: exprRParen, pos: start}, nil
	case c == '+':
		l.pos++
		return exprToken{kind: exprPlus, pos: start}, nil
	case c == '-':
		l.pos++
		return exprToken{kind: exprMinus, pos: start}, nil
	case c == '*':
		l.pos++
		return exprToken{kind: exprStar, pos: start}, nil
	case c == '&':
		l.pos++
		return exprToken{kind: exprAmp, pos: start}, nil
	case c == '|':
		l.pos++
		return exprToken{kind: exprPipe, pos: start}, nil
	case c == '^':
		l.pos++
		return exprToken{kind: exprCaret, pos: start}, nil
	case c == '~':
		l.pos++
		return exprToken{kind: exprTilde, pos: start}, nil
	case c == '=':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return exprToken{kind: exprEqEq, pos: start}, nil
		}
		return exprToken{}, errors.WithStack(&exprLexError{pos: start, msg: "expected '=='"})
	case c == '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return exprToken{kind: exprNotEq, pos: start}, nil
		}
		return exprToken{}, errors.WithStack(&exprLexError{pos: start, msg: "expected '!='"})
	case c == '<':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return exprToken{kind: exprLe, pos: start}, nil
		}
		l.pos++
		return exprToken{kind: exprLt, pos: start}, nil
	case c >= '0' && c <= '9':
		for l.pos < len(l.src) && isLitChar(l.src[l.pos]) {
			l.pos++
		}
		return exprToken{kind: exprLiteral, text: string(l.src[start:l.pos]), pos: start}, nil
	default:
		return exprToken{}, errors.WithStack(&exprLexError{pos: start, msg: fmt.Sprintf("unexpected character %q", c)})
	}
}

// exprParser recursive-descends over a fixed precedence ladder:
// comparison (lowest, non-chaining) > | > ^ > & > + - > * > unary ~/- >
// parenthesized or literal primary. Comparisons never nest inside one
// another or inside a bitwise/arithmetic subexpression, so the single
// top-level Ne/Ule/Ile node (if any) a caller gets back from Parse is
// always the root - the only place lowering ever needs to look.
type exprParser struct {
	lex *exprLexer
	tok exprToken
}

// ParseExpr parses src as an expression over self-describing bit
// literals (e.g. "5_u8") and returns the dag.Bits recorded for it in
// the currently active epoch.
func ParseExpr(src string) (*dag.Bits, error) {
	p := &exprParser{lex: newExprLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	v, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != exprEOF {
		return nil, errors.Errorf("bwctl: unexpected trailing token at byte %d", p.tok.pos)
	}
	return v, nil
}

func (p *exprParser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *exprParser) parseComparison() (*dag.Bits, error) {
	lhs, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	switch p.tok.kind {
	case exprEqEq, exprNotEq, exprLt, exprLe:
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		return buildComparison(op, lhs, rhs)
	default:
		return lhs, nil
	}
}

func buildComparison(op exprTokenKind, lhs, rhs *dag.Bits) (*dag.Bits, error) {
	e := dag.ActiveEpoch()
	if e == nil {
		return nil, errors.New("bwctl: no active epoch")
	}
	if lhs.BW() != rhs.BW() {
		return nil, errors.Errorf("bwctl: comparison operand widths differ (%d vs %d)", lhs.BW(), rhs.BW())
	}
	switch op {
	case exprEqEq:
		return lhs.Eq(rhs), nil
	case exprLt:
		return lhs.Ult(rhs), nil
	case exprNotEq:
		id := e.Arena.Insert(1, dag.OpNe{Lhs: lhs.ID(), Rhs: rhs.ID()}, "")
		return dag.Reify(e, 1, id), nil
	case exprLe:
		id := e.Arena.Insert(1, dag.OpUle{Lhs: lhs.ID(), Rhs: rhs.ID()}, "")
		return dag.Reify(e, 1, id), nil
	default:
		return nil, errors.Errorf("bwctl: unsupported comparison operator")
	}
}

func (p *exprParser) parseBitOr() (*dag.Bits, error) {
	lhs, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == exprPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		lhs = lhs.Or(rhs)
	}
	return lhs, nil
}

func (p *exprParser) parseBitXor() (*dag.Bits, error) {
	lhs, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == exprCaret {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		lhs = lhs.Xor(rhs)
	}
	return lhs, nil
}

func (p *exprParser) parseBitAnd() (*dag.Bits, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == exprAmp {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		lhs = lhs.And(rhs)
	}
	return lhs, nil
}

func (p *exprParser) parseAdd() (*dag.Bits, error) {
	lhs, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == exprPlus || p.tok.kind == exprMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		if op == exprPlus {
			lhs = lhs.Add(rhs)
		} else {
			lhs = lhs.Sub(rhs)
		}
	}
	return lhs, nil
}

func (p *exprParser) parseMul() (*dag.Bits, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == exprStar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = lhs.Mul(rhs)
	}
	return lhs, nil
}

func (p *exprParser) parseUnary() (*dag.Bits, error) {
	switch p.tok.kind {
	case exprTilde:
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return v.Not(), nil
	case exprMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := dag.NewLiteral(zeroBits(v.BW()))
		return zero.Sub(v), nil
	default:
		return p.parsePrimary()
	}
}

func (p *exprParser) parsePrimary() (*dag.Bits, error) {
	switch p.tok.kind {
	case exprLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != exprRParen {
			return nil, errors.Errorf("bwctl: expected ')' at byte %d", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return v, nil
	case exprLiteral:
		text := p.tok.text
		pos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		a, err := serde.Parse(text)
		if err != nil {
			return nil, errors.Wrapf(err, "bwctl: bad literal at byte %d", pos)
		}
		return dag.NewLiteral(a.Bits()), nil
	default:
		return nil, errors.Errorf("bwctl: unexpected token at byte %d", p.tok.pos)
	}
}

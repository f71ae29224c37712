package concat

import (
	"strconv"

	"github.com/pkg/errors"
)

// componentKind classifies a single comma-separated piece of a
// concatenation.
type componentKind int

const (
	componentVar componentKind = iota
	componentLiteral
	componentFiller
)

// Component is one piece of a concatenation: a named variable
// (optionally range-restricted), a static literal, or an unspecified-
// width filler used to pad alignment.
type Component struct {
	Kind componentKind
	Name string

	// HasRange reports whether an explicit [lo..hi) range was given.
	// When false for a var component, the component spans the
	// variable's entire bitwidth.
	HasRange bool
	Lo, Hi   int // Hi == -1 means "to the variable's full width"

	LitValue uint64
	LitWidth int // also used as the filler's width when >= 0; -1 means unspecified
}

// Concatenation is one semicolon-separated concatenation: a sequence
// of components read most-significant first.
type Concatenation struct {
	Components []Component
}

// Program is the parsed, range-normalized, per-concatenation-checked
// form of a concat-macro source string, ready for Compile. Concats[0]
// is the source concatenation; any further concatenations are sinks.
type Program struct {
	Init    Initializer
	Concats []Concatenation
}

type parser struct {
	lex    *lexer
	tok    token
	peeked *token
}

// Parse lexes and parses src: an optional initializer word prefixing
// the source concatenation, then the per-concatenation legality
// checks (at most one unspecified-width filler per concatenation;
// literals only in the source). It does not yet know operand widths,
// so the cross-concatenation bitwidth check happens in Compile, once
// widths are supplied.
func Parse(src string) (*Program, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	prog := &Program{}
	if p.tok.kind == tokIdent {
		if init, isInitWord := initWords[p.tok.text]; isInitWord {
			next, err := p.peek()
			if err != nil {
				return nil, err
			}
			if next.kind == tokColon {
				if err := p.advance(); err != nil { // consume the word
					return nil, err
				}
				if err := p.advance(); err != nil { // consume ':'
					return nil, err
				}
				prog.Init = init
			}
		}
	}

	for {
		c, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}
		if err := checkFillerAlignment(c); err != nil {
			return nil, err
		}
		if len(prog.Concats) > 0 {
			if err := checkNoLiteralInSink(c); err != nil {
				return nil, err
			}
		}
		prog.Concats = append(prog.Concats, c)
		if p.tok.kind == tokSemi {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.kind != tokEOF {
		return nil, errors.Errorf("concat: unexpected trailing token at byte %d", p.tok.pos)
	}
	return prog, nil
}

func (p *parser) advance() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// peek returns the token after the current one without consuming
// either, buffering it for the next advance. Only ever needed once,
// to disambiguate an initializer word from an ordinary leading
// variable reference.
func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) parseConcatenation() (Concatenation, error) {
	var c Concatenation
	for {
		comp, err := p.parseComponent()
		if err != nil {
			return c, err
		}
		c.Components = append(c.Components, comp)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return c, err
			}
			continue
		}
		break
	}
	return c, nil
}

func (p *parser) parseComponent() (Component, error) {
	switch p.tok.kind {
	case tokUnderscore:
		if err := p.advance(); err != nil {
			return Component{}, err
		}
		width := -1
		if p.tok.kind == tokColon {
			if err := p.advance(); err != nil {
				return Component{}, err
			}
			n, err := p.parseIntLiteral()
			if err != nil {
				return Component{}, err
			}
			width = n
		}
		return Component{Kind: componentFiller, LitWidth: width}, nil

	case tokNumber:
		val, err := parseNumber(p.tok.text)
		if err != nil {
			return Component{}, err
		}
		if err := p.advance(); err != nil {
			return Component{}, err
		}
		if p.tok.kind != tokColon {
			return Component{}, errors.Errorf("concat: literal at byte %d must have an explicit :width", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return Component{}, err
		}
		width, err := p.parseIntLiteral()
		if err != nil {
			return Component{}, err
		}
		return Component{Kind: componentLiteral, LitValue: val, LitWidth: width}, nil

	case tokIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return Component{}, err
		}
		comp := Component{Kind: componentVar, Name: name}
		if p.tok.kind == tokLBracket {
			if err := p.advance(); err != nil {
				return Component{}, err
			}
			lo := 0
			if p.tok.kind != tokDotDot {
				n, err := p.parseIntLiteral()
				if err != nil {
					return Component{}, err
				}
				lo = n
			}
			if p.tok.kind != tokDotDot {
				return Component{}, errors.Errorf("concat: expected '..' in range at byte %d", p.tok.pos)
			}
			if err := p.advance(); err != nil {
				return Component{}, err
			}
			hi := -1
			if p.tok.kind != tokRBracket {
				n, err := p.parseIntLiteral()
				if err != nil {
					return Component{}, err
				}
				hi = n
			}
			if p.tok.kind != tokRBracket {
				return Component{}, errors.Errorf("concat: expected ']' at byte %d", p.tok.pos)
			}
			if err := p.advance(); err != nil {
				return Component{}, err
			}
			comp.HasRange = true
			comp.Lo, comp.Hi = lo, hi
		}
		return comp, nil

	default:
		return Component{}, errors.Errorf("concat: unexpected token at byte %d", p.tok.pos)
	}
}

func (p *parser) parseIntLiteral() (int, error) {
	if p.tok.kind != tokNumber {
		return 0, errors.Errorf("concat: expected number at byte %d", p.tok.pos)
	}
	v, err := parseNumber(p.tok.text)
	if err != nil {
		return 0, err
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseNumber(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "concat: malformed number %q", s)
	}
	return v, nil
}

// checkFillerAlignment enforces the per-concatenation rule that at
// most one component may be an unspecified-width filler: with zero or
// one unknown-width slots, the remaining known-width components always
// determine the filler's width (if any) once the concatenation's total
// width is known from the sink or another concatenation's same-index
// total; with two or more, the system would be underdetermined.
func checkFillerAlignment(c Concatenation) error {
	unspecified := 0
	for _, comp := range c.Components {
		if comp.Kind == componentFiller && comp.LitWidth < 0 {
			unspecified++
		}
	}
	if unspecified > 1 {
		return errors.New("concat: a concatenation may have at most one unspecified-width filler")
	}
	return nil
}

// checkNoLiteralInSink enforces that literal components appear only
// in the source (first) concatenation: a sink has nowhere to read a
// literal's value from, since sinks are written, not read.
func checkNoLiteralInSink(c Concatenation) error {
	for _, comp := range c.Components {
		if comp.Kind == componentLiteral {
			return errors.New("concat: literal components are only legal in the source (first) concatenation")
		}
	}
	return nil
}

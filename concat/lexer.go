package concat

import (
	"fmt"

	"github.com/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokSemi
	tokDotDot
	tokUnderscore
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexError carries the byte offset of a malformed token, so callers
// can point a user at the exact character that failed to lex.
type lexError struct {
	pos int
	msg string
}

func (e *lexError) Error() string {
	return fmt.Sprintf("concat: lex error at byte %d: %s", e.pos, e.msg)
}

type lexer struct {
	src []byte
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []byte(src)}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		break
	}
}

// next returns the next token, or a lexError wrapped with
// errors.WithStack for precise failure location reporting.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	c := l.src[l.pos]
	switch {
	case c == '[':
		l.pos++
		return token{kind: tokLBracket, pos: start}, nil
	case c == ']':
		l.pos++
		return token{kind: tokRBracket, pos: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case c == ';':
		l.pos++
		return token{kind: tokSemi, pos: start}, nil
	case c == '.':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '.' {
			l.pos += 2
			return token{kind: tokDotDot, pos: start}, nil
		}
		return token{}, errors.WithStack(&lexError{pos: start, msg: "expected '..'"})
	case c == ':':
		l.pos++
		return token{kind: tokColon, pos: start}, nil
	case isDigit(c):
		for l.pos < len(l.src) && (isIdentCont(l.src[l.pos]) || l.src[l.pos] == 'x' || l.src[l.pos] == 'X') {
			l.pos++
		}
		return token{kind: tokNumber, text: string(l.src[start:l.pos]), pos: start}, nil
	case c == '_':
		if l.pos+1 >= len(l.src) || !isIdentCont(l.src[l.pos+1]) {
			l.pos++
			return token{kind: tokUnderscore, pos: start}, nil
		}
		fallthrough
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos]), pos: start}, nil
	default:
		return token{}, errors.WithStack(&lexError{pos: start, msg: fmt.Sprintf("unexpected character %q", c)})
	}
}

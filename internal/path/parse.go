package path

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ParseError reports where a path expression stopped making sense.
type ParseError struct {
	Input   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("path %q: %s at offset %d", e.Input, e.Message, e.Pos)
}

// Parse parses a complete path expression.
func Parse(input string) (Path, error) {
	p := &parser{src: input}
	path, err := p.seq()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return path, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.src, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) accept(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(c byte) error {
	if !p.accept(c) {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, found end of input", c)
		}
		return p.errorf("expected %q, found %q", c, p.src[p.pos])
	}
	return nil
}

func (p *parser) seq() (Path, error) {
	return p.list(',', p.choice, func(ps []Path) Path { return Seq(ps) })
}

func (p *parser) choice() (Path, error) {
	return p.list('|', p.repeat, func(ps []Path) Path { return Choice(ps) })
}

// list parses one or more operands separated by sep. A single operand is
// returned unwrapped.
func (p *parser) list(sep byte, operand func() (Path, error), wrap func([]Path) Path) (Path, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	paths := []Path{first}
	for p.accept(sep) {
		next, err := operand()
		if err != nil {
			return nil, err
		}
		paths = append(paths, next)
	}
	if len(paths) == 1 {
		return first, nil
	}
	return wrap(paths), nil
}

func (p *parser) repeat() (Path, error) {
	atom, err := p.atom()
	if err != nil {
		return nil, err
	}
	switch {
	case p.accept('+'):
		return Plus{Path: atom}, nil
	case p.accept('*'):
		return Star{Path: atom}, nil
	case p.accept('{'):
		lo, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		hi, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, p.errorf("repetition minimum %d exceeds maximum %d", lo, hi)
		}
		return Times{Path: atom, Min: lo, Max: hi}, nil
	}
	return atom, nil
}

func (p *parser) atom() (Path, error) {
	switch {
	case p.accept('('):
		inner, err := p.seq()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return inner, nil
	case p.accept('<'):
		pred, err := p.pred()
		if err != nil {
			return nil, err
		}
		return Negative(pred), nil
	}
	pred, err := p.pred()
	if err != nil {
		return nil, err
	}
	p.accept('>')
	return Positive(pred), nil
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ':' || r == '/' || r == '_' || r == '-'
}

func (p *parser) pred() (Pred, error) {
	if p.accept('.') {
		return AnyPred(), nil
	}
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isNameRune(r) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		if p.pos >= len(p.src) {
			return Pred{}, p.errorf("expected predicate, found end of input")
		}
		return Pred{}, p.errorf("expected predicate, found %q", p.src[p.pos])
	}
	return Named(p.src[start:p.pos]), nil
}

func (p *parser) number() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected a number")
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, &ParseError{Input: p.src, Pos: start, Message: err.Error()}
	}
	return n, nil
}

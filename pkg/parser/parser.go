// Package parser turns Shire documents into a frontmatter Hole, a body
// template and a symbol table.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
)

type parser struct {
	toks []token
	i    int
}

func newParser(src string) (*parser, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(off int) token {
	if p.i+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+off]
}

func (p *parser) next() token {
	t := p.peek()
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) atEOF() bool { return p.peek().kind == tokEOF }

func (p *parser) isPunct(v string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.val == v
}

func (p *parser) isOperator(v string) bool {
	t := p.peek()
	return t.kind == tokOperator && t.val == v
}

func (p *parser) isIdent(v string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.val == v
}

func (p *parser) expectPunct(v string) error {
	if !p.isPunct(v) {
		return p.unexpected(fmt.Sprintf("%q", v))
	}
	p.next()
	return nil
}

func (p *parser) unexpected(want string) error {
	t := p.peek()
	return fmt.Errorf("offset %d: expected %s, got %s", t.pos, want, t)
}

func (p *parser) expectEOF() error {
	if !p.atEOF() {
		return p.unexpected("end of input")
	}
	return nil
}

// parseArgs parses `( arg, arg… )`.
func (p *parser) parseArgs() ([]ast.Value, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Value
	for !p.isPunct(")") {
		a, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.isPunct(",") {
			break
		}
		p.next()
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseValue parses a single literal token or an inline array.
func (p *parser) parseValue() (ast.Value, error) {
	if p.isPunct("[") {
		return p.parseArray()
	}
	t := p.peek()
	var v ast.Value
	switch t.kind {
	case tokString:
		v = ast.StringValue(t.val)
	case tokNumber:
		n, err := parseNumber(t.val)
		if err != nil {
			return nil, err
		}
		v = n
	case tokVariable:
		v = ast.VariableValue(t.val)
	case tokPattern:
		v = ast.PatternValue(t.val)
	case tokIdent:
		switch t.val {
		case "true":
			v = ast.BoolValue(true)
		case "false":
			v = ast.BoolValue(false)
		default:
			v = ast.IdentifierValue(t.val)
		}
	default:
		return nil, p.unexpected("a value")
	}
	p.next()
	return v, nil
}

func (p *parser) parseArray() (ast.Value, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	arr := ast.ArrayValue{}
	for !p.isPunct("]") {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		if !p.isPunct(",") {
			break
		}
		p.next()
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return arr, nil
}

// parseInlineObject parses `{ "key": value, … }`.
func (p *parser) parseInlineObject() (ast.Value, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	obj := ast.NewObjectValue()
	for !p.isPunct("}") {
		k := p.peek()
		if k.kind != tokString && k.kind != tokIdent {
			return nil, p.unexpected("an object key")
		}
		p.next()
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(k.val, v)
		if !p.isPunct(",") {
			break
		}
		p.next()
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return obj, nil
}

func parseNumber(s string) (ast.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ast.IntValue(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return ast.FloatValue(f), nil
}

func isDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range []byte(s) {
		if i != 4 && i != 7 && !isDigit(c) {
			return false
		}
	}
	return true
}

// ParseLiteral parses a frontmatter scalar into a typed value. Text that is
// not one of the structured forms is kept as a trimmed string.
func ParseLiteral(src string) (ast.Value, error) {
	s := strings.TrimSpace(src)
	switch {
	case s == "":
		return ast.StringValue(""), nil
	case s == "true":
		return ast.BoolValue(true), nil
	case s == "false":
		return ast.BoolValue(false), nil
	case isDate(s):
		return ast.DateValue(s), nil
	case s[0] == '[':
		return parseWhole(s, (*parser).parseArray)
	case s[0] == '{':
		if looksLikeObject(s) {
			return parseWhole(s, (*parser).parseInlineObject)
		}
		return patternActionValue(s)
	case s[0] == '/':
		return parsePatternOrAction(s)
	}
	if v, err := parseNumber(s); err == nil {
		return v, nil
	}
	if s[0] == '"' || s[0] == '\'' || s[0] == '$' {
		if v, err := parseWhole(s, (*parser).parseValue); err == nil {
			return v, nil
		}
	}
	return ast.StringValue(s), nil
}

func parseWhole(s string, fn func(*parser) (ast.Value, error)) (ast.Value, error) {
	p, err := newParser(s)
	if err != nil {
		return nil, err
	}
	v, err := fn(p)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return v, nil
}

// looksLikeObject distinguishes `{ "k": v }` from a `{ stages }` block.
func looksLikeObject(s string) bool {
	p, err := newParser(s)
	if err != nil {
		return false
	}
	k := p.peekAt(1)
	colon := p.peekAt(2)
	return (k.kind == tokString || k.kind == tokIdent) && colon.kind == tokPunct && colon.val == ":"
}

func parsePatternOrAction(s string) (ast.Value, error) {
	p, err := newParser(s)
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokPattern && p.peekAt(1).kind == tokEOF {
		return ast.PatternValue(p.peek().val), nil
	}
	return patternActionValue(s)
}

func patternActionValue(s string) (ast.Value, error) {
	pa, err := ParsePatternAction(s)
	if err != nil {
		return nil, err
	}
	return pa, nil
}

package parser

import (
	"fmt"
)

// The lexer scans frontmatter values: `when` expressions, literal arrays and
// pattern-action blocks share one token set.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokVariable // $name or ${name}
	tokString   // "…" or '…', quotes stripped, backslashes kept
	tokNumber
	tokPattern  // /…/, slashes stripped
	tokPunct    // ( ) { } [ ] , | . :
	tokOperator // == != <= >= < > && || !
)

var tokenNames = [...]string{
	tokEOF:      "end of input",
	tokIdent:    "identifier",
	tokVariable: "variable",
	tokString:   "string",
	tokNumber:   "number",
	tokPattern:  "pattern",
	tokPunct:    "punctuation",
	tokOperator: "operator",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	val  string
	pos  int // byte offset in source
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.val)
}

type lexer struct {
	src []byte
	i   int
	n   int
}

func newLexer(src string) *lexer {
	return &lexer{src: []byte(src), n: len(src)}
}

func (l *lexer) peekAt(off int) byte {
	if l.i+off >= l.n {
		return 0
	}
	return l.src[l.i+off]
}

func (l *lexer) peek() byte { return l.peekAt(0) }

func (l *lexer) match(s string) bool {
	if l.i+len(s) > l.n || string(l.src[l.i:l.i+len(s)]) != s {
		return false
	}
	l.i += len(s)
	return true
}

// tokenize scans the whole input. The returned slice always ends with EOF.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) skipSpace() {
	for l.i < l.n {
		switch l.src[l.i] {
		case ' ', '\t', '\n', '\r':
			l.i++
		default:
			return
		}
	}
}

func (l *lexer) nextToken() (token, error) {
	l.skipSpace()
	start := l.i
	if l.i >= l.n {
		return token{kind: tokEOF, pos: start}, nil
	}
	c := l.src[l.i]
	switch {
	case c == '"' || c == '\'':
		s, err := l.scanString(c)
		return token{kind: tokString, val: s, pos: start}, err
	case c == '$':
		return l.scanVariable()
	case c == '/':
		s, err := l.scanPattern()
		return token{kind: tokPattern, val: s, pos: start}, err
	case isDigit(c) || (c == '-' && isDigit(l.peekAt(1))):
		return token{kind: tokNumber, val: l.scanNumber(), pos: start}, nil
	case isIdentStart(c):
		return token{kind: tokIdent, val: l.scanIdent(), pos: start}, nil
	}
	for _, op := range []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "!"} {
		if l.match(op) {
			return token{kind: tokOperator, val: op, pos: start}, nil
		}
	}
	switch c {
	case '(', ')', '{', '}', '[', ']', ',', '|', '.', ':':
		l.i++
		return token{kind: tokPunct, val: string(c), pos: start}, nil
	}
	return token{}, fmt.Errorf("unexpected character %q at offset %d", c, start)
}

// scanString reads a quoted string. Escaped quotes do not terminate it and
// every backslash is kept verbatim so regex escapes survive.
func (l *lexer) scanString(quote byte) (string, error) {
	start := l.i
	l.i++
	for l.i < l.n {
		c := l.src[l.i]
		if c == '\\' && l.i+1 < l.n {
			l.i += 2
			continue
		}
		if c == quote {
			s := string(l.src[start+1 : l.i])
			l.i++
			return s, nil
		}
		l.i++
	}
	return "", fmt.Errorf("unterminated string starting at offset %d", start)
}

func (l *lexer) scanVariable() (token, error) {
	start := l.i
	l.i++
	if l.peek() == '{' {
		l.i++
		name := l.scanIdent()
		if name == "" || !l.match("}") {
			return token{}, fmt.Errorf("malformed ${…} reference at offset %d", start)
		}
		return token{kind: tokVariable, val: name, pos: start}, nil
	}
	// $0 scans as a name too; it is the current stream in a case subject.
	name := l.scanIdent()
	if name == "" {
		return token{}, fmt.Errorf("expected variable name after $ at offset %d", start)
	}
	return token{kind: tokVariable, val: name, pos: start}, nil
}

// scanPattern reads /…/. A slash closes the pattern only when it is followed
// by whitespace, a delimiter or the end of input, so paths like /src/main/
// stay in one pattern.
func (l *lexer) scanPattern() (string, error) {
	start := l.i
	l.i++
	for l.i < l.n {
		c := l.src[l.i]
		if c == '\\' && l.i+1 < l.n {
			l.i += 2
			continue
		}
		if c == '/' && closesPattern(l.peekAt(1)) {
			s := string(l.src[start+1 : l.i])
			l.i++
			return s, nil
		}
		l.i++
	}
	return "", fmt.Errorf("unterminated pattern starting at offset %d", start)
}

func closesPattern(next byte) bool {
	switch next {
	case 0, ' ', '\t', '\n', '\r', '{', '}', ',', ')', ']', '|', '"', '\'':
		return true
	}
	return false
}

func (l *lexer) scanNumber() string {
	start := l.i
	if l.src[l.i] == '-' {
		l.i++
	}
	for l.i < l.n && isDigit(l.src[l.i]) {
		l.i++
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.i++
		for l.i < l.n && isDigit(l.src[l.i]) {
			l.i++
		}
	}
	return string(l.src[start:l.i])
}

func (l *lexer) scanIdent() string {
	start := l.i
	for l.i < l.n && isIdentPart(l.src[l.i]) {
		l.i++
	}
	return string(l.src[start:l.i])
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

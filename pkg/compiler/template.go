package compiler

import (
	"strings"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/parser"
	"github.com/shirelang/shire/pkg/pipeline"
)

// substitute replaces variable references in body in one left to right
// pass. Substituted text is never scanned again. Unbound plain references
// are kept as written; a failing method call becomes marker text.
func substitute(body string, vars ast.Bindings) string {
	var b strings.Builder
	last := 0
	for _, ref := range parser.ScanReferences(body) {
		if ref.Start < last {
			continue
		}
		b.WriteString(body[last:ref.Start])
		end := ref.End
		if !ref.Braced {
			if callEnd := methodSuffix(body, ref.End); callEnd > ref.End {
				b.WriteString(callMethod(body[ref.Start:callEnd], vars))
				last = callEnd
				continue
			}
		}
		if v, ok := vars[ref.Name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(body[ref.Start:end])
		}
		last = end
	}
	b.WriteString(body[last:])
	return b.String()
}

// methodSuffix returns the end of a `.method` or `.method(args)` suffix
// starting at i, or i when there is none. Only known methods count, so a
// sentence ending in "$name." is left alone.
func methodSuffix(body string, i int) int {
	if i >= len(body) || body[i] != '.' {
		return i
	}
	j := i + 1
	for j < len(body) && isWordByte(body[j]) {
		j++
	}
	if !ast.IsMethod(body[i+1 : j]) {
		return i
	}
	if j < len(body) && body[j] == '(' {
		if end := closingParen(body, j); end > 0 {
			return end + 1
		}
	}
	return j
}

func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			for i++; i < len(s) && s[i] != c; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			return -1
		}
	}
	return -1
}

func callMethod(src string, vars ast.Bindings) string {
	stmt, err := parser.ParseExpression(src)
	if err != nil {
		return pipeline.ErrorText(err)
	}
	v, err := stmt.Evaluate(vars)
	if err != nil {
		return pipeline.ErrorText(err)
	}
	return ast.Text(v)
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

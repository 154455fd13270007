package parser

import (
	"errors"
	"strings"

	"github.com/shirelang/shire/pkg/hobbit"
	"github.com/shirelang/shire/pkg/variable"
)

const frontMatterMarker = "---"

// ErrUnclosedFrontMatter is recorded when the opening marker has no match.
var ErrUnclosedFrontMatter = errors.New("frontmatter is not closed by ---")

// Document is a parsed Shire document.
type Document struct {
	// Hole is nil when the document has no frontmatter.
	Hole    *hobbit.Hole
	Body    string
	Symbols *variable.SymbolTable
	// Diagnostics lists the frontmatter entries that were skipped.
	Diagnostics []error
}

func isMarker(line string) bool {
	return strings.TrimRight(line, " \t\r") == frontMatterMarker
}

// HasFrontMatter reports whether src opens with a --- marker line.
func HasFrontMatter(src string) bool {
	first, _, _ := strings.Cut(src, "\n")
	return isMarker(first)
}

// ParseDocument splits src into frontmatter and body, parses the frontmatter
// and collects the variables the body references. It never fails: problems
// are reported through Diagnostics and the body is always returned.
func ParseDocument(src string) *Document {
	doc := &Document{Body: src}
	bodyLine := 0
	if HasFrontMatter(src) {
		lines := strings.Split(src, "\n")
		closing := -1
		for i := 1; i < len(lines); i++ {
			if isMarker(lines[i]) {
				closing = i
				break
			}
		}
		if closing < 0 {
			doc.Diagnostics = append(doc.Diagnostics, &ParseError{Line: 0, Key: frontMatterMarker, Err: ErrUnclosedFrontMatter})
		} else {
			front := make([]string, closing-1)
			for i, l := range lines[1:closing] {
				front[i] = strings.TrimRight(l, "\r")
			}
			doc.Hole, doc.Diagnostics = parseFrontMatter(front, 1)
			doc.Body = bodyAfter(src, closing)
			bodyLine = closing
		}
	}
	doc.Symbols = collectSymbols(doc.Body, bodyLine)
	return doc
}

// bodyAfter returns the text after line n, starting with the newline that
// ends it.
func bodyAfter(src string, n int) string {
	off := 0
	for range n {
		off += strings.IndexByte(src[off:], '\n') + 1
	}
	nl := strings.IndexByte(src[off:], '\n')
	if nl < 0 {
		return ""
	}
	return src[off+nl:]
}

package parser

import "github.com/shirelang/shire/pkg/variable"

// Reference is one `$name` occurrence in a body.
type Reference struct {
	Name string
	// Start and End are byte offsets of the whole reference, sigil included.
	Start, End int
	// Braced is set for the ${name} form.
	Braced bool
}

// ScanReferences finds the variable references of body in order.
func ScanReferences(body string) []Reference {
	var refs []Reference
	for i := 0; i < len(body); i++ {
		if body[i] != '$' || i+1 >= len(body) {
			continue
		}
		if body[i+1] == '{' {
			j := i + 2
			for j < len(body) && isIdentPart(body[j]) {
				j++
			}
			if j > i+2 && j < len(body) && body[j] == '}' && isIdentStart(body[i+2]) {
				refs = append(refs, Reference{Name: body[i+2 : j], Start: i, End: j + 1, Braced: true})
				i = j
			}
			continue
		}
		if !isIdentStart(body[i+1]) {
			continue
		}
		j := i + 1
		for j < len(body) && isIdentPart(body[j]) {
			j++
		}
		refs = append(refs, Reference{Name: body[i+1 : j], Start: i, End: j})
		i = j - 1
	}
	return refs
}

// collectSymbols declares every reference of body. firstLine is the
// document line the body starts on.
func collectSymbols(body string, firstLine int) *variable.SymbolTable {
	table := variable.NewSymbolTable()
	line, off := firstLine, 0
	for _, ref := range ScanReferences(body) {
		for ; off < ref.Start; off++ {
			if body[off] == '\n' {
				line++
			}
		}
		table.Declare(ref.Name, line)
	}
	return table
}

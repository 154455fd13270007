package variable

import "sort"

// Kind classifies where a variable's value comes from.
type Kind int

const (
	KindUser Kind = iota
	KindBuiltin
	KindContext
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindContext:
		return "context"
	case KindCustom:
		return "custom"
	}
	return "user"
}

// KindOf classifies a variable name.
func KindOf(name string) Kind {
	switch {
	case IsBuiltin(name):
		return KindBuiltin
	case IsContext(name):
		return KindContext
	case name == Input || name == Output:
		return KindCustom
	}
	return KindUser
}

// Symbol is one entry of the symbol table.
type Symbol struct {
	Name string
	Kind Kind
	// LineDeclared is the 0-based document line of the first reference.
	LineDeclared int
	Value        string
	Resolved     bool
	// Source names the resolver that produced Value.
	Source string
}

// SymbolTable records the variables a document references. Declarations
// are append-only and the first one wins.
type SymbolTable struct {
	symbols map[string]*Symbol
	order   []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string]*Symbol{}}
}

// Declare records name at line unless it is already present.
func (t *SymbolTable) Declare(name string, line int) {
	if _, ok := t.symbols[name]; ok {
		return
	}
	t.symbols[name] = &Symbol{Name: name, Kind: KindOf(name), LineDeclared: line}
	t.order = append(t.order, name)
}

// Get returns the symbol for name.
func (t *SymbolTable) Get(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// Has reports whether name is declared.
func (t *SymbolTable) Has(name string) bool {
	_, ok := t.symbols[name]
	return ok
}

// Names lists the declared names in declaration order.
func (t *SymbolTable) Names() []string {
	return append([]string(nil), t.order...)
}

// All returns the symbols in declaration order.
func (t *SymbolTable) All() []*Symbol {
	out := make([]*Symbol, len(t.order))
	for i, n := range t.order {
		out[i] = t.symbols[n]
	}
	return out
}

func (t *SymbolTable) Len() int { return len(t.order) }

// Resolve stores a value for a declared name. Later resolvers overwrite
// earlier ones. Undeclared names are ignored.
func (t *SymbolTable) Resolve(name, value, source string) {
	s, ok := t.symbols[name]
	if !ok {
		return
	}
	s.Value = value
	s.Resolved = true
	s.Source = source
}

// Unresolved lists declared names without a value, sorted.
func (t *SymbolTable) Unresolved() []string {
	var out []string
	for _, s := range t.symbols {
		if !s.Resolved {
			out = append(out, s.Name)
		}
	}
	sort.Strings(out)
	return out
}

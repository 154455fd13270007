package ast

import (
	"strconv"
	"strings"
)

// Stage is one step of a pattern-action pipeline. Stages run strictly left
// to right, each receiving the output of the previous one.
type Stage interface {
	// Name is the function name the stage was written with.
	Name() string
	Display() string
	stage()
}

// Grep keeps lines matching any of the patterns.
type Grep struct {
	Patterns []string
}

// Sort orders lines lexicographically.
type Sort struct{}

// Uniq drops repeated lines.
type Uniq struct{}

// Head keeps the first N lines.
type Head struct {
	N int
}

// Tail keeps the last N lines.
type Tail struct {
	N int
}

// Find keeps lines containing Text.
type Find struct {
	Text string
}

// Sed replaces every match of Pattern on each line.
type Sed struct {
	Pattern     string
	Replacement string
}

// Xargs hands the stream to an external command.
type Xargs struct {
	Args []Value
}

// Cat reads files. With no Paths it reads the files matched by the selector.
type Cat struct {
	Paths []Value
}

// Print replaces the stream with its arguments.
type Print struct {
	Args []Value
}

// Append adds its arguments to the end of the stream.
type Append struct {
	Args []Value
}

// SaveFile writes the stream to a workspace file and passes it on.
type SaveFile struct {
	FileName string
}

// Notify logs a message.
type Notify struct {
	Message string
}

// CaseBranch is one `"key" { stages }` arm of a Case.
type CaseBranch struct {
	Key    string
	Stages []Stage
}

// Case dispatches to the first matching branch. When Subject is the
// identifier `condition` the branch keys name conditions of the enclosing
// block; otherwise the resolved subject is compared with each key.
type Case struct {
	Subject  Value
	Branches []CaseBranch
	Default  []Stage
}

// Func is a stage provided by a registered external function.
type Func struct {
	FuncName string
	Args     []Value
}

func (Grep) stage()     {}
func (Sort) stage()     {}
func (Uniq) stage()     {}
func (Head) stage()     {}
func (Tail) stage()     {}
func (Find) stage()     {}
func (Sed) stage()      {}
func (Xargs) stage()    {}
func (Cat) stage()      {}
func (Print) stage()    {}
func (Append) stage()   {}
func (SaveFile) stage() {}
func (Notify) stage()   {}
func (*Case) stage()    {}
func (Func) stage()     {}

func (Grep) Name() string     { return "grep" }
func (Sort) Name() string     { return "sort" }
func (Uniq) Name() string     { return "uniq" }
func (Head) Name() string     { return "head" }
func (Tail) Name() string     { return "tail" }
func (Find) Name() string     { return "find" }
func (Sed) Name() string      { return "sed" }
func (Xargs) Name() string    { return "xargs" }
func (Cat) Name() string      { return "cat" }
func (Print) Name() string    { return "print" }
func (Append) Name() string   { return "append" }
func (SaveFile) Name() string { return "saveFile" }
func (Notify) Name() string   { return "notify" }
func (*Case) Name() string    { return "case" }
func (f Func) Name() string   { return f.FuncName }

func (g Grep) Display() string     { return call(g.Name(), quoteAll(g.Patterns)...) }
func (s Sort) Display() string     { return s.Name() }
func (u Uniq) Display() string     { return u.Name() }
func (h Head) Display() string     { return call(h.Name(), strconv.Itoa(h.N)) }
func (t Tail) Display() string     { return call(t.Name(), strconv.Itoa(t.N)) }
func (f Find) Display() string     { return call(f.Name(), quote(f.Text)) }
func (s Sed) Display() string      { return call(s.Name(), quote(s.Pattern), quote(s.Replacement)) }
func (x Xargs) Display() string    { return callValues(x.Name(), x.Args) }
func (c Cat) Display() string      { return callValues(c.Name(), c.Paths) }
func (p Print) Display() string    { return callValues(p.Name(), p.Args) }
func (a Append) Display() string   { return callValues(a.Name(), a.Args) }
func (s SaveFile) Display() string { return call(s.Name(), quote(s.FileName)) }
func (n Notify) Display() string   { return call(n.Name(), quote(n.Message)) }
func (f Func) Display() string     { return callValues(f.FuncName, f.Args) }

func (c *Case) Display() string {
	var b strings.Builder
	b.WriteString("case ")
	b.WriteString(c.Subject.Display())
	b.WriteString(" { ")
	for _, br := range c.Branches {
		b.WriteString(quote(br.Key) + " { " + DisplayStages(br.Stages) + " } ")
	}
	if c.Default != nil {
		b.WriteString("default { " + DisplayStages(c.Default) + " } ")
	}
	b.WriteString("}")
	return b.String()
}

// DisplayStages renders a pipeline as `a | b | c`.
func DisplayStages(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.Display()
	}
	return strings.Join(parts, " | ")
}

// StageArgs flattens the arguments of a stage into values. It is used by
// external stage functions and by Walk.
func StageArgs(s Stage) []Value {
	switch t := s.(type) {
	case Grep:
		return stringValues(t.Patterns)
	case Head:
		return []Value{IntValue(t.N)}
	case Tail:
		return []Value{IntValue(t.N)}
	case Find:
		return []Value{StringValue(t.Text)}
	case Sed:
		return []Value{StringValue(t.Pattern), StringValue(t.Replacement)}
	case Xargs:
		return t.Args
	case Cat:
		return t.Paths
	case Print:
		return t.Args
	case Append:
		return t.Args
	case SaveFile:
		return []Value{StringValue(t.FileName)}
	case Notify:
		return []Value{StringValue(t.Message)}
	case *Case:
		return []Value{t.Subject}
	case Func:
		return t.Args
	}
	return nil
}

func stringValues(ss []string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = StringValue(s)
	}
	return out
}

func quote(s string) string { return StringValue(s).Display() }

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = quote(s)
	}
	return out
}

func call(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

func callValues(name string, args []Value) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}
	return call(name, parts...)
}

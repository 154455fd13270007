package ast

import (
	"strconv"
	"strings"
)

// Kind tags every literal parsed from a frontmatter block.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
	KindBoolean
	KindArray
	KindObject
	KindIdentifier
	KindVariable
	KindPattern
	KindPatternAction
	KindExpression
	KindError
)

var kindNames = [...]string{
	KindString:        "STRING",
	KindNumber:        "NUMBER",
	KindDate:          "DATE",
	KindBoolean:       "BOOLEAN",
	KindArray:         "ARRAY",
	KindObject:        "OBJECT",
	KindIdentifier:    "IDENTIFIER",
	KindVariable:      "VARIABLE",
	KindPattern:       "PATTERN",
	KindPatternAction: "PATTERN_ACTION",
	KindExpression:    "EXPRESSION",
	KindError:         "ERROR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Value is a typed frontmatter literal, and also the result type of
// expression evaluation.
//
// Display renders the canonical source form (strings are quoted, variables
// keep their `$`), String renders the plain text used when the value is
// substituted into a template.
type Value interface {
	Kind() Kind
	Display() string
	String() string
}

// Bindings maps variable names to their resolved text.
type Bindings map[string]string

// StringValue is a quoted or bare string literal.
type StringValue string

func (StringValue) Kind() Kind        { return KindString }
func (s StringValue) Display() string { return `"` + string(s) + `"` }
func (s StringValue) String() string  { return string(s) }

// IntValue is an integral number.
type IntValue int64

func (IntValue) Kind() Kind        { return KindNumber }
func (i IntValue) Display() string { return strconv.FormatInt(int64(i), 10) }
func (i IntValue) String() string  { return i.Display() }

// FloatValue is a number with a fractional part.
type FloatValue float64

func (FloatValue) Kind() Kind        { return KindNumber }
func (f FloatValue) Display() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (f FloatValue) String() string  { return f.Display() }

// DateValue keeps a YYYY-MM-DD literal as written.
type DateValue string

func (DateValue) Kind() Kind        { return KindDate }
func (d DateValue) Display() string { return string(d) }
func (d DateValue) String() string  { return string(d) }

// BoolValue wraps a boolean.
type BoolValue bool

func (BoolValue) Kind() Kind { return KindBoolean }
func (b BoolValue) Display() string {
	if b {
		return "true"
	}
	return "false"
}
func (b BoolValue) String() string { return b.Display() }

// ArrayValue is an inline array literal.
type ArrayValue []Value

func (ArrayValue) Kind() Kind { return KindArray }
func (a ArrayValue) Display() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.Display()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a ArrayValue) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// ObjectValue is an ordered key/value literal.
type ObjectValue struct {
	Keys   []string
	Values map[string]Value
}

// NewObjectValue returns an empty object.
func NewObjectValue() *ObjectValue {
	return &ObjectValue{Values: map[string]Value{}}
}

// Set stores a value, keeping the first insertion position of the key.
func (o *ObjectValue) Set(key string, v Value) {
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = v
}

// Get returns the value stored for key.
func (o *ObjectValue) Get(key string) (Value, bool) {
	v, ok := o.Values[key]
	return v, ok
}

func (*ObjectValue) Kind() Kind { return KindObject }
func (o *ObjectValue) Display() string {
	parts := make([]string, 0, len(o.Keys))
	for _, k := range o.Keys {
		parts = append(parts, strconv.Quote(k)+": "+o.Values[k].Display())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (o *ObjectValue) String() string { return o.Display() }

// IdentifierValue is a bare word such as a method name or an enum constant.
type IdentifierValue string

func (IdentifierValue) Kind() Kind        { return KindIdentifier }
func (i IdentifierValue) Display() string { return string(i) }
func (i IdentifierValue) String() string  { return string(i) }

// VariableValue references a binding by name, written `$name`.
type VariableValue string

func (VariableValue) Kind() Kind        { return KindVariable }
func (v VariableValue) Display() string { return "$" + string(v) }
func (v VariableValue) String() string  { return v.Display() }

// Name returns the variable name without the `$` sigil.
func (v VariableValue) Name() string { return string(v) }

// PatternValue is a `/…/` selector.
type PatternValue string

func (PatternValue) Kind() Kind        { return KindPattern }
func (p PatternValue) Display() string { return "/" + string(p) + "/" }
func (p PatternValue) String() string  { return string(p) }

// PatternActionValue is `/selector/ { stage | stage }`. A block written without
// a selector has an empty Pattern.
type PatternActionValue struct {
	Pattern    string
	Conditions []Condition
	Stages     []Stage
}

func (*PatternActionValue) Kind() Kind { return KindPatternAction }
func (p *PatternActionValue) Display() string {
	var b strings.Builder
	if p.Pattern != "" {
		b.WriteString("/" + p.Pattern + "/ ")
	}
	b.WriteString("{ ")
	if len(p.Conditions) > 0 {
		b.WriteString("condition { ")
		for _, c := range p.Conditions {
			b.WriteString(c.Display())
			b.WriteString(" ")
		}
		b.WriteString("} ")
	}
	b.WriteString(DisplayStages(p.Stages))
	b.WriteString(" }")
	return b.String()
}
func (p *PatternActionValue) String() string { return p.Display() }

// ExpressionValue wraps a statement used where a value is expected, such as
// the left operand of a comparison.
type ExpressionValue struct {
	Statement Statement
}

func (ExpressionValue) Kind() Kind        { return KindExpression }
func (e ExpressionValue) Display() string { return e.Statement.Display() }
func (e ExpressionValue) String() string  { return e.Display() }

// ErrorValue records a literal that could not be parsed.
type ErrorValue string

func (ErrorValue) Kind() Kind        { return KindError }
func (e ErrorValue) Display() string { return string(e) }
func (e ErrorValue) String() string  { return string(e) }

// Condition is a named boolean expression declared in a `condition { }` block.
type Condition struct {
	Name string
	Expr Statement
}

func (c Condition) Display() string {
	return strconv.Quote(c.Name) + " { " + c.Expr.Display() + " }"
}

// Text returns the substitution text of v, treating nil as empty.
func Text(v Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

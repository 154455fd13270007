package ast

import (
	"strconv"
	"strings"
)

// OperatorType enumerates the logical and comparison operators.
type OperatorType int

const (
	OpOr OperatorType = iota
	OpAnd
	OpNot
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessEqual
	OpGreaterEqual
)

var operatorSymbols = [...]string{
	OpOr:           "||",
	OpAnd:          "&&",
	OpNot:          "!",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLessThan:     "<",
	OpGreaterThan:  ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
}

// Display returns the canonical symbol of the operator.
func (o OperatorType) Display() string {
	if int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return "?"
}

func (o OperatorType) String() string { return o.Display() }

// IsComparison reports whether o compares two operands.
func (o OperatorType) IsComparison() bool { return o >= OpEqual }

// ParseOperator maps a symbol to its operator.
func ParseOperator(symbol string) (OperatorType, error) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return OperatorType(op), nil
		}
	}
	return 0, evalErrorf(ErrInvalidOperator, "Invalid operator: %s", symbol)
}

// StringOperator enumerates the infix string predicates.
type StringOperator int

const (
	StrContains StringOperator = iota
	StrStartsWith
	StrEndsWith
	StrMatches
)

var stringOperatorNames = [...]string{
	StrContains:   "contains",
	StrStartsWith: "startsWith",
	StrEndsWith:   "endsWith",
	StrMatches:    "matches",
}

func (s StringOperator) Display() string { return stringOperatorNames[s] }

// ParseStringOperator maps a keyword to its string operator.
func ParseStringOperator(word string) (StringOperator, bool) {
	for op, s := range stringOperatorNames {
		if s == word {
			return StringOperator(op), true
		}
	}
	return 0, false
}

// Statement is a node of a parsed expression. Statements are immutable once
// parsed and Evaluate has no side effects.
type Statement interface {
	Evaluate(vars Bindings) (Value, error)
	Display() string
	statement()
}

// Operator is a bare operator token.
type Operator struct {
	Type OperatorType
}

func (Operator) statement()                         {}
func (o Operator) Display() string                  { return o.Type.Display() }
func (o Operator) Evaluate(Bindings) (Value, error) { return StringValue(o.Type.Display()), nil }

// StringOperatorStatement is a bare string operator token.
type StringOperatorStatement struct {
	Type StringOperator
}

func (StringOperatorStatement) statement()                         {}
func (s StringOperatorStatement) Display() string                  { return s.Type.Display() }
func (s StringOperatorStatement) Evaluate(Bindings) (Value, error) { return StringValue(s.Type.Display()), nil }

// Comparison compares an operand against a value: `$x.length() >= 1`.
type Comparison struct {
	Variable Value
	Operator Operator
	Value    Value
}

func (*Comparison) statement() {}

func (c *Comparison) Display() string {
	return c.Variable.Display() + " " + c.Operator.Display() + " " + c.Value.Display()
}

func (c *Comparison) Evaluate(vars Bindings) (Value, error) {
	left, err := resolveOperand(c.Variable, vars, true)
	if err != nil {
		return nil, err
	}
	right, err := resolveOperand(c.Value, vars, false)
	if err != nil {
		return nil, err
	}
	ok, err := compare(c.Operator.Type, left, right)
	if err != nil {
		return nil, err
	}
	return BoolValue(ok), nil
}

// StringComparison applies a string operator: `$fileName endsWith ".go"`.
type StringComparison struct {
	Variable string
	Operator StringOperatorStatement
	Value    string
}

func (*StringComparison) statement() {}

func (s *StringComparison) Display() string {
	return "$" + s.Variable + " " + s.Operator.Display() + " " + StringValue(s.Value).Display()
}

func (s *StringComparison) Evaluate(vars Bindings) (Value, error) {
	subject, ok := vars[s.Variable]
	if !ok {
		return nil, variableNotFound(s.Variable)
	}
	switch s.Operator.Type {
	case StrContains:
		return BoolValue(strings.Contains(subject, s.Value)), nil
	case StrStartsWith:
		return BoolValue(strings.HasPrefix(subject, s.Value)), nil
	case StrEndsWith:
		return BoolValue(strings.HasSuffix(subject, s.Value)), nil
	case StrMatches:
		matched, err := fullMatch(s.Value, subject)
		if err != nil {
			return nil, err
		}
		return BoolValue(matched), nil
	}
	return nil, evalErrorf(ErrInvalidOperator, "Invalid string operator: %d", s.Operator.Type)
}

// LogicalExpression combines two boolean statements with && or ||.
type LogicalExpression struct {
	Left     Statement
	Operator OperatorType
	Right    Statement
}

func (*LogicalExpression) statement() {}

func (l *LogicalExpression) Display() string {
	return l.wrap(l.Left) + " " + l.Operator.Display() + " " + l.wrap(l.Right)
}

// wrap parenthesises an || operand of an && expression.
func (l *LogicalExpression) wrap(s Statement) string {
	if child, ok := s.(*LogicalExpression); ok && l.Operator == OpAnd && child.Operator == OpOr {
		return "(" + child.Display() + ")"
	}
	return s.Display()
}

func (l *LogicalExpression) Evaluate(vars Bindings) (Value, error) {
	left, err := evaluateBool(l.Left, vars)
	if err != nil {
		return nil, err
	}
	right, err := evaluateBool(l.Right, vars)
	if err != nil {
		return nil, err
	}
	switch l.Operator {
	case OpAnd:
		return BoolValue(left && right), nil
	case OpOr:
		return BoolValue(left || right), nil
	}
	return nil, evalErrorf(ErrInvalidOperator, "Invalid logical operator: %s", l.Operator.Display())
}

// NotExpression negates a boolean statement.
type NotExpression struct {
	Operand Statement
}

func (*NotExpression) statement() {}

func (n *NotExpression) Display() string {
	if _, ok := n.Operand.(*LogicalExpression); ok {
		return "!(" + n.Operand.Display() + ")"
	}
	return "!" + n.Operand.Display()
}

func (n *NotExpression) Evaluate(vars Bindings) (Value, error) {
	v, err := evaluateBool(n.Operand, vars)
	if err != nil {
		return nil, err
	}
	return BoolValue(!v), nil
}

// MethodCall invokes a builtin method on a bound variable:
// `$selection.first()`.
type MethodCall struct {
	ObjectName Value
	MethodName Value
	Arguments  []Value
}

func (*MethodCall) statement() {}

func (m *MethodCall) Display() string {
	args := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		args[i] = a.Display()
	}
	return m.ObjectName.Display() + "." + m.MethodName.Display() + "(" + strings.Join(args, ", ") + ")"
}

func (m *MethodCall) Evaluate(vars Bindings) (Value, error) {
	name := receiverName(m.ObjectName)
	receiver, ok := vars[name]
	if !ok {
		return nil, variableNotFound(name)
	}
	args := make([]Value, len(m.Arguments))
	for i, a := range m.Arguments {
		if v, ok := a.(VariableValue); ok {
			bound, found := vars[v.Name()]
			if !found {
				return nil, variableNotFound(v.Name())
			}
			args[i] = StringValue(bound)
			continue
		}
		args[i] = a
	}
	return CallMethod(m.MethodName.String(), receiver, args)
}

func receiverName(v Value) string {
	switch t := v.(type) {
	case VariableValue:
		return t.Name()
	case StringValue:
		return string(t)
	case IdentifierValue:
		return string(t)
	}
	return v.String()
}

// EvaluateBool evaluates s and requires a boolean result.
func EvaluateBool(s Statement, vars Bindings) (bool, error) {
	return evaluateBool(s, vars)
}

func evaluateBool(s Statement, vars Bindings) (bool, error) {
	v, err := s.Evaluate(vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(BoolValue)
	if !ok {
		return false, evalErrorf(ErrTypeMismatch, "Expected a boolean from %s, got %s", s.Display(), v.Kind())
	}
	return bool(b), nil
}

// resolveOperand turns a comparison operand into a concrete value. Bare
// identifiers on the left are variable names, on the right they are text.
func resolveOperand(v Value, vars Bindings, left bool) (Value, error) {
	switch t := v.(type) {
	case ExpressionValue:
		return t.Statement.Evaluate(vars)
	case VariableValue:
		bound, ok := vars[t.Name()]
		if !ok {
			return nil, variableNotFound(t.Name())
		}
		return StringValue(bound), nil
	case IdentifierValue:
		if !left {
			return StringValue(t), nil
		}
		bound, ok := vars[string(t)]
		if !ok {
			return nil, variableNotFound(string(t))
		}
		return StringValue(bound), nil
	}
	return v, nil
}

func compare(op OperatorType, left, right Value) (bool, error) {
	ln, lnum := numberOf(left)
	rn, rnum := numberOf(right)
	numeric := lnum && rnum && (left.Kind() == KindNumber || right.Kind() == KindNumber)

	switch op {
	case OpEqual, OpNotEqual:
		var eq bool
		switch {
		case numeric:
			eq = ln == rn
		default:
			eq = left.String() == right.String()
		}
		if op == OpEqual {
			return eq, nil
		}
		return !eq, nil
	case OpLessThan, OpGreaterThan, OpLessEqual, OpGreaterEqual:
		var c int
		switch {
		case numeric:
			switch {
			case ln < rn:
				c = -1
			case ln > rn:
				c = 1
			}
		case isText(left) && isText(right):
			c = strings.Compare(left.String(), right.String())
		default:
			return false, evalErrorf(ErrTypeMismatch, "Cannot compare %s with %s", left.Display(), right.Display())
		}
		switch op {
		case OpLessThan:
			return c < 0, nil
		case OpGreaterThan:
			return c > 0, nil
		case OpLessEqual:
			return c <= 0, nil
		default:
			return c >= 0, nil
		}
	}
	return false, evalErrorf(ErrInvalidOperator, "Invalid comparison operator: %s", op.Display())
}

func numberOf(v Value) (float64, bool) {
	switch t := v.(type) {
	case IntValue:
		return float64(t), true
	case FloatValue:
		return float64(t), true
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		return f, err == nil
	}
	return 0, false
}

func isText(v Value) bool {
	switch v.Kind() {
	case KindString, KindIdentifier, KindDate:
		return true
	}
	return false
}

package ast

import (
	"bytes"
	"fmt"
)

// Visitor is called for every statement reached by Walk.
type Visitor interface {
	Visit(s Statement) error
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(s Statement) error

func (f VisitorFunc) Visit(s Statement) error { return f(s) }

// Walk visits s and then its children depth first, stopping at the first
// error. Statements nested in ExpressionValue operands are visited too.
func Walk(v Visitor, s Statement) error {
	if err := v.Visit(s); err != nil {
		return err
	}
	switch t := s.(type) {
	case *LogicalExpression:
		if err := Walk(v, t.Left); err != nil {
			return err
		}
		return Walk(v, t.Right)
	case *NotExpression:
		return Walk(v, t.Operand)
	case *Comparison:
		for _, operand := range []Value{t.Variable, t.Value} {
			if e, ok := operand.(ExpressionValue); ok {
				if err := Walk(v, e.Statement); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Variables returns the names of the variables s reads, in first-seen order.
func Variables(s Statement) []string {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	_ = Walk(VisitorFunc(func(s Statement) error {
		switch t := s.(type) {
		case *Comparison:
			if v, ok := t.Variable.(VariableValue); ok {
				add(v.Name())
			}
			if v, ok := t.Value.(VariableValue); ok {
				add(v.Name())
			}
		case *StringComparison:
			add(t.Variable)
		case *MethodCall:
			add(receiverName(t.ObjectName))
			for _, a := range t.Arguments {
				if v, ok := a.(VariableValue); ok {
					add(v.Name())
				}
			}
		}
		return nil
	}), s)
	return names
}

// Pretty returns a line-oriented rendering of the statement tree.
func Pretty(s Statement) string {
	var buf bytes.Buffer
	ppStatement(&buf, 0, s)
	return buf.String()
}

func ppStatement(buf *bytes.Buffer, indent int, s Statement) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	switch t := s.(type) {
	case *LogicalExpression:
		fmt.Fprintf(buf, "Logical(%s)\n", t.Operator.Display())
		ppStatement(buf, indent+2, t.Left)
		ppStatement(buf, indent+2, t.Right)
	case *NotExpression:
		buf.WriteString("Not\n")
		ppStatement(buf, indent+2, t.Operand)
	case *Comparison:
		fmt.Fprintf(buf, "Comparison(%s)\n", t.Operator.Display())
		ppOperand(buf, indent+2, t.Variable)
		ppOperand(buf, indent+2, t.Value)
	case *StringComparison:
		fmt.Fprintf(buf, "StringComparison($%s %s %q)\n", t.Variable, t.Operator.Display(), t.Value)
	case *MethodCall:
		fmt.Fprintf(buf, "MethodCall(%s)\n", t.Display())
	case Operator:
		fmt.Fprintf(buf, "Operator(%s)\n", t.Display())
	case StringOperatorStatement:
		fmt.Fprintf(buf, "StringOperator(%s)\n", t.Display())
	}
}

func ppOperand(buf *bytes.Buffer, indent int, v Value) {
	if e, ok := v.(ExpressionValue); ok {
		ppStatement(buf, indent, e.Statement)
		return
	}
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	fmt.Fprintf(buf, "%s(%s)\n", v.Kind(), v.Display())
}

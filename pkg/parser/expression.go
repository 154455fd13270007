package parser

import (
	"fmt"

	"github.com/shirelang/shire/pkg/ast"
)

// ParseExpression parses a `when` style boolean expression.
func ParseExpression(src string) (ast.Statement, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	s, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) parseOr() (ast.Statement, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isOperator("||") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Left: left, Operator: ast.OpOr, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Statement, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOperator("&&") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Left: left, Operator: ast.OpAnd, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Statement, error) {
	if p.isOperator("!") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpression{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Statement, error) {
	if p.isPunct("(") {
		p.next()
		s, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return s, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	switch {
	case t.kind == tokOperator:
		op, err := ast.ParseOperator(t.val)
		if err != nil {
			return nil, err
		}
		if !op.IsComparison() {
			// && and || belong to the enclosing parseAnd/parseOr.
			break
		}
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &ast.Comparison{Variable: left, Operator: ast.Operator{Type: op}, Value: right}, nil
	case t.kind == tokIdent:
		op, ok := ast.ParseStringOperator(t.val)
		if !ok {
			return nil, p.unexpected("an operator")
		}
		v, isVar := left.(ast.VariableValue)
		if !isVar {
			return nil, fmt.Errorf("offset %d: %s needs a variable on the left", t.pos, t.val)
		}
		p.next()
		rhs := p.peek()
		if rhs.kind != tokString {
			return nil, p.unexpected("a string")
		}
		p.next()
		return &ast.StringComparison{
			Variable: v.Name(),
			Operator: ast.StringOperatorStatement{Type: op},
			Value:    rhs.val,
		}, nil
	}

	if e, ok := left.(ast.ExpressionValue); ok {
		return e.Statement, nil
	}
	return nil, fmt.Errorf("offset %d: %s is not a condition", t.pos, left.Display())
}

// parseOperand parses a value or a method call on a variable. Property
// access without parentheses is a call with no arguments.
func (p *parser) parseOperand() (ast.Value, error) {
	t := p.peek()
	if t.kind != tokVariable || p.peekAt(1).kind != tokPunct || p.peekAt(1).val != "." {
		return p.parseValue()
	}
	p.next()
	p.next()
	name := p.peek()
	if name.kind != tokIdent {
		return nil, p.unexpected("a method name")
	}
	p.next()
	call := &ast.MethodCall{
		ObjectName: ast.VariableValue(t.val),
		MethodName: ast.IdentifierValue(name.val),
	}
	if p.isPunct("(") {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		call.Arguments = args
	}
	return ast.ExpressionValue{Statement: call}, nil
}

package parser

import (
	"fmt"

	"github.com/shirelang/shire/pkg/ast"
)

// ParsePatternAction parses `/selector/ { stage | stage }`. The selector is
// optional and the block may open with a `condition { }` declaration.
func ParsePatternAction(src string) (*ast.PatternActionValue, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	pa := &ast.PatternActionValue{}
	if p.peek().kind == tokPattern {
		pa.Pattern = p.next().val
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if p.isIdent("condition") && p.peekAt(1).kind == tokPunct && p.peekAt(1).val == "{" {
		if pa.Conditions, err = p.parseConditions(); err != nil {
			return nil, err
		}
	}
	if pa.Stages, err = p.parseStages(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return pa, nil
}

func (p *parser) parseConditions() ([]ast.Condition, error) {
	p.next()
	p.next()
	var conds []ast.Condition
	for !p.isPunct("}") {
		name := p.peek()
		if name.kind != tokString && name.kind != tokIdent {
			return nil, p.unexpected("a condition name")
		}
		p.next()
		if err := p.expectPunct("{"); err != nil {
			return nil, err
		}
		expr, err := p.parseOr()
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", name.val, err)
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		conds = append(conds, ast.Condition{Name: name.val, Expr: expr})
	}
	p.next()
	return conds, nil
}

// parseStages parses `stage | stage …` up to, not including, the closing brace.
func (p *parser) parseStages() ([]ast.Stage, error) {
	if p.isPunct("}") {
		return nil, nil
	}
	var stages []ast.Stage
	for {
		s, err := p.parseStage()
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
		if !p.isPunct("|") {
			return stages, nil
		}
		p.next()
	}
}

func (p *parser) parseStage() (ast.Stage, error) {
	name := p.peek()
	if name.kind != tokIdent {
		return nil, p.unexpected("a stage name")
	}
	p.next()
	if name.val == "case" {
		return p.parseCase()
	}
	var args []ast.Value
	if p.isPunct("(") {
		var err error
		if args, err = p.parseArgs(); err != nil {
			return nil, err
		}
	}
	s, err := buildStage(name.val, args)
	if err != nil {
		return nil, fmt.Errorf("offset %d: %w", name.pos, err)
	}
	return s, nil
}

func (p *parser) parseCase() (ast.Stage, error) {
	subject, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	c := &ast.Case{Subject: subject}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.isPunct("}") {
		key := p.peek()
		if key.kind != tokString && key.kind != tokIdent {
			return nil, p.unexpected("a case branch")
		}
		p.next()
		stages, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if key.kind == tokIdent && key.val == "default" {
			if stages == nil {
				stages = []ast.Stage{}
			}
			c.Default = stages
			continue
		}
		c.Branches = append(c.Branches, ast.CaseBranch{Key: key.val, Stages: stages})
	}
	p.next()
	return c, nil
}

func (p *parser) parseBlock() ([]ast.Stage, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	stages, err := p.parseStages()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return stages, nil
}

func buildStage(name string, args []ast.Value) (ast.Stage, error) {
	switch name {
	case "grep":
		if len(args) == 0 {
			return nil, fmt.Errorf("grep needs at least one pattern")
		}
		patterns := make([]string, len(args))
		for i, a := range args {
			patterns[i] = a.String()
		}
		return ast.Grep{Patterns: patterns}, nil
	case "sort":
		return ast.Sort{}, nil
	case "uniq":
		return ast.Uniq{}, nil
	case "head", "tail":
		n, err := countArg(name, args)
		if err != nil {
			return nil, err
		}
		if name == "head" {
			return ast.Head{N: n}, nil
		}
		return ast.Tail{N: n}, nil
	case "find":
		if len(args) != 1 {
			return nil, fmt.Errorf("find takes one argument, got %d", len(args))
		}
		if v, ok := args[0].(ast.VariableValue); ok {
			return ast.Find{Text: v.Name()}, nil
		}
		return ast.Find{Text: args[0].String()}, nil
	case "sed":
		if len(args) != 2 {
			return nil, fmt.Errorf("sed takes a pattern and a replacement, got %d arguments", len(args))
		}
		return ast.Sed{Pattern: args[0].String(), Replacement: args[1].String()}, nil
	case "xargs":
		return ast.Xargs{Args: args}, nil
	case "cat":
		return ast.Cat{Paths: args}, nil
	case "print":
		return ast.Print{Args: args}, nil
	case "append":
		return ast.Append{Args: args}, nil
	case "saveFile":
		if len(args) != 1 {
			return nil, fmt.Errorf("saveFile takes one file name, got %d arguments", len(args))
		}
		return ast.SaveFile{FileName: args[0].String()}, nil
	case "notify":
		if len(args) != 1 {
			return nil, fmt.Errorf("notify takes one message, got %d arguments", len(args))
		}
		return ast.Notify{Message: args[0].String()}, nil
	}
	return ast.Func{FuncName: name, Args: args}, nil
}

func countArg(name string, args []ast.Value) (int, error) {
	switch len(args) {
	case 0:
		return 10, nil
	case 1:
		if n, ok := args[0].(ast.IntValue); ok && n >= 0 {
			return int(n), nil
		}
		return 0, fmt.Errorf("%s needs a non-negative integer, got %s", name, args[0].Display())
	}
	return 0, fmt.Errorf("%s takes at most one argument, got %d", name, len(args))
}

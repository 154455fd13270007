package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
)

// ErrorMarker prefixes in-band error text. A failed stage replaces the
// stream with "<SHIRE_ERROR>: message".
const ErrorMarker = "<SHIRE_ERROR>"

// ErrorText renders err as in-band marker text.
func ErrorText(err error) string { return ErrorMarker + ": " + err.Error() }

// CurrentStream is the variable name a case subject uses for the stream.
const CurrentStream = "0"

// Processor executes pattern-action blocks. It is not safe for concurrent
// use; create one per compile request.
type Processor struct {
	Workspace Workspace
	Executor  Executor
	Functions Functions
	Logger    *slog.Logger
}

// Result is the outcome of one block.
type Result struct {
	Text string
	// Files holds the paths matched by the selector.
	Files []string
	Saved []string
	// Err is the first stage failure. Its marker text went on to the
	// following stages.
	Err error
}

type run struct {
	block *ast.PatternActionValue
	vars  ast.Bindings
	files []string
	text  string
	saved []string
	err   error
}

// Execute runs pa. Blocks without a selector start from input, blocks with
// one start from the matched file list. vars supplies $variables, case
// subjects and named conditions. A failing stage hands marker text to the
// next stage instead of stopping the block.
func (p *Processor) Execute(pa *ast.PatternActionValue, input string, vars ast.Bindings) Result {
	r := &run{block: pa, vars: vars, text: input}
	if pa.Pattern != "" {
		files, err := p.match(pa.Pattern)
		if err != nil {
			p.fail(r, fmt.Errorf("selector %s: %w", pa.Pattern, err))
		} else {
			r.files = files
			r.text = strings.Join(files, "\n")
		}
	}
	p.runStages(r, pa.Stages)
	return Result{Text: r.text, Files: r.files, Saved: r.saved, Err: r.err}
}

// fail replaces the stream with the marker text of err and keeps the first
// error of the block.
func (p *Processor) fail(r *run, err error) {
	p.logger().Warn("pattern action failed", "block", r.block.Display(), "error", err)
	r.text = ErrorText(err)
	if r.err == nil {
		r.err = err
	}
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Processor) match(pattern string) ([]string, error) {
	sel, err := NewSelector(pattern)
	if err != nil {
		return nil, err
	}
	if p.Workspace == nil {
		return nil, errors.New("no workspace configured")
	}
	all, err := p.Workspace.Files()
	if err != nil {
		return nil, err
	}
	return sel.Filter(all), nil
}

func (p *Processor) runStages(r *run, stages []ast.Stage) {
	for _, s := range stages {
		out, err := p.runStage(r, s)
		if err != nil {
			p.fail(r, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		r.text = out
	}
}

func (p *Processor) runStage(r *run, s ast.Stage) (string, error) {
	switch t := s.(type) {
	case ast.Cat:
		return p.cat(r, t.Paths)
	case ast.Grep:
		res := make([]*regexp.Regexp, len(t.Patterns))
		for i, pat := range t.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return "", fmt.Errorf("invalid pattern %q: %w", pat, err)
			}
			res[i] = re
		}
		return filterLines(r.text, func(line string) bool {
			for _, re := range res {
				if re.MatchString(line) {
					return true
				}
			}
			return false
		}), nil
	case ast.Find:
		if strings.TrimSpace(r.text) == "" {
			if v, ok := r.vars[t.Text]; ok {
				return v, nil
			}
		}
		return filterLines(r.text, func(line string) bool { return strings.Contains(line, t.Text) }), nil
	case ast.Sort:
		lines := splitLines(r.text)
		sort.Strings(lines)
		return strings.Join(lines, "\n"), nil
	case ast.Uniq:
		seen := map[string]bool{}
		return filterLines(r.text, func(line string) bool {
			if seen[line] {
				return false
			}
			seen[line] = true
			return true
		}), nil
	case ast.Head:
		lines := splitLines(r.text)
		if t.N < len(lines) {
			lines = lines[:max(t.N, 0)]
		}
		return strings.Join(lines, "\n"), nil
	case ast.Tail:
		lines := splitLines(r.text)
		if t.N < len(lines) {
			lines = lines[len(lines)-max(t.N, 0):]
		}
		return strings.Join(lines, "\n"), nil
	case ast.Sed:
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return "", fmt.Errorf("invalid pattern %q: %w", t.Pattern, err)
		}
		lines := strings.Split(r.text, "\n")
		for i, line := range lines {
			lines[i] = re.ReplaceAllString(line, t.Replacement)
		}
		return strings.Join(lines, "\n"), nil
	case ast.Xargs:
		return p.xargs(r, t.Args)
	case ast.Print:
		args, err := r.texts(t.Args)
		if err != nil {
			return "", err
		}
		return strings.Join(args, " "), nil
	case ast.Append:
		args, err := r.texts(t.Args)
		if err != nil {
			return "", err
		}
		return r.text + strings.Join(args, " "), nil
	case ast.SaveFile:
		if p.Workspace == nil {
			return "", errors.New("no workspace configured")
		}
		if err := p.Workspace.WriteFile(t.FileName, r.text); err != nil {
			return "", err
		}
		r.saved = append(r.saved, t.FileName)
		return r.text, nil
	case ast.Notify:
		p.logger().Info("notify", "message", t.Message)
		return r.text, nil
	case *ast.Case:
		stages, err := p.selectBranch(r, t)
		if err != nil {
			return "", err
		}
		p.runStages(r, stages)
		return r.text, nil
	case ast.Func:
		fn, ok := p.Functions[t.FuncName]
		if !ok {
			return "", fmt.Errorf("unknown stage function %q", t.FuncName)
		}
		args, err := r.resolve(t.Args)
		if err != nil {
			return "", err
		}
		return fn(r.text, args)
	}
	return "", fmt.Errorf("unsupported stage %T", s)
}

func (p *Processor) cat(r *run, paths []ast.Value) (string, error) {
	var files []string
	if len(paths) == 0 {
		files = r.files
		if files == nil {
			return r.text, nil
		}
	}
	for _, v := range paths {
		switch t := v.(type) {
		case ast.PatternValue:
			matched, err := p.match(string(t))
			if err != nil {
				return "", err
			}
			files = append(files, matched...)
		default:
			name, err := r.text1(v)
			if err != nil {
				return "", err
			}
			files = append(files, name)
		}
	}
	if p.Workspace == nil {
		return "", errors.New("no workspace configured")
	}
	contents := make([]string, 0, len(files))
	for _, f := range files {
		s, err := p.Workspace.ReadFile(f)
		if err != nil {
			return "", err
		}
		contents = append(contents, s)
	}
	return strings.Join(contents, "\n"), nil
}

func (p *Processor) xargs(r *run, args []ast.Value) (string, error) {
	if len(args) == 0 {
		return "", errors.New("missing command")
	}
	if p.Executor == nil {
		return "", errors.New("no executor configured")
	}
	words, err := r.texts(args)
	if err != nil {
		return "", err
	}
	return p.Executor.Exec(words[0], words[1:], r.text)
}

// selectBranch picks the stages of the first matching branch, or the
// default branch.
func (p *Processor) selectBranch(r *run, c *ast.Case) ([]ast.Stage, error) {
	if id, ok := c.Subject.(ast.IdentifierValue); ok && id == "condition" {
		for _, br := range c.Branches {
			cond, ok := r.condition(br.Key)
			if !ok {
				return nil, fmt.Errorf("undefined condition %q", br.Key)
			}
			matched, err := ast.EvaluateBool(cond.Expr, r.vars)
			if err != nil {
				return nil, fmt.Errorf("condition %q: %w", br.Key, err)
			}
			if matched {
				return br.Stages, nil
			}
		}
		return c.Default, nil
	}
	subject, err := r.text1(c.Subject)
	if err != nil {
		return nil, err
	}
	for _, br := range c.Branches {
		if br.Key == subject {
			return br.Stages, nil
		}
	}
	return c.Default, nil
}

func (r *run) condition(name string) (ast.Condition, bool) {
	for _, c := range r.block.Conditions {
		if c.Name == name {
			return c, true
		}
	}
	return ast.Condition{}, false
}

// resolve replaces $variables with their bound text. $0 is the stream.
func (r *run) resolve(args []ast.Value) ([]ast.Value, error) {
	out := make([]ast.Value, len(args))
	for i, a := range args {
		v, ok := a.(ast.VariableValue)
		if !ok {
			out[i] = a
			continue
		}
		s, err := r.lookup(v.Name())
		if err != nil {
			return nil, err
		}
		out[i] = ast.StringValue(s)
	}
	return out, nil
}

func (r *run) lookup(name string) (string, error) {
	if name == CurrentStream {
		return r.text, nil
	}
	s, ok := r.vars[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ast.ErrVariableNotFound, name)
	}
	return s, nil
}

func (r *run) text1(v ast.Value) (string, error) {
	if vv, ok := v.(ast.VariableValue); ok {
		return r.lookup(vv.Name())
	}
	return v.String(), nil
}

func (r *run) texts(args []ast.Value) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := r.text1(a)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func filterLines(s string, keep func(string) bool) string {
	var out []string
	for _, line := range splitLines(s) {
		if keep(line) {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

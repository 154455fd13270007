// Package compiler turns a Shire document into the prompt text sent to a
// model, and runs the post-processing pipelines on the model output.
package compiler

import (
	"log/slog"
	"maps"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/hobbit"
	"github.com/shirelang/shire/pkg/parser"
	"github.com/shirelang/shire/pkg/pipeline"
	"github.com/shirelang/shire/pkg/variable"
)

// Options configures a Compiler. Every field is optional.
type Options struct {
	Editor    *variable.Editor
	Providers variable.Providers
	// Custom values are applied after every other source and win over
	// builtins and declared variables. input and output are set here.
	Custom    map[string]string
	Workspace pipeline.Workspace
	Executor  pipeline.Executor
	Functions pipeline.Functions
	Logger    *slog.Logger
}

// Compiler compiles documents against one editor state. It is not safe for
// concurrent use.
type Compiler struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Compiler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{opts: opts, logger: logger}
}

// Result is the outcome of one compile pass.
type Result struct {
	Output string
	// Config is nil when the document has no frontmatter.
	Config      *hobbit.Hole
	SymbolTable *variable.SymbolTable
	// Variables holds every resolved value, declared variables included.
	Variables map[string]string
	// HasError is set when the output carries an error marker or is empty.
	HasError bool
	Empty    bool
	// Applicable is the value of the `when` condition, true without one.
	Applicable bool
	// Diagnostics lists the marker lines found in Output.
	Diagnostics []string
	// Errors lists skipped frontmatter entries and a failed `when`.
	Errors []error
	// Rules are the filename rules matching the editor file.
	Rules []hobbit.FilenameRule
}

// Prompt is the trimmed output.
func (r *Result) Prompt() string { return strings.TrimSpace(r.Output) }

func (c *Compiler) processor() *pipeline.Processor {
	return &pipeline.Processor{
		Workspace: c.opts.Workspace,
		Executor:  c.opts.Executor,
		Functions: c.opts.Functions,
		Logger:    c.logger,
	}
}

// Compile parses src, resolves its variables, evaluates `when` and
// substitutes the body.
func (c *Compiler) Compile(src string) *Result {
	doc := parser.ParseDocument(src)
	res := &Result{
		Config:      doc.Hole,
		SymbolTable: doc.Symbols,
		Applicable:  true,
		Errors:      doc.Diagnostics,
	}
	for _, err := range doc.Diagnostics {
		c.logger.Warn("skipped frontmatter entry", "error", err)
	}

	vars := c.resolve(doc)
	if h := doc.Hole; h != nil && h.When != nil {
		ok, err := ast.EvaluateBool(h.When, vars)
		if err != nil {
			c.logger.Warn("when condition failed", "when", h.When.Display(), "error", err)
			res.Errors = append(res.Errors, err)
		}
		res.Applicable = ok
	}
	if e := c.opts.Editor; doc.Hole != nil && e != nil && e.FilePath != "" {
		res.Rules = doc.Hole.RulesFor(e.FilePath)
	}

	res.Output = substitute(doc.Body, vars)
	res.Variables = vars
	res.Empty = strings.TrimSpace(res.Output) == ""
	res.Diagnostics = markerLines(res.Output)
	res.HasError = res.Empty || len(res.Diagnostics) > 0
	return res
}

// resolve runs the resolvers, then the declared variables, then the custom
// values, filling the symbol table along the way.
func (c *Compiler) resolve(doc *parser.Document) ast.Bindings {
	table := doc.Symbols
	names := requestedNames(doc)
	composite := &variable.Composite{
		Resolvers: []variable.Resolver{
			variable.Builtin{Editor: c.opts.Editor},
			variable.Context{Editor: c.opts.Editor, Providers: c.opts.Providers},
		},
		Logger: c.logger,
	}
	vars := ast.Bindings(composite.Resolve(table, names))

	if h := doc.Hole; h != nil {
		proc := c.processor()
		for _, d := range h.Variables {
			value := c.evalVariable(proc, d, vars)
			vars[d.Name] = value
			table.Resolve(d.Name, value, "variables")
		}
	}

	custom := &variable.Composite{
		Resolvers: []variable.Resolver{variable.Custom{Values: c.opts.Custom}},
		Logger:    c.logger,
	}
	maps.Copy(vars, custom.Resolve(table, names))
	return vars
}

func (c *Compiler) evalVariable(proc *pipeline.Processor, d hobbit.Variable, vars ast.Bindings) string {
	switch t := d.Value.(type) {
	case *ast.PatternActionValue:
		r := proc.Execute(t, "", vars)
		if r.Err != nil {
			c.logger.Warn("variable pipeline failed", "variable", d.Name, "error", r.Err)
		}
		return r.Text
	case ast.VariableValue:
		if v, ok := vars[t.Name()]; ok {
			return v
		}
		return t.Display()
	}
	return ast.Text(d.Value)
}

// requestedNames lists the variables the body, `when` and the declared
// pipelines read.
func requestedNames(doc *parser.Document) []string {
	names := doc.Symbols.Names()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	h := doc.Hole
	if h == nil {
		return names
	}
	if h.When != nil {
		for _, n := range ast.Variables(h.When) {
			add(n)
		}
	}
	for _, d := range h.Variables {
		if pa, ok := d.PatternAction(); ok {
			for _, n := range pipelineVariables(pa.Stages) {
				add(n)
			}
		}
	}
	return names
}

func pipelineVariables(stages []ast.Stage) []string {
	var names []string
	for _, s := range stages {
		for _, a := range ast.StageArgs(s) {
			if v, ok := a.(ast.VariableValue); ok {
				names = append(names, v.Name())
			}
		}
		if cs, ok := s.(*ast.Case); ok {
			for _, br := range cs.Branches {
				names = append(names, pipelineVariables(br.Stages)...)
			}
			names = append(names, pipelineVariables(cs.Default)...)
		}
	}
	return names
}

func markerLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, pipeline.ErrorMarker) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// ExecuteStreamingEnd runs the onStreamingEnd pipeline over ctx.GenText and
// stores the result back in GenText.
func (c *Compiler) ExecuteStreamingEnd(h *hobbit.Hole, ctx *pipeline.PostProcessorContext) error {
	if h == nil || h.OnStreamingEnd == nil {
		return nil
	}
	r := c.processor().Execute(h.OnStreamingEnd, ctx.GenText, c.postBindings(ctx))
	ctx.GenText = r.Text
	ctx.SavedFiles = append(ctx.SavedFiles, r.Saved...)
	return r.Err
}

// ExecuteAfterStreaming runs the afterStreaming pipeline with $output bound
// to the generated text and stores the result in LastTaskOutput.
func (c *Compiler) ExecuteAfterStreaming(h *hobbit.Hole, ctx *pipeline.PostProcessorContext) error {
	if h == nil || h.AfterStreaming == nil {
		return nil
	}
	r := c.processor().Execute(h.AfterStreaming, ctx.GenText, c.postBindings(ctx))
	ctx.LastTaskOutput = r.Text
	ctx.SavedFiles = append(ctx.SavedFiles, r.Saved...)
	return r.Err
}

func (c *Compiler) postBindings(ctx *pipeline.PostProcessorContext) ast.Bindings {
	vars := ast.Bindings(maps.Clone(ctx.CompiledVariables))
	if vars == nil {
		vars = ast.Bindings{}
	}
	vars[variable.Output] = ctx.GenText
	return vars
}

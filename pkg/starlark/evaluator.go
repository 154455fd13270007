// Package starlark lets users contribute pipeline stages and xargs commands
// written in Starlark. Every top-level function of a script that does not
// start with an underscore becomes a stage named after it.
package starlark

import (
	"fmt"
	"sort"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/pipeline"
	"go.starlark.net/starlark"
)

// Evaluator runs Starlark scripts. It is not safe for concurrent use.
type Evaluator struct {
	thread   *starlark.Thread
	builtins starlark.StringDict
	globals  starlark.StringDict
}

// NewEvaluator creates an evaluator whose builtins reach h.
func NewEvaluator(h Host) *Evaluator {
	logger := h.logger()
	thread := &starlark.Thread{
		Name: "shire",
		Print: func(_ *starlark.Thread, msg string) {
			logger.Info(msg, "source", "starlark")
		},
	}
	return &Evaluator{
		thread:   thread,
		builtins: CreateBuiltins(h),
		globals:  make(starlark.StringDict),
	}
}

// SetGlobal sets a global variable visible to scripts executed afterwards.
func (e *Evaluator) SetGlobal(name string, value ast.Value) {
	e.globals[name] = ConvertToStarlark(value)
}

func (e *Evaluator) predeclared() starlark.StringDict {
	predeclared := make(starlark.StringDict, len(e.builtins)+len(e.globals))
	for k, v := range e.builtins {
		predeclared[k] = v
	}
	for k, v := range e.globals {
		predeclared[k] = v
	}
	return predeclared
}

// ExecFile executes a script. src is a string, []byte or io.Reader, or nil
// to read filename from disk. Its globals are kept for later calls.
func (e *Evaluator) ExecFile(filename string, src any) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(e.thread, filename, src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}
	for k, v := range globals {
		e.globals[k] = v
	}
	return globals, nil
}

// ExecString executes a script held in a string.
func (e *Evaluator) ExecString(script string) (starlark.StringDict, error) {
	return e.ExecFile("<script>", script)
}

func isExportableKey(key string) bool {
	return key != "" && key[0] != '_'
}

// FunctionNames lists the script functions exported as stages, sorted.
func (e *Evaluator) FunctionNames() []string {
	var names []string
	for k, v := range e.globals {
		if _, ok := v.(starlark.Callable); ok && isExportableKey(k) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// call invokes a script function with the stream followed by args.
func (e *Evaluator) call(name string, input string, args []starlark.Value) (string, error) {
	fn, ok := e.globals[name].(starlark.Callable)
	if !ok {
		return "", fmt.Errorf("%s is not a function", name)
	}
	callArgs := append(starlark.Tuple{starlark.String(input)}, args...)
	val, err := starlark.Call(e.thread, fn, callArgs, nil)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", name, err)
	}
	return streamText(val), nil
}

// Functions returns the exported script functions as pipeline stages. A
// stage receives the stream as its first argument.
func (e *Evaluator) Functions() pipeline.Functions {
	out := pipeline.Functions{}
	for _, name := range e.FunctionNames() {
		out[name] = func(input string, args []ast.Value) (string, error) {
			converted := make([]starlark.Value, len(args))
			for i, a := range args {
				converted[i] = ConvertToStarlark(a)
			}
			return e.call(name, input, converted)
		}
	}
	return out
}

// Executor serves xargs commands named after script functions and hands any
// other command to fallback. A nil fallback rejects unknown commands.
func (e *Evaluator) Executor(fallback pipeline.Executor) pipeline.Executor {
	return pipeline.ExecutorFunc(func(name string, args []string, input string) (string, error) {
		if v, ok := e.globals[name]; ok && isExportableKey(name) {
			if _, callable := v.(starlark.Callable); callable {
				converted := make([]starlark.Value, len(args))
				for i, a := range args {
					converted[i] = starlark.String(a)
				}
				return e.call(name, input, converted)
			}
		}
		if fallback == nil {
			return "", fmt.Errorf("command %q is not allowed", name)
		}
		return fallback.Exec(name, args, input)
	})
}

// Load executes the script at path with globals predeclared and returns
// its evaluator.
func Load(path string, h Host, globals map[string]ast.Value) (*Evaluator, error) {
	e := NewEvaluator(h)
	for name, value := range globals {
		e.SetGlobal(name, value)
	}
	if _, err := e.ExecFile(path, nil); err != nil {
		return nil, err
	}
	return e, nil
}

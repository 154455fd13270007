package starlark

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/pipeline"
	"go.starlark.net/starlark"
)

// Host is what scripts can reach besides their own arguments.
type Host struct {
	// Workspace backs read_file and write_file. Both fail without one.
	Workspace pipeline.Workspace
	Logger    *slog.Logger
}

func (h Host) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func joinLines(lines []string) string { return strings.Join(lines, "\n") }

func stringArg(v starlark.Value) string {
	if s, ok := v.(starlark.String); ok {
		return string(s)
	}
	return v.String()
}

// CreateBuiltins returns the functions predeclared for every script.
func CreateBuiltins(h Host) starlark.StringDict {
	return starlark.StringDict{
		"lines": starlark.NewBuiltin("lines", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var text string
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &text); err != nil {
				return nil, err
			}
			if text == "" {
				return starlark.NewList(nil), nil
			}
			parts := strings.Split(text, "\n")
			items := make([]starlark.Value, len(parts))
			for i, p := range parts {
				items[i] = starlark.String(p)
			}
			return starlark.NewList(items), nil
		}),

		"unlines": starlark.NewBuiltin("unlines", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var items starlark.Iterable
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &items); err != nil {
				return nil, err
			}
			var out []string
			iter := items.Iterate()
			defer iter.Done()
			var x starlark.Value
			for iter.Next(&x) {
				out = append(out, stringArg(x))
			}
			return starlark.String(joinLines(out)), nil
		}),

		// method exposes the builtin string methods of `when` expressions:
		// method("matches", text, "/.*.go/").
		"method": starlark.NewBuiltin("method", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if len(args) < 2 {
				return nil, fmt.Errorf("%s: want a method name and a receiver", fn.Name())
			}
			rest := make([]ast.Value, len(args)-2)
			for i, a := range args[2:] {
				rest[i] = ConvertFromStarlark(a)
			}
			v, err := ast.CallMethod(stringArg(args[0]), stringArg(args[1]), rest)
			if err != nil {
				return nil, err
			}
			return ConvertToStarlark(v), nil
		}),

		"read_file": starlark.NewBuiltin("read_file", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var path string
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &path); err != nil {
				return nil, err
			}
			if h.Workspace == nil {
				return nil, errors.New("read_file: no workspace configured")
			}
			s, err := h.Workspace.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return starlark.String(s), nil
		}),

		"write_file": starlark.NewBuiltin("write_file", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var path, content string
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &path, &content); err != nil {
				return nil, err
			}
			if h.Workspace == nil {
				return nil, errors.New("write_file: no workspace configured")
			}
			if err := h.Workspace.WriteFile(path, content); err != nil {
				return nil, err
			}
			return starlark.None, nil
		}),
	}
}

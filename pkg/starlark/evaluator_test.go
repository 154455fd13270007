package starlark

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/pipeline"
	"go.starlark.net/starlark"
)

func TestConvertToStarlark(t *testing.T) {
	obj := ast.NewObjectValue()
	obj.Set("b", ast.IntValue(2))
	obj.Set("a", ast.StringValue("x"))

	tests := []struct {
		name     string
		input    ast.Value
		expected string
	}{
		{name: "string value", input: ast.StringValue("hello"), expected: `"hello"`},
		{name: "int value", input: ast.IntValue(42), expected: "42"},
		{name: "float value", input: ast.FloatValue(3.5), expected: "3.5"},
		{name: "bool value", input: ast.BoolValue(false), expected: "False"},
		{name: "nil value", input: nil, expected: "None"},
		{name: "array", input: ast.ArrayValue{ast.IntValue(1), ast.StringValue("a")}, expected: `[1, "a"]`},
		{name: "object keeps key order", input: obj, expected: `{"b": 2, "a": "x"}`},
		{name: "pattern as text", input: ast.PatternValue(".*.go"), expected: `".*.go"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertToStarlark(tt.input).String(); got != tt.expected {
				t.Errorf("ConvertToStarlark() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConvertFromStarlark(t *testing.T) {
	dict := starlark.NewDict(1)
	_ = dict.SetKey(starlark.String("k"), starlark.MakeInt(1))

	tests := []struct {
		name     string
		input    starlark.Value
		expected ast.Value
	}{
		{name: "string value", input: starlark.String("hello"), expected: ast.StringValue("hello")},
		{name: "int value", input: starlark.MakeInt64(42), expected: ast.IntValue(42)},
		{name: "bool value", input: starlark.Bool(true), expected: ast.BoolValue(true)},
		{name: "none value", input: starlark.None, expected: ast.StringValue("")},
		{name: "tuple", input: starlark.Tuple{starlark.String("a"), starlark.Float(1.5)}, expected: ast.ArrayValue{ast.StringValue("a"), ast.FloatValue(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, ConvertFromStarlark(tt.input)); diff != "" {
				t.Errorf("ConvertFromStarlark() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got := ConvertFromStarlark(dict)
	if got.Display() != `{"k": 1}` {
		t.Errorf("dict = %s", got.Display())
	}
}

const script = `
def shout(text, suffix="!"):
    return text.upper() + suffix

def numbered(text):
    return ["%d: %s" % (i + 1, line) for i, line in enumerate(lines(text))]

def is_java(text):
    return method("matches", text, "/.*\\.java/")

def _helper(text):
    return text

greeting = "hi"
`

func newScript(t *testing.T, h Host) *Evaluator {
	t.Helper()
	e := NewEvaluator(h)
	if _, err := e.ExecString(script); err != nil {
		t.Fatalf("exec: %v", err)
	}
	return e
}

func TestFunctionsBecomeStages(t *testing.T) {
	e := newScript(t, Host{})
	if diff := cmp.Diff([]string{"is_java", "numbered", "shout"}, e.FunctionNames()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	fns := e.Functions()
	cases := []struct {
		name  string
		input string
		args  []ast.Value
		want  string
	}{
		{"shout", "hey", nil, "HEY!"},
		{"shout", "hey", []ast.Value{ast.StringValue("?")}, "HEY?"},
		{"numbered", "a\nb", nil, "1: a\n2: b"},
		{"is_java", "Main.java", nil, "true"},
		{"is_java", "main.go", nil, "false"},
	}
	for _, tc := range cases {
		got, err := fns[tc.name](tc.input, tc.args)
		if err != nil {
			t.Errorf("%s(%q): %v", tc.name, tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s(%q) = %q, want %q", tc.name, tc.input, got, tc.want)
		}
	}
}

func TestStagesRunInPipeline(t *testing.T) {
	e := newScript(t, Host{})
	p := &pipeline.Processor{Functions: e.Functions()}
	pa := &ast.PatternActionValue{Stages: []ast.Stage{
		ast.Func{FuncName: "numbered"},
		ast.Func{FuncName: "shout", Args: []ast.Value{ast.StringValue("")}},
	}}
	res := p.Execute(pa, "x\ny", nil)
	if res.Err != nil || res.Text != "1: X\n2: Y" {
		t.Fatalf("got %q, %v", res.Text, res.Err)
	}
}

func TestExecutorFallsBack(t *testing.T) {
	e := newScript(t, Host{})
	var called []string
	fallback := pipeline.ExecutorFunc(func(name string, args []string, input string) (string, error) {
		called = append(called, name)
		return "ran " + name, nil
	})

	exec := e.Executor(fallback)
	got, err := exec.Exec("shout", []string{"?"}, "hey")
	if err != nil || got != "HEY?" {
		t.Fatalf("shout: %q, %v", got, err)
	}
	got, err = exec.Exec("wc", []string{"-l"}, "x")
	if err != nil || got != "ran wc" {
		t.Fatalf("wc: %q, %v", got, err)
	}
	if _, err := exec.Exec("_helper", nil, "x"); err != nil {
		t.Fatalf("_helper should reach the fallback: %v", err)
	}
	if diff := cmp.Diff([]string{"wc", "_helper"}, called); diff != "" {
		t.Fatalf("fallback calls mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Executor(nil).Exec("rm", []string{"-rf", "/"}, ""); err == nil {
		t.Fatalf("unknown command should be rejected without a fallback")
	}
}

func TestWorkspaceBuiltins(t *testing.T) {
	ws := pipeline.MemoryWorkspace{"notes.md": "one\ntwo"}
	e := NewEvaluator(Host{Workspace: ws})
	_, err := e.ExecString(`
def archive(text, name):
    write_file(name, unlines(lines(read_file("notes.md")) + [text]))
    return text
`)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := e.Functions()["archive"]("three", []ast.Value{ast.StringValue("all.md")}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if ws["all.md"] != "one\ntwo\nthree" {
		t.Fatalf("all.md = %q", ws["all.md"])
	}

	bare := NewEvaluator(Host{})
	if _, err := bare.ExecString(`notes = read_file("notes.md")`); err == nil || !strings.Contains(err.Error(), "no workspace") {
		t.Fatalf("got %v", err)
	}
}

func TestGlobalsReachScripts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.star")
	src := "def tag(text):\n    return text + \" @\" + team * count\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	globals := map[string]ast.Value{"team": ast.StringValue("core"), "count": ast.IntValue(2)}
	e, err := Load(path, Host{}, globals)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"tag"}, e.FunctionNames()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got, err := e.Functions()["tag"]("fix", nil)
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if got != "fix @corecore" {
		t.Fatalf("got %q", got)
	}

	if _, err := Load(path, Host{}, nil); err == nil || !strings.Contains(err.Error(), "team") {
		t.Fatalf("undefined global not reported: %v", err)
	}
}

func TestScriptErrors(t *testing.T) {
	e := NewEvaluator(Host{})
	if _, err := e.ExecString("def broken(:"); err == nil {
		t.Fatalf("syntax error not reported")
	}
	if _, err := e.ExecString("def fail(text):\n    fail_now()\n"); err == nil {
		t.Fatalf("undefined name not reported")
	}
	_, err := e.ExecString("def boom(text):\n    return method(\"first\", text)\n")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	_, err = e.Functions()["boom"]("", nil)
	if err == nil || !errors.Is(err, ast.ErrIndexOutOfRange) {
		t.Fatalf("got %v", err)
	}
}

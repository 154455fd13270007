package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisplayStages(t *testing.T) {
	stages := []Stage{
		Cat{},
		Find{Text: "openai"},
		Sed{Pattern: `(?i)\bsk-\w+`, Replacement: "sk-***"},
		Head{N: 3},
		Xargs{Args: []Value{StringValue("rm"), VariableValue("file")}},
	}
	want := `cat | find("openai") | sed("(?i)\bsk-\w+", "sk-***") | head(3) | xargs("rm", $file)`
	if diff := cmp.Diff(want, DisplayStages(stages)); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
}

func TestPatternActionDisplay(t *testing.T) {
	pa := &PatternActionValue{
		Pattern: ".*.java",
		Stages:  []Stage{Grep{Patterns: []string{"error.log"}}, Sort{}, Xargs{Args: []Value{StringValue("rm")}}},
	}
	want := `/.*.java/ { grep("error.log") | sort | xargs("rm") }`
	if diff := cmp.Diff(want, pa.Display()); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}

	post := &PatternActionValue{
		Conditions: []Condition{{
			Name: "error",
			Expr: &StringComparison{Variable: "output", Operator: StringOperatorStatement{StrContains}, Value: "ERROR"},
		}},
		Stages: []Stage{&Case{
			Subject:  IdentifierValue("condition"),
			Branches: []CaseBranch{{Key: "error", Stages: []Stage{Notify{Message: "failed"}}}},
			Default:  []Stage{Print{Args: []Value{VariableValue("output")}}},
		}},
	}
	want = `{ condition { "error" { $output contains "ERROR" } } case condition { "error" { notify("failed") } default { print($output) } } }`
	if diff := cmp.Diff(want, post.Display()); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
}

func TestStageNamesAndArgs(t *testing.T) {
	stages := []Stage{Grep{Patterns: []string{"a", "b"}}, Sort{}, Uniq{}, Tail{N: 2}, SaveFile{FileName: "out.md"}, Func{FuncName: "lint", Args: []Value{IntValue(1)}}}
	var names []string
	var args [][]Value
	for _, s := range stages {
		names = append(names, s.Name())
		args = append(args, StageArgs(s))
	}
	if diff := cmp.Diff([]string{"grep", "sort", "uniq", "tail", "saveFile", "lint"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	wantArgs := [][]Value{
		{StringValue("a"), StringValue("b")},
		nil,
		nil,
		{IntValue(2)},
		{StringValue("out.md")},
		{IntValue(1)},
	}
	if diff := cmp.Diff(wantArgs, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestVariablesAndPretty(t *testing.T) {
	expr := &LogicalExpression{
		Left: &Comparison{
			Variable: ExpressionValue{method("selection", "length")},
			Operator: Operator{OpGreaterEqual},
			Value:    IntValue(1),
		},
		Operator: OpOr,
		Right: &NotExpression{Operand: &StringComparison{
			Variable: "fileName", Operator: StringOperatorStatement{StrEndsWith}, Value: ".go",
		}},
	}
	if diff := cmp.Diff([]string{"selection", "fileName"}, Variables(expr)); diff != "" {
		t.Fatalf("variables mismatch (-want +got):\n%s", diff)
	}
	want := "Logical(||)\n" +
		"  Comparison(>=)\n" +
		"    MethodCall($selection.length())\n" +
		"    NUMBER(1)\n" +
		"  Not\n" +
		"    StringComparison($fileName endsWith \".go\")\n"
	if diff := cmp.Diff(want, Pretty(expr)); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}
}

package ast

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func method(obj, name string, args ...Value) *MethodCall {
	return &MethodCall{ObjectName: VariableValue(obj), MethodName: IdentifierValue(name), Arguments: args}
}

func TestLogicalDisplayAndEvaluate(t *testing.T) {
	expr := &LogicalExpression{
		Left: &Comparison{
			Variable: ExpressionValue{method("selection", "length")},
			Operator: Operator{OpGreaterEqual},
			Value:    IntValue(1),
		},
		Operator: OpAnd,
		Right: &Comparison{
			Variable: ExpressionValue{method("selection", "first")},
			Operator: Operator{OpEqual},
			Value:    StringValue("p"),
		},
	}
	want := `$selection.length() >= 1 && $selection.first() == "p"`
	if diff := cmp.Diff(want, expr.Display()); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}

	vars := Bindings{"selection": "public class HelloWorld {\n    public static void main(String[] args) {\n    }\n}"}
	got, err := EvaluateBool(expr, vars)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !got {
		t.Fatalf("want true")
	}

	got, err = EvaluateBool(expr, Bindings{"selection": "x"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got {
		t.Fatalf("want false for selection not starting with p")
	}
}

func TestDisplayParenthesisesOrUnderAnd(t *testing.T) {
	a := &StringComparison{Variable: "a", Operator: StringOperatorStatement{StrContains}, Value: "x"}
	b := &StringComparison{Variable: "b", Operator: StringOperatorStatement{StrEndsWith}, Value: ".go"}
	c := &Comparison{Variable: VariableValue("c"), Operator: Operator{OpNotEqual}, Value: StringValue("")}
	expr := &LogicalExpression{
		Left:     &LogicalExpression{Left: a, Operator: OpOr, Right: b},
		Operator: OpAnd,
		Right:    &NotExpression{Operand: c},
	}
	want := `($a contains "x" || $b endsWith ".go") && !$c != ""`
	if diff := cmp.Diff(want, expr.Display()); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
	neg := &NotExpression{Operand: &LogicalExpression{Left: a, Operator: OpOr, Right: b}}
	if diff := cmp.Diff(`!($a contains "x" || $b endsWith ".go")`, neg.Display()); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
}

func TestComparisonSemantics(t *testing.T) {
	vars := Bindings{"n": "10", "s": "abc", "v": "1.0"}
	cases := []struct {
		name string
		cmp  *Comparison
		want bool
	}{
		{"numeric string vs number", &Comparison{VariableValue("n"), Operator{OpGreaterThan}, IntValue(9)}, true},
		{"numeric equality across forms", &Comparison{VariableValue("v"), Operator{OpEqual}, IntValue(1)}, true},
		{"text equality", &Comparison{VariableValue("s"), Operator{OpEqual}, StringValue("abc")}, true},
		{"text inequality", &Comparison{VariableValue("s"), Operator{OpNotEqual}, StringValue("abd")}, true},
		{"text ordering", &Comparison{VariableValue("s"), Operator{OpLessThan}, StringValue("abd")}, true},
		{"two numeric strings compare as text", &Comparison{VariableValue("v"), Operator{OpEqual}, StringValue("1")}, false},
		{"bare identifier on the left is a variable", &Comparison{IdentifierValue("s"), Operator{OpEqual}, IdentifierValue("abc")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EvaluateBool(tc.cmp, vars)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("%s: got %v, want %v", tc.cmp.Display(), got, tc.want)
			}
		})
	}
}

func TestEvaluationErrors(t *testing.T) {
	cases := []struct {
		name string
		stmt Statement
		vars Bindings
		want error
	}{
		{"missing receiver", method("nope", "length"), Bindings{}, ErrVariableNotFound},
		{"missing comparison variable", &Comparison{VariableValue("x"), Operator{OpEqual}, StringValue("")}, Bindings{}, ErrVariableNotFound},
		{"first of empty", method("s", "first"), Bindings{"s": ""}, ErrIndexOutOfRange},
		{"last of empty", method("s", "last"), Bindings{"s": ""}, ErrIndexOutOfRange},
		{"unknown method", method("s", "reverse"), Bindings{"s": "a"}, ErrUnsupportedMethod},
		{"ordering bool", &Comparison{BoolValue(true), Operator{OpLessThan}, IntValue(1)}, Bindings{}, ErrTypeMismatch},
		{"logical over text", &LogicalExpression{Left: method("s", "trim"), Operator: OpAnd, Right: method("s", "isEmpty")}, Bindings{"s": "a"}, ErrTypeMismatch},
		{"not over text", &NotExpression{Operand: method("s", "trim")}, Bindings{"s": "a"}, ErrTypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.stmt.Evaluate(tc.vars)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			var evalErr *EvalError
			if !errors.As(err, &evalErr) {
				t.Fatalf("want *EvalError, got %T", err)
			}
		})
	}
}

func TestVariableNotFoundMessage(t *testing.T) {
	_, err := method("selection", "length").Evaluate(Bindings{})
	if diff := cmp.Diff("Variable not found: selection", err.Error()); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestMethods(t *testing.T) {
	cases := []struct {
		call *MethodCall
		recv string
		want Value
	}{
		{method("s", "length"), "héllo", IntValue(5)},
		{method("s", "trim"), "  a b  ", StringValue("a b")},
		{method("s", "lowercase"), "MiXeD", StringValue("mixed")},
		{method("s", "uppercase"), "MiXeD", StringValue("MIXED")},
		{method("s", "isEmpty"), "", BoolValue(true)},
		{method("s", "isNotEmpty"), "", BoolValue(false)},
		{method("s", "first"), "pq", StringValue("p")},
		{method("s", "last"), "pq", StringValue("q")},
		{method("s", "contains", StringValue(".java")), "Main.java", BoolValue(true)},
		{method("s", "startsWith", StringValue("src/")), "src/main", BoolValue(true)},
		{method("s", "endsWith", StringValue(".kt")), "Main.java", BoolValue(false)},
		{method("s", "matches", StringValue("/.*.java/")), "Main.java", BoolValue(true)},
		{method("s", "matches", StringValue("/.*.java/")), "Main.java.bak", BoolValue(false)},
		{method("s", "contains", VariableValue("needle")), "haystack", BoolValue(true)},
	}
	for _, tc := range cases {
		got, err := tc.call.Evaluate(Bindings{"s": tc.recv, "needle": "st"})
		if err != nil {
			t.Fatalf("%s: %v", tc.call.Display(), err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s on %q (-want +got):\n%s", tc.call.Display(), tc.recv, diff)
		}
	}
}

func TestParseOperator(t *testing.T) {
	for _, sym := range []string{"||", "&&", "!", "==", "!=", "<", ">", "<=", ">="} {
		op, err := ParseOperator(sym)
		if err != nil {
			t.Fatalf("%s: %v", sym, err)
		}
		if op.Display() != sym {
			t.Fatalf("round trip %q -> %q", sym, op.Display())
		}
	}
	if _, err := ParseOperator("=~"); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("want ErrInvalidOperator, got %v", err)
	}
}

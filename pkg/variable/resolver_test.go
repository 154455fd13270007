package variable

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltinResolver(t *testing.T) {
	e := &Editor{
		Document:    "package main\n\nfunc main() {}\n",
		Selection:   "func main() {}",
		Caret:       13,
		FilePath:    "cmd/app/main.go",
		Language:    "Go",
		ElementName: "main",
	}
	got, err := Builtin{Editor: e}.Resolve(nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := map[string]string{
		Selection:     "func main() {}",
		BeforeCursor:  "package main\n",
		AfterCursor:   "\nfunc main() {}\n",
		All:           e.Document,
		FileName:      "main.go",
		FilePath:      "cmd/app/main.go",
		MethodName:    "main",
		Language:      "Go",
		CommentSymbol: "//",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("builtins mismatch (-want +got):\n%s", diff)
	}
}

func TestCaretIsClamped(t *testing.T) {
	got, _ := Builtin{Editor: &Editor{Document: "abc", Caret: 99}}.Resolve(nil)
	if got[BeforeCursor] != "abc" || got[AfterCursor] != "" {
		t.Fatalf("got before=%q after=%q", got[BeforeCursor], got[AfterCursor])
	}
}

func TestCommentSymbolFor(t *testing.T) {
	cases := map[string]string{
		"Java":    "//",
		"kotlin":  "//",
		"C#":      "//",
		"C++":     "//",
		"Python":  "#",
		"Shell":   "#",
		"Ruby":    "#",
		"Haskell": "-",
		"":        "-",
	}
	for lang, want := range cases {
		if got := CommentSymbolFor(lang); got != want {
			t.Errorf("CommentSymbolFor(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestContextResolverDelegatesByLanguage(t *testing.T) {
	java := LanguageProviderFunc(func(name string, e *Editor) (string, error) {
		switch name {
		case "currentClassName":
			return "HelloWorld", nil
		case "imports":
			return "", errors.New("index not ready")
		}
		return "", nil
	})
	c := Context{Editor: &Editor{Language: "Java"}, Providers: Providers{"java": java}}
	got, err := c.Resolve([]string{"currentClassName", "imports", "fileName"})
	if err == nil {
		t.Fatalf("want the imports failure reported")
	}
	want := map[string]string{"currentClassName": "HelloWorld", "imports": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}

	noop := Context{Editor: &Editor{Language: "Go"}, Providers: Providers{"java": java}}
	got, err = noop.Resolve([]string{"currentClassName"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"currentClassName": ""}, got); diff != "" {
		t.Fatalf("noop mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeLastWriterWins(t *testing.T) {
	table := NewSymbolTable()
	table.Declare("fileName", 11)
	table.Declare("input", 12)
	table.Declare("currentClassName", 13)

	c := &Composite{Resolvers: []Resolver{
		Builtin{Editor: &Editor{FileName: "Main.java", Language: "Java"}},
		Context{Editor: &Editor{Language: "Java"}},
		Custom{Values: map[string]string{"fileName": "Override.java", "input": "hello"}},
	}}
	got := c.Resolve(table, table.Names())
	if got["fileName"] != "Override.java" || got["input"] != "hello" {
		t.Fatalf("got %v", got)
	}
	sym, _ := table.Get("fileName")
	if diff := cmp.Diff(&Symbol{Name: "fileName", Kind: KindBuiltin, LineDeclared: 11, Value: "Override.java", Resolved: true, Source: "custom"}, sym); diff != "" {
		t.Fatalf("symbol mismatch (-want +got):\n%s", diff)
	}
	ctx, _ := table.Get("currentClassName")
	if !ctx.Resolved || ctx.Source != "context" || ctx.Kind != KindContext {
		t.Fatalf("got %+v", ctx)
	}
	if len(table.Unresolved()) != 0 {
		t.Fatalf("unresolved: %v", table.Unresolved())
	}
}

func TestSymbolTableFirstDeclarationWins(t *testing.T) {
	table := NewSymbolTable()
	table.Declare("var2", 3)
	table.Declare("fileName", 5)
	table.Declare("var2", 9)
	if diff := cmp.Diff([]string{"var2", "fileName"}, table.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	s, ok := table.Get("var2")
	if !ok || s.LineDeclared != 3 || s.Kind != KindUser {
		t.Fatalf("got %+v", s)
	}
	table.Resolve("ghost", "x", "custom")
	if table.Has("ghost") {
		t.Fatalf("resolve must not declare")
	}
	if diff := cmp.Diff([]string{"fileName", "var2"}, table.Unresolved()); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestLanguageForFile(t *testing.T) {
	cases := map[string]string{"Main.java": "Java", "a/b.KT": "Kotlin", "x.rs": "Rust", "noext": ""}
	for name, want := range cases {
		if got := LanguageForFile(name); got != want {
			t.Errorf("LanguageForFile(%q) = %q, want %q", name, got, want)
		}
	}
}

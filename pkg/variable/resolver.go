// Package variable resolves the $variables a document references from the
// editor state, language plugins and caller supplied values.
package variable

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
)

// Builtin variable names.
const (
	Selection     = "selection"
	BeforeCursor  = "beforeCursor"
	AfterCursor   = "afterCursor"
	All           = "all"
	FileName      = "fileName"
	FilePath      = "filePath"
	MethodName    = "methodName"
	Language      = "language"
	CommentSymbol = "commentSymbol"
)

// Custom variable names the host injects around a model call.
const (
	Input  = "input"
	Output = "output"
)

var builtinNames = []string{
	Selection, BeforeCursor, AfterCursor, All, FileName, FilePath, MethodName, Language, CommentSymbol,
}

var contextNames = []string{
	"currentClassName",
	"currentClassCode",
	"currentMethodName",
	"currentMethodCode",
	"relatedClasses",
	"similarTestCase",
	"imports",
	"isNeedCreateFile",
	"targetTestFileName",
	"underTestMethodCode",
	"frameworkContext",
	"codeSmell",
	"methodCaller",
	"calledMethod",
	"similarCode",
	"structure",
}

// BuiltinNames lists the builtin variables.
func BuiltinNames() []string { return slices.Clone(builtinNames) }

// ContextNames lists the variables served by language providers.
func ContextNames() []string { return slices.Clone(contextNames) }

func IsBuiltin(name string) bool { return slices.Contains(builtinNames, name) }
func IsContext(name string) bool { return slices.Contains(contextNames, name) }

// Editor is the editor state a document is compiled against.
type Editor struct {
	Document  string
	Selection string
	// Caret is a byte offset into Document.
	Caret    int
	FileName string
	FilePath string
	Language string
	// ElementName is the name of the function or method around the caret.
	ElementName string
}

// Resolver supplies values for some variable names. A returned error
// describes variables that failed; their entries are still present, empty.
type Resolver interface {
	Name() string
	Resolve(names []string) (map[string]string, error)
}

// Builtin resolves the editor variables. It always supplies every builtin
// regardless of the requested names.
type Builtin struct {
	Editor *Editor
}

func (Builtin) Name() string { return "builtin" }

func (b Builtin) Resolve([]string) (map[string]string, error) {
	e := b.Editor
	if e == nil {
		e = &Editor{}
	}
	caret := min(max(e.Caret, 0), len(e.Document))
	fileName := e.FileName
	if fileName == "" && e.FilePath != "" {
		fileName = path.Base(e.FilePath)
	}
	return map[string]string{
		Selection:     e.Selection,
		BeforeCursor:  e.Document[:caret],
		AfterCursor:   e.Document[caret:],
		All:           e.Document,
		FileName:      fileName,
		FilePath:      e.FilePath,
		MethodName:    e.ElementName,
		Language:      e.Language,
		CommentSymbol: CommentSymbolFor(e.Language),
	}, nil
}

// LanguageProvider serves context variables for one language.
type LanguageProvider interface {
	Resolve(name string, editor *Editor) (string, error)
}

// LanguageProviderFunc adapts a function to LanguageProvider.
type LanguageProviderFunc func(name string, editor *Editor) (string, error)

func (f LanguageProviderFunc) Resolve(name string, editor *Editor) (string, error) {
	return f(name, editor)
}

// NoopProvider resolves every context variable to "".
type NoopProvider struct{}

func (NoopProvider) Resolve(string, *Editor) (string, error) { return "", nil }

// Providers maps lower-cased language names to their provider.
type Providers map[string]LanguageProvider

// For returns the provider for language, or a NoopProvider.
func (p Providers) For(language string) LanguageProvider {
	if lp, ok := p[strings.ToLower(language)]; ok {
		return lp
	}
	return NoopProvider{}
}

// Context resolves requested context variables through the provider of the
// editor's language.
type Context struct {
	Editor    *Editor
	Providers Providers
}

func (Context) Name() string { return "context" }

func (c Context) Resolve(names []string) (map[string]string, error) {
	e := c.Editor
	if e == nil {
		e = &Editor{}
	}
	provider := c.Providers.For(e.Language)
	out := map[string]string{}
	var errs []error
	for _, name := range names {
		if !IsContext(name) {
			continue
		}
		v, err := provider.Resolve(name, e)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			v = ""
		}
		out[name] = v
	}
	return out, errors.Join(errs...)
}

// Custom supplies caller provided values, such as input and output.
type Custom struct {
	Values map[string]string
}

func (Custom) Name() string { return "custom" }

func (c Custom) Resolve([]string) (map[string]string, error) {
	out := make(map[string]string, len(c.Values))
	for k, v := range c.Values {
		out[k] = v
	}
	return out, nil
}

// Composite runs resolvers in order. Later resolvers overwrite earlier
// ones, and failures are logged rather than returned.
type Composite struct {
	Resolvers []Resolver
	Logger    *slog.Logger
}

// Resolve fills table and returns the merged values.
func (c *Composite) Resolve(table *SymbolTable, names []string) map[string]string {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := map[string]string{}
	for _, r := range c.Resolvers {
		values, err := r.Resolve(names)
		if err != nil {
			logger.Warn("variable resolution failed", "resolver", r.Name(), "error", err)
		}
		for k, v := range values {
			out[k] = v
			if table != nil {
				table.Resolve(k, v, r.Name())
			}
		}
	}
	return out
}

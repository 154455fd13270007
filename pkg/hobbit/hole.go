// Package hobbit holds the configuration parsed from a document's
// frontmatter block, the "Hobbit Hole".
package hobbit

import (
	"fmt"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/pipeline"
	v "github.com/shirelang/shire/pkg/validator"
)

// Frontmatter keys with dedicated fields. Anything else lands in UserData.
const (
	KeyName           = "name"
	KeyDescription    = "description"
	KeyInteraction    = "interaction"
	KeyActionLocation = "actionLocation"
	KeyEnabled        = "enabled"
	KeyWhen           = "when"
	KeyData           = "data"
	KeyFilenameRules  = "filenameRules"
	KeyVariables      = "variables"
	KeyOnStreamingEnd = "onStreamingEnd"
	KeyAfterStreaming = "afterStreaming"
	KeyShortcut       = "shortcut"
	KeyAgent          = "agent"
)

// FilenameRule attaches an instruction to files matching Pattern.
type FilenameRule struct {
	Pattern     string
	Instruction string
}

// Matches reports whether path is selected by the rule.
func (r FilenameRule) Matches(path string) bool {
	return pipeline.MatchPattern(r.Pattern, path)
}

func (r FilenameRule) Validate() error {
	_, err := pipeline.NewSelector(r.Pattern)
	return v.All(
		v.NotEmpty(r.Pattern, "filename rule pattern"),
		v.Check(err, fmt.Sprintf("filename rule %q", r.Pattern)),
	)
}

// Variable is one entry of the `variables` block: either a literal or a
// pattern-action pipeline.
type Variable struct {
	Name  string
	Value ast.Value
}

// PatternAction returns the pipeline of the variable, if it has one.
func (d Variable) PatternAction() (*ast.PatternActionValue, bool) {
	pa, ok := d.Value.(*ast.PatternActionValue)
	return pa, ok
}

func (d Variable) Validate() error {
	return v.Identifier(d.Name, "variable name")
}

// Hole is the parsed frontmatter of a document.
type Hole struct {
	Name           string
	Description    string
	Interaction    InteractionType
	ActionLocation ActionLocation
	Enabled        bool
	When           ast.Statement
	Data           ast.ArrayValue
	FilenameRules  []FilenameRule
	Variables      []Variable
	OnStreamingEnd *ast.PatternActionValue
	AfterStreaming *ast.PatternActionValue
	Shortcut       string
	Agent          string
	UserData       map[string]ast.Value
}

// New returns a hole with default settings.
func New() *Hole {
	return &Hole{
		Interaction:    RunPanel,
		ActionLocation: RunPanelLocation,
		Enabled:        true,
		UserData:       map[string]ast.Value{},
	}
}

// Variable returns the declared value of name.
func (h *Hole) Variable(name string) (ast.Value, bool) {
	for _, d := range h.Variables {
		if d.Name == name {
			return d.Value, true
		}
	}
	return nil, false
}

// SetVariable declares name. A redeclaration replaces the value but keeps
// the original position.
func (h *Hole) SetVariable(name string, value ast.Value) {
	for i, d := range h.Variables {
		if d.Name == name {
			h.Variables[i].Value = value
			return
		}
	}
	h.Variables = append(h.Variables, Variable{Name: name, Value: value})
}

// RulesFor returns the filename rules that apply to path, in declared order.
func (h *Hole) RulesFor(path string) []FilenameRule {
	var out []FilenameRule
	for _, r := range h.FilenameRules {
		if r.Matches(path) {
			out = append(out, r)
		}
	}
	return out
}

func (h *Hole) variableNames() []string {
	names := make([]string, len(h.Variables))
	for i, d := range h.Variables {
		names[i] = d.Name
	}
	return names
}

func (h *Hole) Validate() error {
	if h == nil {
		return nil
	}
	return v.All(
		v.MatchesAllowed(h.Interaction, InteractionTypes(), "interaction"),
		v.MatchesAllowed(h.ActionLocation, ActionLocations(), "actionLocation"),
		v.Each(h.FilenameRules),
		v.Each(h.Variables),
		v.NoDuplicates(h.variableNames(), "variables"),
	)
}

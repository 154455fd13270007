// Package templates is the library of built-in Shire actions. Actions in a
// user template directory override built-ins of the same name.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/hobbit"
	"github.com/shirelang/shire/pkg/parser"
	v "github.com/shirelang/shire/pkg/validator"
)

const extension = ".shire"

// OriginBuiltin marks actions embedded in the binary.
const OriginBuiltin = "builtin"

// ErrTemplateNotFound is returned by Get for unknown action names.
var ErrTemplateNotFound = errors.New("template not found")

// Action is a parsed .shire document.
type Action struct {
	// Name is the file name without the extension.
	Name   string
	Source string
	Hole   *hobbit.Hole
	// Origin is OriginBuiltin or the path of the override file.
	Origin string
}

// Title is the display name from the frontmatter, or the file name.
func (a Action) Title() string {
	if a.Hole != nil && a.Hole.Name != "" {
		return a.Hole.Name
	}
	return a.Name
}

func (a Action) Validate() error {
	if err := v.NotEmpty(a.Name, "action name"); err != nil {
		return err
	}
	if a.Hole == nil {
		return fmt.Errorf("action %q has no frontmatter", a.Name)
	}
	return v.All(
		a.Hole.Validate(),
		validatePipelines(a.Hole),
	)
}

// validatePipelines checks the regular expressions of grep and sed stages.
func validatePipelines(h *hobbit.Hole) error {
	blocks := []*ast.PatternActionValue{h.OnStreamingEnd, h.AfterStreaming}
	for _, d := range h.Variables {
		if pa, ok := d.PatternAction(); ok {
			blocks = append(blocks, pa)
		}
	}
	return v.Map(blocks, func(pa *ast.PatternActionValue, desc string) error {
		if pa == nil {
			return nil
		}
		return validateStages(pa.Stages, desc)
	}, "pipeline")
}

func validateStages(stages []ast.Stage, desc string) error {
	for _, s := range stages {
		var err error
		switch t := s.(type) {
		case ast.Grep:
			err = v.Map(t.Patterns, v.ValidRegex, desc+" grep")
		case ast.Sed:
			err = v.ValidRegex(t.Pattern, desc+" sed")
		case *ast.Case:
			for _, br := range t.Branches {
				if err = validateStages(br.Stages, desc); err != nil {
					break
				}
			}
			if err == nil {
				err = validateStages(t.Default, desc)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Parse builds an action from source. Skipped frontmatter entries make the
// action invalid.
func Parse(name, source, origin string) (Action, error) {
	doc := parser.ParseDocument(source)
	if err := errors.Join(doc.Diagnostics...); err != nil {
		return Action{}, fmt.Errorf("parsing %q: %w", name, err)
	}
	a := Action{Name: name, Source: source, Hole: doc.Hole, Origin: origin}
	if err := a.Validate(); err != nil {
		return Action{}, fmt.Errorf("invalid action %q: %w", name, err)
	}
	return a, nil
}

//go:embed actions/*.shire
var Files embed.FS

var builtins = map[string]Action{}

var (
	mu          sync.RWMutex
	templateDir string
)

// SetTemplateDir sets the directory searched before the built-ins. An empty
// dir disables overrides.
func SetTemplateDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	templateDir = dir
}

func currentDir() string {
	mu.RLock()
	defer mu.RUnlock()
	return templateDir
}

// Get returns the action called name.
func Get(name string) (Action, error) {
	if dir := currentDir(); dir != "" {
		path := filepath.Join(dir, name+extension)
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			return Parse(name, string(content), path)
		case !errors.Is(err, os.ErrNotExist):
			return Action{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	if a, ok := builtins[name]; ok {
		return a, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// List returns every available action sorted by name. Overrides that fail
// to parse are logged and skipped.
func List() ([]Action, error) {
	byName := make(map[string]Action, len(builtins))
	for k, a := range builtins {
		byName[k] = a
	}
	if dir := currentDir(); dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+extension))
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			name := strings.TrimSuffix(filepath.Base(path), extension)
			a, err := Get(name)
			if err != nil {
				slog.Warn("skipping template override", "path", path, "error", err)
				continue
			}
			byName[name] = a
		}
	}
	out := make([]Action, 0, len(byName))
	for _, a := range byName {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func init() {
	entries, err := Files.ReadDir("actions")
	if err != nil {
		panic(err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}
		content, err := Files.ReadFile("actions/" + entry.Name())
		if err != nil {
			panic(err)
		}
		name := strings.TrimSuffix(entry.Name(), extension)
		a, err := Parse(name, string(content), OriginBuiltin)
		if err != nil {
			panic(err)
		}
		builtins[name] = a
	}
}

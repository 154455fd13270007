package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shirelang/shire/pkg/hobbit"
)

func TestTemplateOverride(t *testing.T) {
	tempDir := t.TempDir()

	overrideContent := `---
name: Test Template
interaction: ChatPanel
---
Hello $selection
`
	overridePath := filepath.Join(tempDir, "test-template.shire")
	if err := os.WriteFile(overridePath, []byte(overrideContent), 0644); err != nil {
		t.Fatalf("Failed to write override template: %v", err)
	}

	// Not visible before the directory is configured.
	if _, err := Get("test-template"); err == nil {
		t.Error("Expected error when template doesn't exist, but got none")
	}

	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	action, err := Get("test-template")
	if err != nil {
		t.Fatalf("Failed to get override template: %v", err)
	}
	if action.Name != "test-template" {
		t.Errorf("Expected name 'test-template', got '%s'", action.Name)
	}
	if action.Title() != "Test Template" {
		t.Errorf("Expected title 'Test Template', got '%s'", action.Title())
	}
	if action.Hole.Interaction != hobbit.ChatPanel {
		t.Errorf("Expected ChatPanel interaction, got %v", action.Hole.Interaction)
	}
	if action.Origin != overridePath {
		t.Errorf("Expected origin %s, got %s", overridePath, action.Origin)
	}
}

func TestOverrideShadowsBuiltin(t *testing.T) {
	tempDir := t.TempDir()
	content := "---\nname: My Summary\n---\nShort please.\n"
	if err := os.WriteFile(filepath.Join(tempDir, "summarize.shire"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	action, err := Get("summarize")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if action.Origin == OriginBuiltin || action.Title() != "My Summary" {
		t.Errorf("override not used: %+v", action)
	}
}

func TestBuiltInTemplateFallback(t *testing.T) {
	SetTemplateDir(t.TempDir())
	defer SetTemplateDir("")

	action, err := Get("summarize")
	if err != nil {
		t.Fatalf("Failed to get built-in template: %v", err)
	}
	if action.Origin != OriginBuiltin {
		t.Errorf("Expected builtin origin, got %s", action.Origin)
	}
	if action.Hole.When == nil {
		t.Errorf("Expected a when condition on summarize")
	}
}

func TestNoTemplateDirectory(t *testing.T) {
	SetTemplateDir("")

	action, err := Get("commit-message")
	if err != nil {
		t.Fatalf("Failed to get built-in template without template dir: %v", err)
	}
	if action.Hole.OnStreamingEnd == nil {
		t.Errorf("Expected an onStreamingEnd pipeline")
	}

	_, err = Get("non-existent-template")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
}

func TestInvalidOverride(t *testing.T) {
	tempDir := t.TempDir()
	bad := "---\nname: Broken\nvariables:\n  \"x\": { grep(\"(\") }\n---\nbody\n"
	if err := os.WriteFile(filepath.Join(tempDir, "broken.shire"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	if _, err := Get("broken"); err == nil {
		t.Fatalf("Expected an invalid regex to be reported")
	}

	// List skips the broken override and keeps the built-ins.
	actions, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, a := range actions {
		if a.Name == "broken" {
			t.Errorf("broken override listed")
		}
	}
}

func TestListBuiltins(t *testing.T) {
	SetTemplateDir("")

	actions, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, a := range actions {
		names = append(names, a.Name)
		if err := a.Validate(); err != nil {
			t.Errorf("%s: %v", a.Name, err)
		}
	}
	want := []string{"commit-message", "fix-errors", "summarize", "write-test"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

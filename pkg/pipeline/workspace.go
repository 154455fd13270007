package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Workspace is the file system pipeline stages read from and write to.
// Paths are slash separated and relative to the workspace root.
type Workspace interface {
	Files() ([]string, error)
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
}

// ErrFileNotFound is matched by errors.Is for missing workspace files.
var ErrFileNotFound = errors.New("file not found")

type FileNotFoundError struct{ Path string }

func (e FileNotFoundError) Error() string        { return "file not found: " + e.Path }
func (e FileNotFoundError) Is(target error) bool { return target == ErrFileNotFound }

// MemoryWorkspace keeps files in a map. It is used by tests and by callers
// that compile against an editor buffer.
type MemoryWorkspace map[string]string

func (m MemoryWorkspace) Files() ([]string, error) {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m MemoryWorkspace) ReadFile(path string) (string, error) {
	if s, ok := m[path]; ok {
		return s, nil
	}
	return "", FileNotFoundError{path}
}

func (m MemoryWorkspace) WriteFile(path, content string) error {
	m[path] = content
	return nil
}

// DirWorkspace is a workspace rooted at a directory on disk. Hidden
// directories such as .git are skipped when listing files.
type DirWorkspace struct {
	Root string
}

func (d DirWorkspace) Files() ([]string, error) {
	var out []string
	err := filepath.WalkDir(d.Root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			if path != d.Root && strings.HasPrefix(e.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.Root, err)
	}
	sort.Strings(out)
	return out, nil
}

func (d DirWorkspace) ReadFile(path string) (string, error) {
	full, err := d.resolve(path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", FileNotFoundError{path}
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func (d DirWorkspace) WriteFile(path, content string) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (d DirWorkspace) resolve(path string) (string, error) {
	local := filepath.FromSlash(path)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes the workspace", path)
	}
	return filepath.Join(d.Root, local), nil
}

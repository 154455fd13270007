package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
)

// Executor runs the command named by an xargs stage. The stream is passed
// as standard input and the command output becomes the new stream.
type Executor interface {
	Exec(name string, args []string, input string) (string, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(name string, args []string, input string) (string, error)

func (f ExecutorFunc) Exec(name string, args []string, input string) (string, error) {
	return f(name, args, input)
}

// ShellExecutor runs xargs commands as local processes.
type ShellExecutor struct {
	Dir    string
	Logger *slog.Logger
}

func (e *ShellExecutor) Exec(name string, args []string, input string) (string, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cmd := exec.Command(name, args...)
	cmd.Dir = e.Dir
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logger.Debug("xargs", "command", name, "args", args)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// StageFunc implements a pipeline stage that is not built in, such as a
// toolchain action contributed by a plugin.
type StageFunc func(input string, args []ast.Value) (string, error)

// Functions is a registry of external stage functions keyed by stage name.
type Functions map[string]StageFunc

// Merge returns a registry holding f and other; other wins on conflict.
func (f Functions) Merge(other Functions) Functions {
	out := make(Functions, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

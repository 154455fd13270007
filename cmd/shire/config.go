package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/compiler"
	"github.com/shirelang/shire/pkg/pipeline"
	"github.com/shirelang/shire/pkg/starlark"
	"github.com/shirelang/shire/pkg/templates"
	v "github.com/shirelang/shire/pkg/validator"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "shire.config.yaml"

type shireConfig struct {
	// Workspace is the directory pipelines select files from. Defaults to
	// the current directory.
	Workspace   string `yaml:"workspace,omitempty"`
	TemplateDir string `yaml:"template_dir,omitempty"`
	// Functions lists Starlark scripts whose functions become stages.
	Functions []string `yaml:"functions,omitempty"`
	// AllowExec lets xargs run local processes.
	AllowExec bool              `yaml:"allow_exec"`
	Language  string            `yaml:"language,omitempty"`
	Variables map[string]string `yaml:"variables,omitempty"`
}

func (c *shireConfig) Validate() error {
	return v.All(
		v.Map(c.Functions, func(path, desc string) error {
			if err := v.NotEmpty(path, desc); err != nil {
				return err
			}
			if filepath.Ext(path) != ".star" {
				return fmt.Errorf("%s: %s is not a .star script", desc, path)
			}
			return nil
		}, "functions"),
		v.MapDict(c.Variables, func(name, _ string) error {
			return v.Identifier(name, "variable name")
		}, "variables"),
	)
}

func (c *shireConfig) loadConfig(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

// loadShireConfig reads the --config file. A missing default file yields
// the default configuration.
func loadShireConfig() (shireConfig, error) {
	var cfg shireConfig
	err := cfg.loadConfig(rootConfigPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && rootConfigPath == defaultConfigPath:
		slog.Debug("no config file, using defaults", "path", rootConfigPath)
	case err != nil:
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", rootConfigPath, err)
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}
	if cfg.TemplateDir != "" {
		templates.SetTemplateDir(cfg.TemplateDir)
	}
	return cfg, nil
}

// loadVars reads a flat YAML mapping of custom variable values.
func loadVars(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vars map[string]string
	if err := yaml.Unmarshal(content, &vars); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	err = v.MapDict(vars, func(name, _ string) error {
		return v.Identifier(name, "variable name")
	}, path)
	return vars, err
}

// environment is what every compiler of one command shares. Starlark
// evaluators are single threaded, so concurrent callers build their own.
type environment struct {
	workspace pipeline.Workspace
	functions pipeline.Functions
	executor  pipeline.Executor
	logger    *slog.Logger
}

func newEnvironment(cfg shireConfig, logger *slog.Logger) (*environment, error) {
	env := &environment{
		workspace: pipeline.DirWorkspace{Root: cfg.Workspace},
		functions: pipeline.Functions{},
		logger:    logger,
	}
	if cfg.AllowExec {
		env.executor = &pipeline.ShellExecutor{Dir: cfg.Workspace, Logger: logger}
	}
	host := starlark.Host{Workspace: env.workspace, Logger: logger}
	globals := make(map[string]ast.Value, len(cfg.Variables))
	for name, value := range cfg.Variables {
		globals[name] = ast.StringValue(value)
	}
	for _, path := range cfg.Functions {
		ev, err := starlark.Load(path, host, globals)
		if err != nil {
			return nil, fmt.Errorf("loading functions from %s: %w", path, err)
		}
		logger.Debug("loaded stage functions", "path", path, "functions", ev.FunctionNames())
		env.functions = env.functions.Merge(ev.Functions())
		env.executor = ev.Executor(env.executor)
	}
	return env, nil
}

func (e *environment) compiler(opts compiler.Options) *compiler.Compiler {
	opts.Workspace = e.workspace
	opts.Executor = e.executor
	opts.Functions = e.functions
	opts.Logger = e.logger
	return compiler.New(opts)
}

// readDocument returns the source of arg, a .shire file or the name of an
// action.
func readDocument(arg string) (name, source string, err error) {
	if content, err := os.ReadFile(arg); err == nil {
		return strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)), string(content), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", "", err
	}
	action, err := templates.Get(arg)
	if err != nil {
		return "", "", err
	}
	return action.Name, action.Source, nil
}

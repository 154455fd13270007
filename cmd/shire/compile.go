package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shirelang/shire/pkg/compiler"
	"github.com/shirelang/shire/pkg/variable"
	"github.com/spf13/cobra"
)

// Editors often save in bursts; one recompile per burst is enough.
const watchDebounce = 200 * time.Millisecond

var compileCmd = cobra.Command{
	Use:   "compile [document]",
	Short: "Compile a document or action into a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadShireConfig()
		if err != nil {
			return err
		}
		opts, err := compileOptions(cmd, cfg)
		if err != nil {
			return err
		}
		env, err := newEnvironment(cfg, slog.Default())
		if err != nil {
			return err
		}

		run := func() error {
			_, src, err := readDocument(args[0])
			if err != nil {
				return err
			}
			_, err = compileTo(cmd.OutOrStdout(), env.compiler(opts), src)
			return err
		}

		if watching, _ := cmd.Flags().GetBool("watch"); !watching {
			return run()
		}
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("--watch needs a document file: %w", err)
		}
		if err := run(); err != nil {
			slog.Warn("compile failed", "path", args[0], "error", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watch(ctx, args[0], run)
	},
}

func addEditorFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "File open in the editor; its content is the current document")
	cmd.Flags().String("selection", "", "Selected text")
	cmd.Flags().Int("caret", 0, "Caret byte offset in --file")
	cmd.Flags().String("language", "", "Language of --file (default from config or file extension)")
	cmd.Flags().String("element", "", "Name of the method around the caret")
}

// editorState builds the editor snapshot the builtin variables read.
func editorState(cmd *cobra.Command, cfg shireConfig) (*variable.Editor, error) {
	flags := cmd.Flags()
	ed := &variable.Editor{Language: cfg.Language}
	ed.Selection, _ = flags.GetString("selection")
	ed.Caret, _ = flags.GetInt("caret")
	ed.ElementName, _ = flags.GetString("element")
	if lang, _ := flags.GetString("language"); lang != "" {
		ed.Language = lang
	}

	path, _ := flags.GetString("file")
	if path == "" {
		return ed, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading editor file: %w", err)
	}
	ed.Document = string(content)
	ed.FilePath = path
	if ed.Language == "" {
		ed.Language = variable.LanguageForFile(path)
	}
	return ed, nil
}

// customValues merges the config variables, the --vars file and --input.
// Later sources win.
func customValues(cmd *cobra.Command, cfg shireConfig) (map[string]string, error) {
	custom := make(map[string]string, len(cfg.Variables))
	for k, v := range cfg.Variables {
		custom[k] = v
	}
	if path, _ := cmd.Flags().GetString("vars"); path != "" {
		vars, err := loadVars(path)
		if err != nil {
			return nil, fmt.Errorf("loading --vars: %w", err)
		}
		for k, v := range vars {
			custom[k] = v
		}
	}
	if f := cmd.Flags().Lookup("input"); f != nil && f.Changed {
		custom[variable.Input] = f.Value.String()
	}
	return custom, nil
}

func compileOptions(cmd *cobra.Command, cfg shireConfig) (compiler.Options, error) {
	ed, err := editorState(cmd, cfg)
	if err != nil {
		return compiler.Options{}, err
	}
	custom, err := customValues(cmd, cfg)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{Editor: ed, Custom: custom}, nil
}

// compileTo writes the compiled prompt to w. Output carrying error markers
// is still written before the error is returned.
func compileTo(w io.Writer, c *compiler.Compiler, src string) (*compiler.Result, error) {
	res := c.Compile(src)
	if _, err := fmt.Fprintln(w, res.Prompt()); err != nil {
		return res, err
	}
	if !res.Applicable {
		slog.Warn("document does not apply to the current editor state", "errors", errors.Join(res.Errors...))
	}
	for _, line := range res.Diagnostics {
		slog.Warn("compile error", "line", line)
	}
	for _, r := range res.Rules {
		slog.Info("filename rule", "pattern", r.Pattern, "instruction", r.Instruction)
	}
	switch {
	case res.Empty:
		return res, errors.New("compiled prompt is empty")
	case res.HasError:
		return res, fmt.Errorf("compiled prompt has %d error(s)", len(res.Diagnostics))
	}
	return res, nil
}

// watch calls run whenever path is written, until ctx is done. The parent
// directory is watched so editors that replace the file are followed.
func watch(ctx context.Context, path string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	target := filepath.Clean(path)
	slog.Info("watching for changes", "path", target)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			slog.Debug("recompiling", "path", target)
			if err := run(); err != nil {
				slog.Warn("compile failed", "path", target, "error", err)
			}
		}
	}
}

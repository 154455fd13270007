package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/compiler"
	"github.com/shirelang/shire/pkg/pipeline"
	"github.com/shirelang/shire/pkg/templates"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var checkCmd = cobra.Command{
	Use:   "check [path ...]",
	Short: "Parse, validate and dry-run documents",
	Long: `Checks every .shire file under the given paths, or every available action
when no path is given. xargs commands are not run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadShireConfig()
		if err != nil {
			return err
		}
		docs, err := collectDocuments(args)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no documents to check")
		}
		jobs, _ := cmd.Flags().GetInt("jobs")
		return checkDocuments(cmd.OutOrStdout(), cfg, docs, jobs)
	},
}

type document struct {
	name   string
	path   string
	source string
}

// collectDocuments expands paths into documents. Directories are searched
// recursively for .shire files.
func collectDocuments(paths []string) ([]document, error) {
	if len(paths) == 0 {
		actions, err := templates.List()
		if err != nil {
			return nil, err
		}
		docs := make([]document, len(actions))
		for i, a := range actions {
			docs[i] = document{name: a.Name, path: a.Origin, source: a.Source}
		}
		return docs, nil
	}

	var files []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(p), "**/*.shire")
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			files = append(files, filepath.Join(p, filepath.FromSlash(m)))
		}
	}

	docs := make([]document, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		docs = append(docs, document{name: name, path: f, source: string(content)})
	}
	return docs, nil
}

type checkResult struct {
	err      error
	warnings []string
}

// dryRun stands in for xargs commands during a check.
var dryRun = pipeline.ExecutorFunc(func(name string, args []string, input string) (string, error) {
	slog.Debug("skipping command", "command", name, "args", args)
	return "", nil
})

// checkDocument validates doc and compiles it against an empty editor.
// Error markers in the output are reported as warnings because most
// documents need editor state to compile cleanly.
func checkDocument(cfg shireConfig, doc document) checkResult {
	action, err := templates.Parse(doc.name, doc.source, doc.path)
	if err != nil {
		return checkResult{err: err}
	}
	if h := action.Hole; h.When != nil {
		slog.Debug("when condition", "document", doc.path, "tree", ast.Pretty(h.When))
	}
	env, err := newEnvironment(cfg, slog.Default())
	if err != nil {
		return checkResult{err: err}
	}
	env.executor = dryRun
	res := env.compiler(compiler.Options{Custom: cfg.Variables}).Compile(doc.source)
	return checkResult{warnings: res.Diagnostics}
}

// checkDocuments checks docs concurrently, jobs at a time, and prints the
// results in input order.
func checkDocuments(w io.Writer, cfg shireConfig, docs []document, jobs int) error {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]checkResult, len(docs))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = checkDocument(cfg, doc)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, doc := range docs {
		r := results[i]
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "\033[31mFAIL %s: %v\033[0m\n", doc.path, r.err)
			continue
		}
		fmt.Fprintf(w, "\033[32mok   %s\033[0m\n", doc.path)
		for _, warning := range r.warnings {
			fmt.Fprintf(w, "\033[33m  %s\033[0m\n", warning)
		}
	}

	fmt.Fprintf(w, "Checked %d documents: %d succeeded, %d failed\n", len(docs), len(docs)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

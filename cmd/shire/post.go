package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shirelang/shire/pkg/compiler"
	"github.com/shirelang/shire/pkg/pipeline"
	"github.com/spf13/cobra"
)

var postCmd = cobra.Command{
	Use:   "post [document]",
	Short: "Run the post-processing pipelines of a document over generated text",
	Long: `Compiles the document, then runs its onStreamingEnd and afterStreaming
pipelines over the model output read from --gen or standard input.`,
	Args: cobra.ExactArgs(1),
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
		_, src, err := readDocument(args[0])
		if err != nil {
			return err
		}
		gen, err := readGenerated(cmd)
		if err != nil {
			return err
		}
		return postProcess(cmd.OutOrStdout(), env.compiler(opts), src, gen)
	},
}

func readGenerated(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("gen")
	var (
		content []byte
		err     error
	)
	if path == "" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading generated text: %w", err)
	}
	return string(content), nil
}

// postProcess writes the rewritten text, followed by the afterStreaming
// result when the document has one.
func postProcess(w io.Writer, c *compiler.Compiler, src, gen string) error {
	res := c.Compile(src)
	if res.Config == nil {
		_, err := fmt.Fprint(w, gen)
		return err
	}

	ctx := pipeline.NewPostProcessorContext(gen, res.Variables)
	if err := c.ExecuteStreamingEnd(res.Config, ctx); err != nil {
		slog.Warn("onStreamingEnd failed", "error", err)
	}
	if err := c.ExecuteAfterStreaming(res.Config, ctx); err != nil {
		slog.Warn("afterStreaming failed", "error", err)
	}
	for _, f := range ctx.SavedFiles {
		slog.Info("saved file", "path", f)
	}

	if _, err := fmt.Fprintln(w, ctx.GenText); err != nil {
		return err
	}
	if res.Config.AfterStreaming != nil {
		if _, err := fmt.Fprintf(w, "---\n%s\n", ctx.LastTaskOutput); err != nil {
			return err
		}
	}
	return nil
}

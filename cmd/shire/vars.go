package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/shirelang/shire/pkg/compiler"
	"github.com/shirelang/shire/pkg/variable"
	"github.com/spf13/cobra"
)

var varsCmd = cobra.Command{
	Use:   "vars [document]",
	Short: "List the known variables, or the symbol table of a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return printKnownVariables(cmd.OutOrStdout())
		}
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
		return printSymbols(cmd.OutOrStdout(), env.compiler(opts), src)
	},
}

func printKnownVariables(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND")
	for _, n := range variable.BuiltinNames() {
		fmt.Fprintf(tw, "%s\t%s\n", n, variable.KindOf(n))
	}
	for _, n := range variable.ContextNames() {
		fmt.Fprintf(tw, "%s\t%s\n", n, variable.KindOf(n))
	}
	return tw.Flush()
}

// printSymbols compiles src and prints every variable it references.
func printSymbols(w io.Writer, c *compiler.Compiler, src string) error {
	res := c.Compile(src)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tLINE\tSOURCE\tVALUE")
	for _, s := range res.SymbolTable.All() {
		source := s.Source
		if !s.Resolved {
			source = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Name, s.Kind, s.LineDeclared+1, source, preview(s.Value))
	}
	return tw.Flush()
}

// preview shortens a value to its first line.
func preview(s string) string {
	const limit = 40
	line, _, more := strings.Cut(s, "\n")
	if len(line) > limit {
		line, more = line[:limit], true
	}
	if more {
		line += "..."
	}
	return line
}

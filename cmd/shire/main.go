package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/shirelang/shire/pkg/templates"
	"github.com/spf13/cobra"
)

var rootConfigPath string
var verbose bool

var rootCmd = cobra.Command{
	Use:   "shire",
	Short: "Compile Shire prompt documents",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

var listCmd = cobra.Command{
	Use:   "list",
	Short: "List the available actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadShireConfig(); err != nil {
			return err
		}
		actions, err := templates.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTITLE\tLOCATION\tINTERACTION\tORIGIN")
		for _, a := range actions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Name, a.Title(), a.Hole.ActionLocation, a.Hole.Interaction, a.Origin)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", defaultConfigPath, "Path to shire configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(&listCmd)

	addEditorFlags(&compileCmd)
	compileCmd.Flags().String("vars", "", "YAML file of custom variable values")
	compileCmd.Flags().String("input", "", "Value bound to $input")
	compileCmd.Flags().Bool("watch", false, "Recompile when the document changes")
	rootCmd.AddCommand(&compileCmd)

	checkCmd.Flags().Int("jobs", 0, "Number of documents checked in parallel (default: number of CPUs)")
	rootCmd.AddCommand(&checkCmd)

	addEditorFlags(&postCmd)
	postCmd.Flags().String("vars", "", "YAML file of custom variable values")
	postCmd.Flags().String("gen", "", "File holding the generated text (default: stdin)")
	rootCmd.AddCommand(&postCmd)

	addEditorFlags(&varsCmd)
	varsCmd.Flags().String("vars", "", "YAML file of custom variable values")
	rootCmd.AddCommand(&varsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/corpusdedup/internal/model"
)

// NewLinesCmd creates the lines command.
func NewLinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines [inputs...]",
		Short: "Remove lines that repeat anywhere in the corpus",
		Long: `Lines counts every line across all input documents and keeps only the
lines that occur exactly once in the whole corpus. Every document is
written to the output directory, possibly empty. Repeated lines are removed
entirely, including their first occurrence.

Inputs are files or directories. Artifacts are named after the input's
base name, so two inputs with the same base name are rejected.

Examples:
  # Strip repeated boilerplate lines from a directory of pages
  corpusdedup lines -o clean/ pages/

  # Walk subdirectories, only .txt files, JSON report
  corpusdedup lines -r --ext txt --json -o clean/ corpus/`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(cmd, args, model.ModeLines)
		},
	}

	addCorpusFlags(cmd)

	return cmd
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/corpusdedup/internal/config"
	"github.com/nao1215/corpusdedup/internal/database"
	"github.com/nao1215/corpusdedup/internal/report"
)

// NewHistoryCmd creates the history command.
// This command shows runs stored with --save-history.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved deduplication runs",
		Long: `History lists runs saved with --save-history, newest first, or shows
the full report of one run.

Examples:
  # List saved runs
  corpusdedup history

  # Show one run
  corpusdedup history --run 2b7c...

  # Show one run as Markdown
  corpusdedup history --run 2b7c... --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("run", "",
		"Show the report of the run with this ID")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().String("history-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	if dir == "" {
		dir = config.XDGDataDir()
	}

	// Reading history never creates a database.
	db, err := database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run history found in %s (run with --save-history first): %w", dir, err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if runID != "" {
		runReport, err := db.GetRun(ctx, runID)
		if err != nil {
			return err
		}

		var w report.Writer
		switch {
		case jsonOutput:
			w = report.NewJSONWriter(out, report.WithPrettyPrint())
		case markdownOutput:
			w = report.NewMarkdownWriter(out)
		default:
			w = report.NewSimpleWriter(out, report.WithVerbose(true))
		}
		_, err = w.Write(runReport)
		return err
	}

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return writeRunsJSON(out, runs)
	case markdownOutput:
		return writeRunsMarkdown(out, runs)
	default:
		return writeRunsText(out, runs)
	}
}

// writeRunsJSON outputs the run list as JSON.
func writeRunsJSON(w io.Writer, runs []database.RunMetadata) error {
	if runs == nil {
		runs = []database.RunMetadata{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runs)
}

// writeRunsText outputs the run list as a plain text table.
func writeRunsText(w io.Writer, runs []database.RunMetadata) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No saved runs.")
		return err
	}

	var errs []error
	printf := func(format string, a ...any) {
		_, err := fmt.Fprintf(w, format, a...)
		errs = append(errs, err)
	}

	printf("%-36s  %-7s  %-19s  %6s  %6s  %7s  %6s\n",
		"RUN ID", "MODE", "STARTED", "INPUTS", "KEPT", "DROPPED", "FAILED")
	for _, r := range runs {
		printf("%-36s  %-7s  %-19s  %6d  %6d  %7d  %6d\n",
			r.RunID,
			r.Mode,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Inputs,
			r.Kept,
			r.Dropped,
			r.Failed,
		)
	}
	return errors.Join(errs...)
}

// writeRunsMarkdown outputs the run list as a Markdown table.
func writeRunsMarkdown(w io.Writer, runs []database.RunMetadata) error {
	md := markdown.NewMarkdown(w)
	md.H1("Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No saved runs.")
		return md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			"`" + r.RunID + "`",
			r.Mode.String(),
			r.StartedAt.Format("2006-01-02 15:04:05 MST"),
			r.Elapsed.Round(time.Millisecond).String(),
			strconv.Itoa(r.Inputs),
			strconv.Itoa(r.Kept),
			strconv.Itoa(r.Dropped),
			strconv.Itoa(r.Failed),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run ID", "Mode", "Started", "Elapsed", "Inputs", "Kept", "Dropped", "Failed"},
		Rows:   rows,
	})

	return md.Build()
}

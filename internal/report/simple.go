package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/nao1215/corpusdedup/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Plain ASCII is the default so output can be piped to files; colors are
// opt-in.
type SimpleWriter struct {
	baseWriter

	// verbose lists every document, not only duplicates.
	verbose bool

	// colorize enables ANSI colors.
	colorize bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-document output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables colored output.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colorize = enabled
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// paint returns a sprint function for the given attributes that honors
// the writer's color setting regardless of the terminal.
func (w *SimpleWriter) paint(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if w.colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	summary := ensureSummary(report)

	var sb strings.Builder
	w.writeHeader(&sb, summary)
	w.writeParams(&sb, report)
	w.writeSummary(&sb, summary)
	w.writeDuplicates(&sb, report)
	w.writeDocuments(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs only the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder
	w.writeHeader(&sb, summary)
	w.writeSummary(&sb, summary)
	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	bold := w.paint(color.FgCyan, color.Bold)
	red := w.paint(color.FgRed)
	green := w.paint(color.FgGreen)

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(bold("                       CORPUSDEDUP REPORT"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:   %s\n", s.RunID)
	fmt.Fprintf(sb, "Mode:     %s\n", s.Mode)
	fmt.Fprintf(sb, "Started:  %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:  %s\n", s.Elapsed.Round(time.Millisecond))
	if s.HasFailures() {
		fmt.Fprintf(sb, "Status:   %s\n", red(fmt.Sprintf("Complete with %d skipped document(s)", s.Failed)))
	} else {
		fmt.Fprintf(sb, "Status:   %s\n", green("Complete"))
	}
	sb.WriteString("\n")
}

// writeParams writes the configuration the run used.
func (w *SimpleWriter) writeParams(sb *strings.Builder, report *model.RunReport) {
	section(sb, "PARAMETERS")

	p := report.Params
	if report.Mode == model.ModeMinHash {
		fmt.Fprintf(sb, "  num_hashes:        %d\n", p.NumHashes)
		fmt.Fprintf(sb, "  num_bands:         %d (rows per band: %d)\n", p.NumBands, p.RowsPerBand)
		fmt.Fprintf(sb, "  ngram_size:        %d\n", p.NGramSize)
		fmt.Fprintf(sb, "  jaccard_threshold: %.2f\n", p.JaccardThreshold)
		fmt.Fprintf(sb, "  policy:            %s\n", policyText(p))
		fmt.Fprintf(sb, "  seed:              %d\n", p.Seed)
	}
	fmt.Fprintf(sb, "  workers:           %d\n", p.Workers)
	fmt.Fprintf(sb, "  output:            %s\n", p.OutputDir)
	sb.WriteString("\n")
}

// policyText describes how band candidates are confirmed.
func policyText(p model.Params) string {
	if p.Verify {
		return fmt.Sprintf("verify candidates (estimated Jaccard >= %.2f)", p.JaccardThreshold)
	}
	return "any shared band is a duplicate"
}

// writeSummary writes the counts section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s *model.Summary) {
	yellow := w.paint(color.FgYellow)

	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  INPUTS:    %d\n", s.Inputs)
	fmt.Fprintf(sb, "  KEPT:      %d\n", s.Kept)
	if s.Mode == model.ModeMinHash {
		fmt.Fprintf(sb, "  DROPPED:   %s (%.1f%%)\n", yellow(s.Dropped), s.DropRatio()*100)
	}
	if s.Filtered > 0 {
		fmt.Fprintf(sb, "  FILTERED:  %d\n", s.Filtered)
	}
	fmt.Fprintf(sb, "  FAILED:    %d\n", s.Failed)
	if s.Mode == model.ModeLines {
		sb.WriteString("\n")
		fmt.Fprintf(sb, "  LINES:     %d\n", s.LinesTotal)
		fmt.Fprintf(sb, "  KEPT:      %d\n", s.LinesKept)
		fmt.Fprintf(sb, "  REMOVED:   %s\n", yellow(s.LinesDropped()))
	}
	sb.WriteString("\n")
}

// writeDuplicates lists dropped documents under the document they duplicate.
func (w *SimpleWriter) writeDuplicates(sb *strings.Builder, report *model.RunReport) {
	dups := duplicates(report)
	if len(dups) == 0 {
		return
	}

	section(sb, "DUPLICATES")

	current := ""
	for _, d := range dups {
		if d.DuplicateOf != current {
			current = d.DuplicateOf
			fmt.Fprintf(sb, "  [=] %s\n", current)
		}
		if d.Similarity > 0 {
			fmt.Fprintf(sb, "      <- %s (similarity %.2f)\n", d.ID, d.Similarity)
		} else {
			fmt.Fprintf(sb, "      <- %s\n", d.ID)
		}
	}
	sb.WriteString("\n")
}

// writeDocuments lists every document in verbose mode.
func (w *SimpleWriter) writeDocuments(sb *strings.Builder, report *model.RunReport) {
	if !w.verbose || len(report.Documents) == 0 {
		return
	}

	section(sb, "DOCUMENTS")

	for _, d := range report.Documents {
		mark := "+"
		if !d.Kept {
			mark = "-"
		}
		switch report.Mode {
		case model.ModeLines:
			fmt.Fprintf(sb, "  [%s] %s (%d/%d lines kept)\n", mark, d.ID, d.LinesKept, d.LinesTotal)
		default:
			fmt.Fprintf(sb, "  [%s] %s (%d shingles)\n", mark, d.ID, d.Shingles)
		}
		if d.Output != "" {
			fmt.Fprintf(sb, "      Output: %s\n", d.Output)
		}
	}
	sb.WriteString("\n")
}

// writeFailures lists skipped and filtered documents.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.RunReport) {
	if len(report.Failures) == 0 && len(report.Filtered) == 0 {
		return
	}

	section(sb, "SKIPPED")

	for _, f := range report.Failures {
		fmt.Fprintf(sb, "  [!] %s\n", f.ID)
		fmt.Fprintf(sb, "      Stage: %s\n", f.Stage)
		fmt.Fprintf(sb, "      Error: %s\n", f.Error)
	}
	for _, id := range report.Filtered {
		fmt.Fprintf(sb, "  [~] %s (filtered)\n", id)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by corpusdedup\n")
	sb.WriteString("https://github.com/nao1215/corpusdedup\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

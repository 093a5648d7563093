package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/corpusdedup/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	summary := ensureSummary(report)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeParams(md, report)
	w.writeSummary(md, summary)
	w.writeDuplicates(md, report)
	w.writeSkipped(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("Corpusdedup Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + s.RunID + "`"},
			{"Mode", s.Mode.String()},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
			{"Status", w.getStatusText(s)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(s *model.Summary) string {
	if s.HasFailures() {
		return fmt.Sprintf("⚠️ Complete, %d document(s) skipped", s.Failed)
	}
	return "✅ Complete"
}

// writeParams writes the effective configuration.
func (w *MarkdownWriter) writeParams(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Parameters")
	md.PlainText("")

	p := report.Params
	rows := [][]string{}
	if report.Mode == model.ModeMinHash {
		rows = append(rows,
			[]string{"num_hashes", strconv.Itoa(p.NumHashes)},
			[]string{"num_bands", strconv.Itoa(p.NumBands)},
			[]string{"rows_per_band", strconv.Itoa(p.RowsPerBand)},
			[]string{"ngram_size", strconv.Itoa(p.NGramSize)},
			[]string{"jaccard_threshold", strconv.FormatFloat(p.JaccardThreshold, 'f', 2, 64)},
			[]string{"verify", strconv.FormatBool(p.Verify)},
			[]string{"seed", strconv.FormatUint(p.Seed, 10)},
		)
	}
	rows = append(rows,
		[]string{"workers", strconv.Itoa(p.Workers)},
		[]string{"output", "`" + p.OutputDir + "`"},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Parameter", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the counts section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	rows := [][]string{
		{"Inputs", strconv.Itoa(s.Inputs)},
		{"Kept", strconv.Itoa(s.Kept)},
	}
	if s.Mode == model.ModeMinHash {
		rows = append(rows, []string{"Dropped", strconv.Itoa(s.Dropped)})
	}
	rows = append(rows,
		[]string{"Filtered", strconv.Itoa(s.Filtered)},
		[]string{"Failed", strconv.Itoa(s.Failed)},
	)
	if s.Mode == model.ModeLines {
		rows = append(rows,
			[]string{"Lines", strconv.Itoa(s.LinesTotal)},
			[]string{"Lines kept", strconv.Itoa(s.LinesKept)},
			[]string{"Lines removed", strconv.Itoa(s.LinesDropped())},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.Inputs > 0 {
		w.writePieChart(md, s)
	}

	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of document outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Document Outcomes"),
		piechart.WithShowData(true),
	)

	if s.Kept > 0 {
		chart.LabelAndIntValue("Kept", uint64(s.Kept)) //nolint:gosec // count is non-negative
	}
	if s.Dropped > 0 {
		chart.LabelAndIntValue("Dropped", uint64(s.Dropped)) //nolint:gosec // count is non-negative
	}
	if s.Filtered > 0 {
		chart.LabelAndIntValue("Filtered", uint64(s.Filtered)) //nolint:gosec // count is non-negative
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.Failed)) //nolint:gosec // count is non-negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.Inputs == 0:
		md.Note("No documents were processed.")
	case s.HasFailures():
		md.Warningf(
			"%d document(s) could not be processed and were skipped.",
			s.Failed,
		)
	case s.Mode == model.ModeMinHash && s.Dropped > 0:
		md.Importantf(
			"%d near-duplicate document(s) removed (%.1f%% of the corpus).",
			s.Dropped, s.DropRatio()*100,
		)
	case s.Mode == model.ModeLines && s.LinesDropped() > 0:
		md.Importantf("%d repeated line(s) removed.", s.LinesDropped())
	default:
		md.Tip("No duplicates found.")
	}
	md.PlainText("")
}

// writeDuplicates writes the duplicate table.
func (w *MarkdownWriter) writeDuplicates(md *markdown.Markdown, report *model.RunReport) {
	if report.Mode != model.ModeMinHash {
		return
	}

	md.H2("Duplicates")
	md.PlainText("")

	dups := duplicates(report)
	if len(dups) == 0 {
		md.PlainText("No near-duplicate documents detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(dups))
	for i, d := range dups {
		similarity := "-"
		if d.Similarity > 0 {
			similarity = strconv.FormatFloat(d.Similarity, 'f', 2, 64)
		}
		rows[i] = []string{
			truncateString(d.DuplicateOf, 50),
			truncateString(d.ID, 50),
			similarity,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kept", "Dropped", "Similarity"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkipped writes failed and filtered documents.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Failures) == 0 && len(report.Filtered) == 0 {
		return
	}

	md.H2("Skipped Documents")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Failures)+len(report.Filtered))
	for _, f := range report.Failures {
		rows = append(rows, []string{
			truncateString(f.ID, 50),
			f.Stage,
			truncateString(f.Error, 60),
		})
	}
	for _, id := range report.Filtered {
		rows = append(rows, []string{truncateString(id, 50), "filter", "-"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document", "Stage", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [corpusdedup](https://github.com/nao1215/corpusdedup)*")
}

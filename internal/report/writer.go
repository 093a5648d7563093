package report

import (
	"cmp"
	"io"
	"slices"

	"github.com/nao1215/corpusdedup/internal/model"
)

// Writer defines the interface for report output.
// Implementations write run results in various formats.
type Writer interface {
	// Write outputs the full run report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)

	// WriteSummary outputs only the condensed summary.
	WriteSummary(summary *model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// ensureSummary builds the summary of an unfinished report.
func ensureSummary(report *model.RunReport) *model.Summary {
	if report.Summary == nil {
		report.Summary = model.NewSummary(report)
	}
	return report.Summary
}

// duplicates returns the dropped documents of a report, grouped by the
// document they duplicate and in input order within a group.
func duplicates(report *model.RunReport) []model.DocumentResult {
	var dups []model.DocumentResult
	for _, d := range report.Documents {
		if !d.Kept && d.DuplicateOf != "" {
			dups = append(dups, d)
		}
	}
	slices.SortStableFunc(dups, func(a, b model.DocumentResult) int {
		return cmp.Compare(a.DuplicateOf, b.DuplicateOf)
	})
	return dups
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

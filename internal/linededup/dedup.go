package linededup

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpusdedup/internal/model"
)

// Result holds the surviving lines of one document.
type Result struct {
	// ID is the document identifier.
	ID string

	// Lines are the lines whose global count is exactly one, in document order.
	Lines []string

	// Total is the number of lines the document had before filtering.
	Total int
}

// Text joins the surviving lines.
func (r Result) Text() string {
	return strings.Join(r.Lines, "")
}

// Dropped returns the number of removed lines.
func (r Result) Dropped() int {
	return r.Total - len(r.Lines)
}

// Deduplicator runs the two-phase line filter.
type Deduplicator struct {
	// workers bounds the goroutines used in each phase.
	workers int

	// logger is used for structured logging.
	logger *slog.Logger
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithWorkers sets the number of concurrent workers per phase.
// Non-positive values are ignored.
func WithWorkers(n int) Option {
	return func(d *Deduplicator) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduplicator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Deduplicator.
func New(opts ...Option) *Deduplicator {
	d := &Deduplicator{
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run deduplicates docs and returns one Result per document in input
// order. Documents left without lines still get a Result.
func (d *Deduplicator) Run(ctx context.Context, docs []model.Document) ([]Result, error) {
	lines := make([][]string, len(docs))
	table := NewFrequencyTable()

	// Phase 1: count every line of every document.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines[i] = SplitLines(docs[i].Text)

			local := make(map[string]int, len(lines[i]))
			for _, line := range lines[i] {
				local[line]++
			}
			table.Merge(local)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Debug("line counts complete",
		"documents", len(docs),
		"distinct_lines", table.Len(),
	)

	// Phase 2: keep lines seen exactly once in the whole corpus.
	results := make([]Result, len(docs))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = filter(docs[i].ID, lines[i], table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func filter(id string, lines []string, table *FrequencyTable) Result {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if table.Unique(line) {
			kept = append(kept, line)
		}
	}
	return Result{
		ID:    id,
		Lines: kept,
		Total: len(lines),
	}
}

// Dedup returns the surviving lines of every document keyed by document ID.
func Dedup(ctx context.Context, docs []model.Document) (map[string][]string, error) {
	results, err := New().Run(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(results))
	for _, r := range results {
		out[r.ID] = r.Lines
	}
	return out, nil
}

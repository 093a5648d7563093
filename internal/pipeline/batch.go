package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpusdedup/internal/model"
)

// Outcome splits a batch into kept, dropped and failed documents.
// Each list keeps the input order.
type Outcome struct {
	// Kept are the documents that passed every step, with their rewritten text.
	Kept []model.Document

	// Dropped are the IDs of documents rejected by a filter step.
	Dropped []string

	// Failed are the documents a step could not process.
	Failed []model.Failure
}

// BatchProcessor runs a pipeline over many documents concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each document.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of documents processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent documents.
// Default is 10 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory function is called for each document so that no
// step state leaks between documents.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     10,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch preprocesses docs concurrently. Per-document errors never
// abort the batch; the returned error is non-nil only on cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, docs []model.Document) (*Outcome, error) {
	bp.logger.Debug("starting preprocessing",
		"documents", len(docs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	processed := make([]model.Document, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc := docs[i]
			err := bp.pipelineFactory().Execute(gctx, &doc)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			processed[i] = doc
			errs[i] = err
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{
		Kept: make([]model.Document, 0, len(docs)),
	}
	for i, err := range errs {
		switch {
		case err == nil:
			out.Kept = append(out.Kept, processed[i])
		case errors.Is(err, ErrDrop):
			out.Dropped = append(out.Dropped, docs[i].ID)
		default:
			stage := "preprocess"
			var se *StepError
			if errors.As(err, &se) {
				stage = se.Step
				err = se.Err
			}
			out.Failed = append(out.Failed, model.NewFailure(docs[i].ID, stage, err))
		}
	}

	bp.logger.Debug("preprocessing complete",
		"kept", len(out.Kept),
		"dropped", len(out.Dropped),
		"failed", len(out.Failed),
		"elapsed", time.Since(startTime),
	)

	return out, nil
}

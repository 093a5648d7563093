package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/corpusdedup/internal/model"
)

// ErrDrop is returned by a Step that rejects a document.
// A dropped document is filtered out, not a failure.
var ErrDrop = errors.New("document dropped")

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the document as left by
// the previous step.
type Step interface {
	// Do executes the step. It may replace doc.Text. Returning ErrDrop
	// (possibly wrapped) filters the document out; any other error marks
	// the document as failed.
	Do(ctx context.Context, doc *model.Document) error

	// Name returns the step's name for logging and failure reports.
	Name() string
}

// StepError records which step stopped a document.
type StepError struct {
	// Step is the name of the step that returned the error.
	Step string

	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps on doc in sequence and stops at the first error.
// Step errors are returned as *StepError; use errors.Is(err, ErrDrop) to
// tell a filtered document from a failed one. Cancellation is checked
// before each step.
func (p *Pipeline) Execute(ctx context.Context, doc *model.Document) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		if err := step.Do(ctx, doc); err != nil {
			if errors.Is(err, ErrDrop) {
				p.logger.Debug("document dropped",
					"step", step.Name(),
					"id", doc.ID,
					"reason", err,
				)
			} else {
				p.logger.Warn("step failed",
					"step", step.Name(),
					"id", doc.ID,
					"error", err,
				)
			}
			return &StepError{Step: step.Name(), Err: err}
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"id", doc.ID,
		)
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

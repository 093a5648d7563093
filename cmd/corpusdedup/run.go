package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/corpusdedup/internal/config"
	"github.com/nao1215/corpusdedup/internal/corpus"
	"github.com/nao1215/corpusdedup/internal/database"
	"github.com/nao1215/corpusdedup/internal/linededup"
	"github.com/nao1215/corpusdedup/internal/model"
	"github.com/nao1215/corpusdedup/internal/neardup"
	"github.com/nao1215/corpusdedup/internal/pipeline"
	"github.com/nao1215/corpusdedup/internal/report"
)

// runMode executes the lines or minhash command.
func runMode(cmd *cobra.Command, args []string, mode model.Mode) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Configuration errors are reported before any document is read.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if mode == model.ModeMinHash {
		if err := cfg.ValidateMinHash(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := &runner{cfg: cfg, logger: logger}
	runReport, err := r.run(ctx, mode)
	if err != nil {
		return err
	}

	if err := outputReport(cmd.OutOrStdout(), cfg, runReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return saveRun(ctx, cfg, runReport, logger)
}

// runner holds what one deduplication run needs.
type runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// run reads, preprocesses and deduplicates the corpus and writes the
// artifacts. Unreadable or rejected documents are recorded in the report.
func (r *runner) run(ctx context.Context, mode model.Mode) (*model.RunReport, error) {
	cfg := r.cfg
	runReport := model.NewRunReport(uuid.NewString(), mode, params(cfg, mode))

	r.logger.Info("starting run",
		"runID", runReport.RunID,
		"mode", mode,
		"inputs", cfg.Inputs,
		"workers", cfg.Workers,
	)

	p, err := pipeline.DefaultPipeline(cfg, pipeline.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	reader := corpus.NewReader(
		corpus.WithRecursive(cfg.Recursive),
		corpus.WithExtensions(cfg.Extensions...),
		corpus.WithMaxSize(cfg.MaxDocumentSize),
		corpus.WithReadWorkers(cfg.Workers),
		corpus.WithReaderLogger(r.logger),
	)

	paths, err := reader.Collect(cfg.Inputs)
	if err != nil {
		return nil, err
	}
	if err := corpus.CheckOutputNames(paths); err != nil {
		return nil, err
	}

	writer, err := corpus.NewWriter(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	docs, failures, err := reader.Read(ctx, paths)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		runReport.AddFailure(f)
	}

	// Steps are stateless, so one pipeline serves every document.
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return p },
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithBatchLogger(r.logger),
	)
	outcome, err := bp.ProcessBatch(ctx, docs)
	if err != nil {
		return nil, err
	}
	for _, f := range outcome.Failed {
		runReport.AddFailure(f)
	}
	runReport.Filtered = outcome.Dropped

	switch mode {
	case model.ModeLines:
		err = r.dedupLines(ctx, outcome.Kept, writer, runReport)
	case model.ModeMinHash:
		err = r.dedupNear(ctx, outcome.Kept, writer, runReport)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	runReport.Finish()

	r.logger.Info("run completed",
		"runID", runReport.RunID,
		"kept", runReport.Summary.Kept,
		"dropped", runReport.Summary.Dropped,
		"failed", runReport.Summary.Failed,
		"elapsed", runReport.Elapsed().Round(time.Millisecond),
	)

	return runReport, nil
}

// dedupLines removes corpus-wide repeated lines and writes every document.
func (r *runner) dedupLines(ctx context.Context, docs []model.Document, writer *corpus.Writer, runReport *model.RunReport) error {
	d := linededup.New(
		linededup.WithWorkers(r.cfg.Workers),
		linededup.WithLogger(r.logger),
	)
	results, err := d.Run(ctx, docs)
	if err != nil {
		return err
	}

	for i, res := range results {
		path, err := writer.WriteLines(docs[i], res.Lines)
		if err != nil {
			return err
		}
		runReport.AddResult(model.DocumentResult{
			ID:         res.ID,
			Kept:       true,
			Output:     path,
			LinesTotal: res.Total,
			LinesKept:  len(res.Lines),
		})
	}
	return nil
}

// dedupNear drops near-duplicate documents and writes the admitted ones.
func (r *runner) dedupNear(ctx context.Context, docs []model.Document, writer *corpus.Writer, runReport *model.RunReport) error {
	d, err := neardup.New(neardupOptions(r.cfg), neardup.WithLogger(r.logger))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	decisions, err := d.Decide(ctx, docs)
	if err != nil {
		return err
	}

	for i, dec := range decisions {
		result := model.DocumentResult{
			ID:          dec.ID,
			Kept:        dec.Admitted,
			DuplicateOf: dec.DuplicateOf,
			Shingles:    dec.Shingles,
		}
		if !dec.Admitted {
			result.Similarity = dec.Similarity
		}
		if dec.Admitted {
			path, err := writer.Write(docs[i])
			if err != nil {
				return err
			}
			result.Output = path
		}
		runReport.AddResult(result)
	}
	return nil
}

// neardupOptions converts the configuration into deduplicator options.
func neardupOptions(cfg *config.Config) neardup.Options {
	return neardup.Options{
		NumHashes:        cfg.NumHashes,
		NumBands:         cfg.NumBands,
		NGramSize:        cfg.NGramSize,
		JaccardThreshold: cfg.JaccardThreshold,
		Verify:           cfg.Verify,
		Seed:             cfg.Seed,
		Workers:          cfg.Workers,
	}
}

// params records the effective configuration of a run.
func params(cfg *config.Config, mode model.Mode) model.Params {
	p := model.Params{
		Workers:   cfg.Workers,
		OutputDir: cfg.OutputDir,
	}
	if mode == model.ModeMinHash {
		p.NumHashes = cfg.NumHashes
		p.NumBands = cfg.NumBands
		p.RowsPerBand = cfg.RowsPerBand()
		p.NGramSize = cfg.NGramSize
		p.JaccardThreshold = cfg.JaccardThreshold
		p.Verify = cfg.Verify
		p.Seed = cfg.Seed
	}
	return p
}

// outputReport outputs the run report in the requested format.
func outputReport(stdout io.Writer, cfg *config.Config, runReport *model.RunReport) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithColor(cfg.Color && cfg.ReportFile == ""),
		)
	}

	_, err := w.Write(runReport)
	return err
}

// saveRun stores the run in the history database when enabled.
func saveRun(ctx context.Context, cfg *config.Config, runReport *model.RunReport, logger *slog.Logger) error {
	if !cfg.SaveHistory {
		return nil
	}

	db, err := database.Open(cfg.HistoryDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, runReport); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to history", "runID", runReport.RunID, "db", db.Path())
	return nil
}

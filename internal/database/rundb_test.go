package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/corpusdedup/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// newTestRun creates a finished minhash run report.
func newTestRun(runID string, started time.Time) *model.RunReport {
	report := model.NewRunReport(runID, model.ModeMinHash, model.Params{
		NumHashes: 100,
		NumBands:  10,
		Workers:   2,
		OutputDir: "out",
	})
	report.StartedAt = started
	report.AddResult(model.DocumentResult{ID: "a.txt", Kept: true, Output: "out/a.txt"})
	report.AddResult(model.DocumentResult{ID: "b.txt", DuplicateOf: "a.txt", Similarity: 0.9})
	report.AddResult(model.DocumentResult{ID: "c.txt", Kept: true, Output: "out/c.txt"})
	report.AddFailure(model.Failure{ID: "bad.txt", Stage: "read", Error: "invalid UTF-8"})
	report.FinishedAt = started.Add(1500 * time.Millisecond)
	report.Summary = model.NewSummary(report)
	return report
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := db.SaveRun(ctx, newTestRun("run-1", started)); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	got, err := db.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Mode != model.ModeMinHash {
		t.Errorf("expected minhash mode, got %s", got.Mode)
	}
	if len(got.Documents) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(got.Documents))
	}
	if got.Documents[1].DuplicateOf != "a.txt" {
		t.Errorf("expected b.txt to duplicate a.txt, got %q", got.Documents[1].DuplicateOf)
	}
	if len(got.Failures) != 1 || got.Failures[0].Stage != "read" {
		t.Errorf("expected read failure, got %v", got.Failures)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("expected start %v, got %v", started, got.StartedAt)
	}
	if got.Params.NumBands != 10 {
		t.Errorf("expected 10 bands, got %d", got.Params.NumBands)
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	_, err := db.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestGetDecisions(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveRun(ctx, newTestRun("run-1", time.Now())); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	decisions, err := db.GetDecisions(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get decisions: %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(decisions))
	}

	want := []Decision{
		{Position: 0, DocumentID: "a.txt", Kept: true},
		{Position: 1, DocumentID: "b.txt", DuplicateOf: "a.txt", Similarity: 0.9},
		{Position: 2, DocumentID: "c.txt", Kept: true},
	}
	for i, w := range want {
		if decisions[i] != w {
			t.Errorf("decision %d: got %+v, want %+v", i, decisions[i], w)
		}
	}
}

func TestSaveRunReplaces(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := newTestRun("run-1", time.Now())
	if err := db.SaveRun(ctx, report); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	report.Documents = report.Documents[:1]
	report.Summary = model.NewSummary(report)
	if err := db.SaveRun(ctx, report); err != nil {
		t.Fatalf("failed to save run again: %v", err)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	decisions, err := db.GetDecisions(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get decisions: %v", err)
	}
	if len(decisions) != 1 {
		t.Errorf("expected 1 decision after replace, got %d", len(decisions))
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "newest", "middle"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		if err := db.SaveRun(ctx, newTestRun(id, base.Add(offsets[i]))); err != nil {
			t.Fatalf("failed to save run %s: %v", id, err)
		}
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{"newest", "middle", "old"} {
		if runs[i].RunID != want {
			t.Errorf("run %d: expected %s, got %s", i, want, runs[i].RunID)
		}
	}

	first := runs[0]
	if first.Inputs != 4 || first.Kept != 2 || first.Dropped != 1 || first.Failed != 1 {
		t.Errorf("unexpected counts: %+v", first)
	}
	if first.Elapsed != 1500*time.Millisecond {
		t.Errorf("expected 1.5s elapsed, got %v", first.Elapsed)
	}
	if first.OutputDir != "out" {
		t.Errorf("expected output dir out, got %q", first.OutputDir)
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(limited))
	}
}

func TestDeleteRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveRun(ctx, newTestRun("run-1", time.Now())); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if err := db.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}

	if _, err := db.GetRun(ctx, "run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound after delete, got %v", err)
	}
	decisions, err := db.GetDecisions(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get decisions: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("expected no decisions after delete, got %d", len(decisions))
	}

	if err := db.DeleteRun(ctx, "run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound for second delete, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "fixed layout", input: "2025-03-01T10:00:00.000000000Z", want: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "sqlite default", input: "2025-03-01 10:00:00", want: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "invalid", input: "yesterday", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

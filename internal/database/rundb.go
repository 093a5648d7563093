package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/corpusdedup/internal/model"
)

// FileName is the name of the database file inside the history directory.
const FileName = "history.db"

// timeLayout has fixed-width fractional seconds so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunDB provides SQLite-based storage for run reports.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file. The busy timeout lets
	// concurrent processes wait for the writer instead of failing.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}
	dsn += "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store complete run reports as JSON
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		started_at TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		inputs INTEGER NOT NULL,
		kept INTEGER NOT NULL,
		dropped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		output_dir TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Decisions store one row per processed document
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		document_id TEXT NOT NULL,
		kept INTEGER NOT NULL,
		duplicate_of TEXT,
		similarity REAL,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_document ON decisions(document_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored run.
// This is used for listing runs without loading the full report.
type RunMetadata struct {
	RunID     string        `json:"run_id"`
	Mode      model.Mode    `json:"mode"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Inputs    int           `json:"inputs"`
	Kept      int           `json:"kept"`
	Dropped   int           `json:"dropped"`
	Failed    int           `json:"failed"`
	OutputDir string        `json:"output_dir"`
}

// Decision is one stored per-document outcome.
type Decision struct {
	Position    int     `json:"position"`
	DocumentID  string  `json:"document_id"`
	Kept        bool    `json:"kept"`
	DuplicateOf string  `json:"duplicate_of,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// SaveRun stores a run report and its per-document decisions in one
// transaction. Saving the same run ID twice replaces the earlier copy.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.RunReport) (err error) {
	if report.Summary == nil {
		report.Summary = model.NewSummary(report)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM decisions WHERE run_id = ?`, report.RunID); err != nil {
		return fmt.Errorf("failed to clear decisions: %w", err)
	}

	s := report.Summary
	_, err = tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO runs
		(run_id, mode, started_at, elapsed_ms, inputs, kept, dropped, failed, output_dir, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		string(report.Mode),
		report.StartedAt.UTC().Format(timeLayout),
		report.Elapsed().Milliseconds(),
		s.Inputs,
		s.Kept,
		s.Dropped,
		s.Failed,
		report.Params.OutputDir,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO decisions (run_id, position, document_id, kept, duplicate_of, similarity)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range report.Documents {
		if _, err = stmt.ExecContext(ctx,
			report.RunID,
			i,
			d.ID,
			d.Kept,
			nullString(d.DuplicateOf),
			d.Similarity,
		); err != nil {
			return fmt.Errorf("failed to save decision for %s: %w", d.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns metadata of stored runs, newest first.
// A limit of zero or less returns all runs.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT run_id, mode, started_at, elapsed_ms, inputs, kept, dropped, failed, output_dir
	FROM runs
	ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var mode, startedAt string
		var elapsedMS int64
		var outputDir sql.NullString

		if err := rows.Scan(
			&meta.RunID,
			&mode,
			&startedAt,
			&elapsedMS,
			&meta.Inputs,
			&meta.Kept,
			&meta.Dropped,
			&meta.Failed,
			&outputDir,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.Mode = model.Mode(mode)
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		meta.OutputDir = outputDir.String

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a stored run report by ID.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.RunReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE run_id = ?`, runID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetDecisions returns the per-document decisions of a run in input order.
func (rdb *RunDB) GetDecisions(ctx context.Context, runID string) ([]Decision, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT position, document_id, kept, duplicate_of, similarity
	FROM decisions
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decisions: %w", err)
	}
	defer rows.Close()

	var results []Decision
	for rows.Next() {
		var d Decision
		var duplicateOf sql.NullString
		var similarity sql.NullFloat64

		if err := rows.Scan(&d.Position, &d.DocumentID, &d.Kept, &duplicateOf, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.DuplicateOf = duplicateOf.String
		d.Similarity = similarity.Float64

		results = append(results, d)
	}

	return results, rows.Err()
}

// DeleteRun removes a run and its decisions.
func (rdb *RunDB) DeleteRun(ctx context.Context, runID string) error {
	res, err := rdb.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if _, err := rdb.db.ExecContext(ctx, `DELETE FROM decisions WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete decisions: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

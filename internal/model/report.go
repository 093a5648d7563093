package model

import "time"

// Mode identifies which deduplicator produced a RunReport.
type Mode string

const (
	// ModeLines is the corpus-wide exact-line deduplicator.
	ModeLines Mode = "lines"

	// ModeMinHash is the MinHash/LSH near-duplicate pipeline.
	ModeMinHash Mode = "minhash"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Params are the configuration values a run was executed with.
// MinHash fields are zero for line runs.
type Params struct {
	NumHashes        int     `json:"num_hashes,omitempty"`
	NumBands         int     `json:"num_bands,omitempty"`
	RowsPerBand      int     `json:"rows_per_band,omitempty"`
	NGramSize        int     `json:"ngram_size,omitempty"`
	JaccardThreshold float64 `json:"jaccard_threshold,omitempty"`
	Verify           bool    `json:"verify,omitempty"`
	Seed             uint64  `json:"seed,omitempty"`
	Workers          int     `json:"workers"`
	OutputDir        string  `json:"output_dir"`
}

// DocumentResult is the outcome of one document in a run.
type DocumentResult struct {
	// ID is the document identifier.
	ID string `json:"id"`

	// Kept is true when the document (or, for line runs, its artifact) was written.
	// Line runs always keep every document, possibly with zero lines.
	Kept bool `json:"kept"`

	// Output is the path of the written artifact, empty when dropped.
	Output string `json:"output,omitempty"`

	// DuplicateOf is the ID of the indexed document that caused the drop.
	DuplicateOf string `json:"duplicate_of,omitempty"`

	// Similarity is the estimated Jaccard similarity against DuplicateOf.
	// It is only set when candidates were verified.
	Similarity float64 `json:"similarity,omitempty"`

	// Shingles is the number of distinct shingles of the document.
	Shingles int `json:"shingles,omitempty"`

	// LinesTotal and LinesKept are set for line runs.
	LinesTotal int `json:"lines_total,omitempty"`
	LinesKept  int `json:"lines_kept,omitempty"`
}

// RunReport is the full result of one deduplication run.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Mode is the deduplicator used.
	Mode Mode `json:"mode"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Params holds the effective configuration.
	Params Params `json:"params"`

	// Documents holds one result per processed document, in input order.
	Documents []DocumentResult `json:"documents"`

	// Failures lists documents that were skipped.
	Failures []Failure `json:"failures,omitempty"`

	// Filtered lists documents rejected by preprocessing filters.
	Filtered []string `json:"filtered,omitempty"`

	// Summary is a condensed view, generated on demand.
	Summary *Summary `json:"summary,omitempty"`
}

// NewRunReport creates an empty report for a run.
func NewRunReport(runID string, mode Mode, params Params) *RunReport {
	return &RunReport{
		RunID:     runID,
		Mode:      mode,
		StartedAt: time.Now(),
		Params:    params,
		Documents: make([]DocumentResult, 0),
		Failures:  make([]Failure, 0),
	}
}

// AddResult appends a document result.
func (r *RunReport) AddResult(result DocumentResult) {
	r.Documents = append(r.Documents, result)
}

// AddFailure appends a skipped document.
func (r *RunReport) AddFailure(f Failure) {
	r.Failures = append(r.Failures, f)
}

// Finish stamps the end time and builds the summary.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
	r.Summary = NewSummary(r)
}

// Elapsed returns the run duration, or zero if the run has not finished.
func (r *RunReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// KeptIDs returns the IDs of kept documents in input order.
func (r *RunReport) KeptIDs() []string {
	ids := make([]string, 0, len(r.Documents))
	for _, d := range r.Documents {
		if d.Kept {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

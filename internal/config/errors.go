package config

import "errors"

// Configuration validation errors.
// These errors are returned by Validate and ValidateMinHash. Callers use
// errors.Is to tell them apart; all of them are fatal before processing starts.
var (
	// ErrNoInputs is returned when no input file or directory is given.
	ErrNoInputs = errors.New("no inputs specified: provide files or directories to deduplicate")

	// ErrNoOutputDir is returned when no output directory is given.
	ErrNoOutputDir = errors.New("no output directory specified: use --output")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxDocumentSize is returned when the size limit is negative.
	ErrInvalidMaxDocumentSize = errors.New("invalid max document size: must be non-negative")

	// ErrInvalidExtractMode is returned for an unknown HTML extraction mode.
	ErrInvalidExtractMode = errors.New("invalid html extraction mode: must be off, full or readability")

	// ErrInvalidUnicodeForm is returned for an unknown normalization form.
	ErrInvalidUnicodeForm = errors.New("invalid unicode form: must be NFC, NFKC, NFD or NFKD")

	// ErrInvalidNumHashes is returned when the signature length is not positive.
	ErrInvalidNumHashes = errors.New("invalid num hashes: must be positive")

	// ErrInvalidNumBands is returned when the band count is not positive.
	ErrInvalidNumBands = errors.New("invalid num bands: must be positive")

	// ErrBandsNotDivisor is returned when num_hashes is not a multiple of num_bands.
	ErrBandsNotDivisor = errors.New("invalid band layout: num_hashes must be divisible by num_bands")

	// ErrInvalidNGramSize is returned when the shingle window is not positive.
	ErrInvalidNGramSize = errors.New("invalid ngram size: must be positive")

	// ErrInvalidThreshold is returned when the Jaccard threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid jaccard threshold: must be between 0 and 1")
)

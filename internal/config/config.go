package config

import (
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "corpusdedup"

	// DefaultNumHashes is the MinHash signature length.
	DefaultNumHashes = 100

	// DefaultNumBands gives 10 rows per band with the default signature,
	// which puts the LSH candidate threshold near a Jaccard similarity of 0.8.
	DefaultNumBands = 10

	// DefaultNGramSize is the shingle window length in tokens.
	DefaultNGramSize = 5

	// DefaultJaccardThreshold is the similarity above which a verified
	// candidate is a duplicate.
	DefaultJaccardThreshold = 0.8
)

// HTML extraction modes.
const (
	// ExtractOff leaves HTML inputs untouched.
	ExtractOff = "off"

	// ExtractFull keeps all visible text of the page.
	ExtractFull = "full"

	// ExtractReadability keeps only the main article content.
	ExtractReadability = "readability"
)

// Unicode normalization forms accepted by UnicodeForm. Empty disables normalization.
var unicodeForms = []string{"", "NFC", "NFKC", "NFD", "NFKD"}

// Config holds all configuration options for corpusdedup.
// It is populated from defaults, the config file, environment variables
// and CLI flags, in that order, and then passed down explicitly.
type Config struct {
	// NumHashes is the MinHash signature length.
	NumHashes int

	// NumBands is the number of LSH bands. NumHashes must be divisible by it.
	NumBands int

	// NGramSize is the shingle window length.
	NGramSize int

	// JaccardThreshold is the verification threshold. It only gates
	// admission when Verify is true.
	JaccardThreshold float64

	// Verify re-checks band candidates by estimated Jaccard similarity.
	// When false, any shared band makes a document a duplicate.
	Verify bool

	// Seed selects the MinHash family.
	Seed uint64

	// Workers is the number of concurrent workers for reading, preprocessing
	// and signing.
	Workers int

	// Inputs are the files and directories to deduplicate.
	Inputs []string

	// OutputDir receives one artifact per kept document.
	OutputDir string

	// Recursive walks subdirectories of directory inputs.
	Recursive bool

	// Extensions restricts directory inputs to these file extensions.
	Extensions []string

	// MaxDocumentSize skips files larger than this many bytes. Zero means no limit.
	MaxDocumentSize int64

	// ExtractHTML is the HTML extraction mode for .html and .htm inputs.
	ExtractHTML string

	// UnicodeForm is the normalization form applied before deduplication.
	UnicodeForm string

	// Languages keeps only documents detected as one of these ISO 639-1 codes.
	// Empty disables language filtering.
	Languages []string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// Color enables colored terminal reports.
	Color bool

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means the simple text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit configuration file.
	ConfigFilePath string

	// SaveHistory stores the run report in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		NumHashes:        DefaultNumHashes,
		NumBands:         DefaultNumBands,
		NGramSize:        DefaultNGramSize,
		JaccardThreshold: DefaultJaccardThreshold,
		Workers:          runtime.GOMAXPROCS(0),
		ExtractHTML:      ExtractOff,
	}
}

// RowsPerBand returns NumHashes / NumBands. Call ValidateMinHash first.
func (c *Config) RowsPerBand() int {
	if c.NumBands == 0 {
		return 0
	}
	return c.NumHashes / c.NumBands
}

// XDGDataDir returns the XDG data directory for corpusdedup.
// On Linux: ~/.local/share/corpusdedup
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for corpusdedup.
// On Linux: ~/.config/corpusdedup
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HistoryDir returns DBDir, or the XDG data directory when unset.
func (c *Config) HistoryDir() string {
	if c.DBDir != "" {
		return c.DBDir
	}
	return XDGDataDir()
}

// Validate checks the settings shared by every deduplication mode.
// It is called once before any input is read.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInputs
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxDocumentSize < 0 {
		return ErrInvalidMaxDocumentSize
	}
	switch c.ExtractHTML {
	case ExtractOff, ExtractFull, ExtractReadability:
	default:
		return ErrInvalidExtractMode
	}
	if !slices.Contains(unicodeForms, strings.ToUpper(c.UnicodeForm)) {
		return ErrInvalidUnicodeForm
	}
	return nil
}

// ValidateMinHash checks the near-duplicate parameters. A signature that
// cannot be split into whole bands is rejected here, never truncated.
func (c *Config) ValidateMinHash() error {
	if c.NumHashes <= 0 {
		return ErrInvalidNumHashes
	}
	if c.NumBands <= 0 {
		return ErrInvalidNumBands
	}
	if c.NumHashes%c.NumBands != 0 {
		return ErrBandsNotDivisor
	}
	if c.NGramSize <= 0 {
		return ErrInvalidNGramSize
	}
	if c.JaccardThreshold < 0 || c.JaccardThreshold > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by corpusdedup.
const EnvPrefix = "CORPUSDEDUP"

// Env holds configuration read from CORPUSDEDUP_* environment variables.
// Unset variables leave the corresponding field nil.
type Env struct {
	NumHashes        *int     `envconfig:"NUM_HASHES"`
	NumBands         *int     `envconfig:"NUM_BANDS"`
	NGramSize        *int     `envconfig:"NGRAM_SIZE"`
	JaccardThreshold *float64 `envconfig:"JACCARD_THRESHOLD"`
	Verify           *bool    `envconfig:"VERIFY"`
	Seed             *uint64  `envconfig:"SEED"`
	Workers          *int     `envconfig:"WORKERS"`
	Output           *string  `envconfig:"OUTPUT"`
	MaxDocumentSize  *int64   `envconfig:"MAX_DOCUMENT_SIZE"`
	ExtractHTML      *string  `envconfig:"EXTRACT_HTML"`
	UnicodeForm      *string  `envconfig:"UNICODE_FORM"`
	Languages        []string `envconfig:"LANGUAGES"`
	HistoryDir       *string  `envconfig:"HISTORY_DIR"`
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. Variables that are already set are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadEnv reads CORPUSDEDUP_* variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &env, nil
}

// Apply copies every set variable onto cfg.
func (e *Env) Apply(cfg *Config) {
	setIf(&cfg.NumHashes, e.NumHashes)
	setIf(&cfg.NumBands, e.NumBands)
	setIf(&cfg.NGramSize, e.NGramSize)
	setIf(&cfg.JaccardThreshold, e.JaccardThreshold)
	setIf(&cfg.Verify, e.Verify)
	setIf(&cfg.Seed, e.Seed)
	setIf(&cfg.Workers, e.Workers)
	setIf(&cfg.OutputDir, e.Output)
	setIf(&cfg.MaxDocumentSize, e.MaxDocumentSize)
	setIf(&cfg.ExtractHTML, e.ExtractHTML)
	setIf(&cfg.UnicodeForm, e.UnicodeForm)
	setIf(&cfg.DBDir, e.HistoryDir)
	if len(e.Languages) > 0 {
		cfg.Languages = e.Languages
	}
}

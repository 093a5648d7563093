package config

// File represents the structure of the .corpusdedup configuration file.
// Every field is optional; unset fields keep the value they already have.
type File struct {
	MinHash    MinHashSection    `yaml:"minhash,omitempty"`
	Corpus     CorpusSection     `yaml:"corpus,omitempty"`
	Preprocess PreprocessSection `yaml:"preprocess,omitempty"`
	Report     ReportSection     `yaml:"report,omitempty"`
	History    HistorySection    `yaml:"history,omitempty"`
}

// MinHashSection configures near-duplicate detection.
type MinHashSection struct {
	NumHashes        *int     `yaml:"num_hashes,omitempty"`
	NumBands         *int     `yaml:"num_bands,omitempty"`
	NGramSize        *int     `yaml:"ngram_size,omitempty"`
	JaccardThreshold *float64 `yaml:"jaccard_threshold,omitempty"`
	Verify           *bool    `yaml:"verify,omitempty"`
	Seed             *uint64  `yaml:"seed,omitempty"`
}

// CorpusSection configures how inputs are collected and read.
type CorpusSection struct {
	Recursive       *bool    `yaml:"recursive,omitempty"`
	Extensions      []string `yaml:"extensions,omitempty"`
	MaxDocumentSize *int64   `yaml:"max_document_size,omitempty"`
	Workers         *int     `yaml:"workers,omitempty"`
	Output          *string  `yaml:"output,omitempty"`
}

// PreprocessSection configures the steps run before deduplication.
type PreprocessSection struct {
	ExtractHTML *string  `yaml:"extract_html,omitempty"`
	UnicodeForm *string  `yaml:"unicode_form,omitempty"`
	Languages   []string `yaml:"languages,omitempty"`
}

// ReportSection configures report output.
type ReportSection struct {
	// Format is one of simple, json or markdown.
	Format *string `yaml:"format,omitempty"`
	File   *string `yaml:"file,omitempty"`
	Color  *bool   `yaml:"color,omitempty"`
}

// HistorySection configures the run history database.
type HistorySection struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Dir     *string `yaml:"dir,omitempty"`
}

// Apply copies every set field of the file onto cfg.
func (f *File) Apply(cfg *Config) {
	m := f.MinHash
	setIf(&cfg.NumHashes, m.NumHashes)
	setIf(&cfg.NumBands, m.NumBands)
	setIf(&cfg.NGramSize, m.NGramSize)
	setIf(&cfg.JaccardThreshold, m.JaccardThreshold)
	setIf(&cfg.Verify, m.Verify)
	setIf(&cfg.Seed, m.Seed)

	c := f.Corpus
	setIf(&cfg.Recursive, c.Recursive)
	setIf(&cfg.MaxDocumentSize, c.MaxDocumentSize)
	setIf(&cfg.Workers, c.Workers)
	setIf(&cfg.OutputDir, c.Output)
	if len(c.Extensions) > 0 {
		cfg.Extensions = c.Extensions
	}

	p := f.Preprocess
	setIf(&cfg.ExtractHTML, p.ExtractHTML)
	setIf(&cfg.UnicodeForm, p.UnicodeForm)
	if len(p.Languages) > 0 {
		cfg.Languages = p.Languages
	}

	r := f.Report
	if r.Format != nil {
		cfg.JSONReport = *r.Format == "json"
		cfg.MarkdownReport = *r.Format == "markdown"
	}
	setIf(&cfg.ReportFile, r.File)
	setIf(&cfg.Color, r.Color)

	h := f.History
	setIf(&cfg.SaveHistory, h.Enabled)
	setIf(&cfg.DBDir, h.Dir)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

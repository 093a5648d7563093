package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpusdedup/internal/config"
)

// addCorpusFlags registers the flags shared by the lines and minhash commands.
func addCorpusFlags(cmd *cobra.Command) {
	// Corpus flags
	cmd.Flags().StringP("output", "o", "",
		"Output directory for deduplicated documents (required)")
	cmd.Flags().BoolP("recursive", "r", false,
		"Walk subdirectories of directory inputs")
	cmd.Flags().StringSlice("ext", nil,
		"Only read files with these extensions from directory inputs (e.g. txt,md)")
	cmd.Flags().Int64("max-size", 0,
		"Skip documents larger than this many bytes (0 = unlimited)")
	cmd.Flags().IntP("workers", "w", config.NewConfig().Workers,
		"Number of concurrent workers")

	// Preprocessing flags
	cmd.Flags().String("extract-html", config.ExtractOff,
		"Text extraction for .html inputs: off, full or readability")
	cmd.Flags().String("unicode-form", "",
		"Unicode normalization form: NFC, NFKC, NFD or NFKD")
	cmd.Flags().StringSlice("languages", nil,
		"Keep only documents in these ISO 639-1 languages (e.g. en,de)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("color", false,
		"Colorize the text report")

	// History flags
	cmd.Flags().Bool("save-history", false,
		"Save the run report to the history database")
	cmd.Flags().String("history-dir", "",
		"History database directory (default: XDG data directory)")
}

// addMinHashFlags registers the near-duplicate parameters.
func addMinHashFlags(cmd *cobra.Command) {
	cmd.Flags().Int("num-hashes", config.DefaultNumHashes,
		"MinHash signature length")
	cmd.Flags().Int("num-bands", config.DefaultNumBands,
		"Number of LSH bands (must divide --num-hashes)")
	cmd.Flags().IntP("ngram", "n", config.DefaultNGramSize,
		"Shingle size in tokens")
	cmd.Flags().Float64P("threshold", "t", config.DefaultJaccardThreshold,
		"Estimated Jaccard similarity at which a verified candidate is a duplicate")
	cmd.Flags().Bool("verify", false,
		"Verify band candidates against --threshold instead of dropping on any shared band")
	cmd.Flags().Uint64("seed", 0,
		"Seed selecting the MinHash hash family")
}

// buildConfig creates a Config from defaults, the configuration file,
// the environment and explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if envFile := persistentString(cmd, "env-file"); envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	cfg.ConfigFilePath = persistentString(cmd, "config")
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = persistentBool(cmd, "log-json")
	cfg.Inputs = args

	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags left at their
// default do not override the file or the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	// Report format flags replace the configured format as a pair.
	if f.Changed("json") || f.Changed("markdown") {
		cfg.JSONReport = false
		cfg.MarkdownReport = false
	}

	return errors.Join(
		setFlag(cmd, "output", &cfg.OutputDir, f.GetString),
		setFlag(cmd, "recursive", &cfg.Recursive, f.GetBool),
		setFlag(cmd, "ext", &cfg.Extensions, f.GetStringSlice),
		setFlag(cmd, "max-size", &cfg.MaxDocumentSize, f.GetInt64),
		setFlag(cmd, "workers", &cfg.Workers, f.GetInt),
		setFlag(cmd, "extract-html", &cfg.ExtractHTML, f.GetString),
		setFlag(cmd, "unicode-form", &cfg.UnicodeForm, f.GetString),
		setFlag(cmd, "languages", &cfg.Languages, f.GetStringSlice),
		setFlag(cmd, "json", &cfg.JSONReport, f.GetBool),
		setFlag(cmd, "markdown", &cfg.MarkdownReport, f.GetBool),
		setFlag(cmd, "report-file", &cfg.ReportFile, f.GetString),
		setFlag(cmd, "color", &cfg.Color, f.GetBool),
		setFlag(cmd, "save-history", &cfg.SaveHistory, f.GetBool),
		setFlag(cmd, "history-dir", &cfg.DBDir, f.GetString),
		setFlag(cmd, "num-hashes", &cfg.NumHashes, f.GetInt),
		setFlag(cmd, "num-bands", &cfg.NumBands, f.GetInt),
		setFlag(cmd, "ngram", &cfg.NGramSize, f.GetInt),
		setFlag(cmd, "threshold", &cfg.JaccardThreshold, f.GetFloat64),
		setFlag(cmd, "verify", &cfg.Verify, f.GetBool),
		setFlag(cmd, "seed", &cfg.Seed, f.GetUint64),
	)
}

// setFlag stores the value of a flag in dst when the user set it.
// Flags a command does not define are never changed and are skipped.
func setFlag[T any](cmd *cobra.Command, name string, dst *T, get func(string) (T, error)) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/corpusdedup/internal/config"
	"github.com/nao1215/corpusdedup/internal/corpus"
	"github.com/nao1215/corpusdedup/internal/model"
	"github.com/nao1215/corpusdedup/internal/report"
)

// writeCorpus writes files into a new directory and returns their paths
// in the given order.
func writeCorpus(t *testing.T, files ...[2]string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f[0])
		if err := os.WriteFile(path, []byte(f[1]), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", f[0], err)
		}
		paths = append(paths, path)
	}
	return paths
}

// execute runs the root command with args and an empty configuration file,
// so no user configuration leaks into the test.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	emptyConfig := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(emptyConfig, nil, 0600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", emptyConfig))

	err := cmd.Execute()
	return stdout.String(), err
}

// decodeReport parses the output of --json.
func decodeReport(t *testing.T, output string) *report.JSONReport {
	t.Helper()

	var decoded report.JSONReport
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, output)
	}
	return &decoded
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

const (
	articleText = "The quick brown fox jumps over the lazy dog near the river bank while the sun sets slowly behind the distant hills."
	otherText   = "Quarterly revenue figures exceeded analyst expectations as cloud subscriptions grew and hardware margins recovered in every region."
)

func TestLinesCommand(t *testing.T) {
	t.Parallel()

	t.Run("removes lines repeated across the corpus", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"one.txt", "a\nb\na\n"},
			[2]string{"two.txt", "a\nc\n"},
		)
		out := filepath.Join(t.TempDir(), "out")

		output, err := execute(t, append([]string{"lines", "--json", "-o", out}, inputs...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := readFile(t, filepath.Join(out, "one.txt")); got != "b\n" {
			t.Errorf("one.txt: got %q, want %q", got, "b\n")
		}
		if got := readFile(t, filepath.Join(out, "two.txt")); got != "c\n" {
			t.Errorf("two.txt: got %q, want %q", got, "c\n")
		}

		decoded := decodeReport(t, output)
		if decoded.Report.Mode != model.ModeLines {
			t.Errorf("expected lines mode, got %s", decoded.Report.Mode)
		}
		if decoded.Summary.LinesTotal != 5 || decoded.Summary.LinesKept != 2 {
			t.Errorf("unexpected line counts: %d/%d", decoded.Summary.LinesKept, decoded.Summary.LinesTotal)
		}
		if decoded.Summary.Kept != 2 {
			t.Errorf("expected every document kept, got %d", decoded.Summary.Kept)
		}
	})

	t.Run("writes empty artifacts", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"one.txt", "same\n"},
			[2]string{"two.txt", "same\n"},
		)
		out := filepath.Join(t.TempDir(), "out")

		if _, err := execute(t, append([]string{"lines", "-o", out}, inputs...)...); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range []string{"one.txt", "two.txt"} {
			if got := readFile(t, filepath.Join(out, name)); got != "" {
				t.Errorf("%s: expected empty artifact, got %q", name, got)
			}
		}
	})

	t.Run("reads directories", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"one.txt", "header\nbody one\n"},
			[2]string{"two.txt", "header\nbody two\n"},
			[2]string{"skip.md", "header\n"},
		)
		out := filepath.Join(t.TempDir(), "out")

		if _, err := execute(t, "lines", "--ext", "txt", "-o", out, filepath.Dir(inputs[0])); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := readFile(t, filepath.Join(out, "one.txt")); got != "body one\n" {
			t.Errorf("one.txt: got %q", got)
		}
		if _, err := os.Stat(filepath.Join(out, "skip.md")); !os.IsNotExist(err) {
			t.Error("expected skip.md to be filtered by extension")
		}
	})
}

func TestMinHashCommand(t *testing.T) {
	t.Parallel()

	t.Run("drops identical documents in input order", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"a.txt", articleText},
			[2]string{"b.txt", articleText},
			[2]string{"c.txt", otherText},
		)
		out := filepath.Join(t.TempDir(), "out")

		output, err := execute(t, append([]string{"minhash", "--json", "-o", out}, inputs...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := readFile(t, filepath.Join(out, "a.txt")); got != articleText {
			t.Error("expected a.txt written unchanged")
		}
		if _, err := os.Stat(filepath.Join(out, "b.txt")); !os.IsNotExist(err) {
			t.Error("expected b.txt to be dropped")
		}
		if _, err := os.Stat(filepath.Join(out, "c.txt")); err != nil {
			t.Errorf("expected c.txt to be kept: %v", err)
		}

		decoded := decodeReport(t, output)
		docs := decoded.Report.Documents
		if len(docs) != 3 {
			t.Fatalf("expected 3 results, got %d", len(docs))
		}
		if docs[1].Kept || docs[1].DuplicateOf != inputs[0] {
			t.Errorf("expected b.txt duplicate of a.txt, got %+v", docs[1])
		}
		if decoded.Report.Params.RowsPerBand != 10 {
			t.Errorf("expected 10 rows per band, got %d", decoded.Report.Params.RowsPerBand)
		}
	})

	t.Run("reversed order keeps the other copy", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"a.txt", articleText},
			[2]string{"b.txt", articleText},
		)
		out := filepath.Join(t.TempDir(), "out")

		if _, err := execute(t, "minhash", "-o", out, inputs[1], inputs[0]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "b.txt")); err != nil {
			t.Errorf("expected b.txt kept: %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "a.txt")); !os.IsNotExist(err) {
			t.Error("expected a.txt dropped")
		}
	})

	t.Run("verify reports similarity", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"a.txt", articleText},
			[2]string{"b.txt", articleText},
		)
		out := filepath.Join(t.TempDir(), "out")

		output, err := execute(t, append([]string{"minhash", "--verify", "--json", "-o", out}, inputs...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		decoded := decodeReport(t, output)
		if got := decoded.Report.Documents[1].Similarity; got != 1 {
			t.Errorf("expected similarity 1 for identical text, got %v", got)
		}
	})

	t.Run("skips invalid documents", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"a.txt", articleText},
			[2]string{"bad.txt", "\xff\xfe\xfd"},
		)
		out := filepath.Join(t.TempDir(), "out")

		output, err := execute(t, append([]string{"minhash", "--json", "-o", out}, inputs...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		decoded := decodeReport(t, output)
		if len(decoded.Report.Failures) != 1 {
			t.Fatalf("expected 1 failure, got %v", decoded.Report.Failures)
		}
		f := decoded.Report.Failures[0]
		if f.ID != inputs[1] || f.Stage != corpus.StageRead {
			t.Errorf("unexpected failure %+v", f)
		}
		if decoded.Summary.Kept != 1 {
			t.Errorf("expected a.txt kept, got %d kept", decoded.Summary.Kept)
		}
	})

	t.Run("writes text report", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t,
			[2]string{"a.txt", articleText},
			[2]string{"b.txt", articleText},
		)
		out := filepath.Join(t.TempDir(), "out")

		output, err := execute(t, append([]string{"minhash", "-o", out}, inputs...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "CORPUSDEDUP REPORT") || !strings.Contains(output, "DUPLICATES") {
			t.Errorf("unexpected text report:\n%s", output)
		}
	})

	t.Run("writes report file", func(t *testing.T) {
		t.Parallel()

		inputs := writeCorpus(t, [2]string{"a.txt", articleText})
		out := filepath.Join(t.TempDir(), "out")
		reportFile := filepath.Join(t.TempDir(), "reports", "run.md")

		output, err := execute(t, "minhash", "--markdown", "--report-file", reportFile, "-o", out, inputs[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output != "" {
			t.Errorf("expected nothing on stdout, got %q", output)
		}
		if !strings.Contains(readFile(t, reportFile), "# Corpusdedup Report") {
			t.Error("expected markdown report in file")
		}
	})
}

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	inputs := writeCorpus(t, [2]string{"a.txt", articleText})

	tests := []struct {
		name string
		args []string
		want error
	}{
		{
			name: "bands do not divide hashes",
			args: []string{"minhash", "--num-hashes", "100", "--num-bands", "7"},
			want: config.ErrBandsNotDivisor,
		},
		{
			name: "zero ngram",
			args: []string{"minhash", "--ngram", "0"},
			want: config.ErrInvalidNGramSize,
		},
		{
			name: "threshold above one",
			args: []string{"minhash", "--threshold", "1.5"},
			want: config.ErrInvalidThreshold,
		},
		{
			name: "conflicting report formats",
			args: []string{"lines", "--json", "--markdown"},
			want: config.ErrConflictingReportFormats,
		},
		{
			name: "unknown extraction mode",
			args: []string{"lines", "--extract-html", "everything"},
			want: config.ErrInvalidExtractMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(t.TempDir(), "out")
			args := append(append([]string{}, tt.args...), "-o", out, inputs[0])

			_, err := execute(t, args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("expected no output directory after a configuration error")
			}
		})
	}

	t.Run("missing output directory", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "lines", inputs[0])
		if !errors.Is(err, config.ErrNoOutputDir) {
			t.Errorf("expected ErrNoOutputDir, got %v", err)
		}
	})

	t.Run("no inputs", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "lines", "-o", t.TempDir())
		if !errors.Is(err, config.ErrNoInputs) {
			t.Errorf("expected ErrNoInputs, got %v", err)
		}
	})

	t.Run("missing input path", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "lines", "-o", t.TempDir(), filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, corpus.ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", err)
		}
	})

	t.Run("output name collision", func(t *testing.T) {
		t.Parallel()

		first := writeCorpus(t, [2]string{"same.txt", "one\n"})
		second := writeCorpus(t, [2]string{"same.txt", "two\n"})

		_, err := execute(t, "lines", "-o", filepath.Join(t.TempDir(), "out"), first[0], second[0])
		if !errors.Is(err, corpus.ErrNameCollision) {
			t.Errorf("expected ErrNameCollision, got %v", err)
		}
	})
}

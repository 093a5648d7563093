package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/corpusdedup/internal/model"
)

// CheckOutputNames returns ErrNameCollision when two paths share a base
// name and would be written to the same artifact.
func CheckOutputNames(paths []string) error {
	owners := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if prev, ok := owners[name]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrNameCollision, prev, p, name)
		}
		owners[name] = p
	}
	return nil
}

// Writer writes artifacts into an output directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, ErrOutputDirRequired
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns where the artifact for doc is written.
func (w *Writer) Path(doc model.Document) string {
	return filepath.Join(w.dir, doc.OutputName())
}

// Write writes the document text unchanged and returns the artifact path.
func (w *Writer) Write(doc model.Document) (string, error) {
	return w.write(doc, doc.Text)
}

// WriteLines writes the given lines as the artifact of doc. An empty
// slice produces an empty file.
func (w *Writer) WriteLines(doc model.Document, lines []string) (string, error) {
	return w.write(doc, strings.Join(lines, ""))
}

func (w *Writer) write(doc model.Document, content string) (string, error) {
	path := w.Path(doc)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // dataset artifacts are meant to be shared
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

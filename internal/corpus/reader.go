package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpusdedup/internal/model"
)

// StageRead is the failure stage for documents that could not be read.
const StageRead = "read"

// Reader loads documents from files.
type Reader struct {
	// recursive walks subdirectories of directory inputs.
	recursive bool

	// extensions restricts directory expansion to these suffixes.
	// Empty means every regular file.
	extensions []string

	// maxSize is the largest accepted file in bytes. Zero means unlimited.
	maxSize int64

	// workers bounds concurrent reads.
	workers int

	logger *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithRecursive enables walking subdirectories.
func WithRecursive(recursive bool) ReaderOption {
	return func(r *Reader) {
		r.recursive = recursive
	}
}

// WithExtensions restricts directory expansion to files with one of the
// given extensions. A leading dot is optional and matching ignores case.
func WithExtensions(exts ...string) ReaderOption {
	return func(r *Reader) {
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			r.extensions = append(r.extensions, ext)
		}
	}
}

// WithMaxSize sets the size limit in bytes. Zero disables the limit.
func WithMaxSize(n int64) ReaderOption {
	return func(r *Reader) {
		if n >= 0 {
			r.maxSize = n
		}
	}
}

// WithReadWorkers sets the number of concurrent reads.
func WithReadWorkers(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithReaderLogger sets a custom logger.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader creates a Reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collect expands paths into the list of files to read. Files are kept in
// the given order; the contents of a directory are sorted. A path listed
// twice is only returned once.
func (r *Reader) Collect(paths []string) ([]string, error) {
	files := make([]string, 0, len(paths))
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrInputNotFound, p)
			}
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		found, err := r.expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	return files, nil
}

func (r *Reader) expand(dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !r.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !r.matches(path) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	slices.Sort(found)
	return found, nil
}

func (r *Reader) matches(path string) bool {
	if len(r.extensions) == 0 {
		return true
	}
	return slices.Contains(r.extensions, strings.ToLower(filepath.Ext(path)))
}

// Read loads every file concurrently. Documents are returned in the order
// of paths; files that fail are reported as failures instead. The error is
// non-nil only when ctx is canceled.
func (r *Reader) Read(ctx context.Context, paths []string) ([]model.Document, []model.Failure, error) {
	type outcome struct {
		doc model.Document
		err error
	}
	outcomes := make([]outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := r.readFile(p)
			outcomes[i] = outcome{doc: model.NewDocument(p, text), err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	docs := make([]model.Document, 0, len(paths))
	var failures []model.Failure
	for i, o := range outcomes {
		if o.err != nil {
			r.logger.Warn("skipping document", "path", paths[i], "error", o.err)
			failures = append(failures, model.NewFailure(paths[i], StageRead, o.err))
			continue
		}
		docs = append(docs, o.doc)
	}

	r.logger.Debug("corpus read",
		"documents", len(docs),
		"failures", len(failures),
	)
	return docs, failures, nil
}

func (r *Reader) readFile(path string) (string, error) {
	if r.maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.Size() > r.maxSize {
			return "", fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, info.Size(), r.maxSize)
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // corpus paths are user-provided inputs
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

package neardup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpusdedup/internal/lsh"
	"github.com/nao1215/corpusdedup/internal/minhash"
	"github.com/nao1215/corpusdedup/internal/model"
)

// ErrInvalidNGramSize is returned when the shingle window is not positive.
var ErrInvalidNGramSize = errors.New("invalid ngram size: must be positive")

// ErrInvalidThreshold is returned when the Jaccard threshold is outside [0, 1].
var ErrInvalidThreshold = errors.New("invalid jaccard threshold: must be between 0 and 1")

// defaultChunkSize is the number of documents signed before admission runs.
const defaultChunkSize = 256

// Options are the parameters of a near-duplicate run.
type Options struct {
	// NumHashes is the signature length.
	NumHashes int

	// NumBands is the number of LSH bands. NumHashes must be divisible by it.
	NumBands int

	// NGramSize is the shingle window length in tokens.
	NGramSize int

	// JaccardThreshold is the minimum estimated similarity for a verified
	// duplicate. It has no effect unless Verify is set.
	JaccardThreshold float64

	// Verify enables threshold verification of band candidates.
	Verify bool

	// Seed selects the MinHash family.
	Seed uint64

	// Workers bounds the signing goroutines. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the standard parameters.
func DefaultOptions() Options {
	return Options{
		NumHashes:        100,
		NumBands:         10,
		NGramSize:        5,
		JaccardThreshold: 0.8,
	}
}

// Validate checks the options before any document is processed.
func (o Options) Validate() error {
	if _, err := lsh.RowsPerBand(o.NumHashes, o.NumBands); err != nil {
		return err
	}
	if o.NGramSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidNGramSize, o.NGramSize)
	}
	if o.JaccardThreshold < 0 || o.JaccardThreshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, o.JaccardThreshold)
	}
	return nil
}

// Decision is the admission outcome of one document.
type Decision struct {
	// ID is the document identifier.
	ID string

	// Admitted is true when the document is kept.
	Admitted bool

	// DuplicateOf is the representative that caused a drop.
	DuplicateOf string

	// Similarity is the estimated Jaccard similarity against DuplicateOf,
	// or the best estimate among rejected candidates for admitted documents.
	// Only set in verify mode.
	Similarity float64

	// Shingles is the number of distinct shingles.
	Shingles int

	// SharedBands is the number of bands that were already indexed.
	SharedBands int
}

// Deduplicator runs the near-duplicate pipeline. A Deduplicator holds the
// bucket index of one run; use a new one per run.
type Deduplicator struct {
	opts      Options
	rows      int
	signer    *minhash.Signer
	index     *lsh.Index
	reps      map[string]minhash.Signature
	chunkSize int
	logger    *slog.Logger
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduplicator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithChunkSize sets how many documents are signed ahead of admission.
// Non-positive values are ignored.
func WithChunkSize(n int) Option {
	return func(d *Deduplicator) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// New creates a Deduplicator. Configuration errors are returned here so a
// run never starts with an invalid band layout.
func New(opts Options, options ...Option) (*Deduplicator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rows, err := lsh.RowsPerBand(opts.NumHashes, opts.NumBands)
	if err != nil {
		return nil, err
	}
	signer, err := minhash.NewSigner(opts.NumHashes, minhash.WithSeed(opts.Seed))
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	d := &Deduplicator{
		opts:      opts,
		rows:      rows,
		signer:    signer,
		index:     lsh.NewIndex(),
		reps:      make(map[string]minhash.Signature),
		chunkSize: defaultChunkSize,
		logger:    slog.Default(),
	}
	for _, o := range options {
		o(d)
	}
	return d, nil
}

// RowsPerBand returns the number of signature values per band.
func (d *Deduplicator) RowsPerBand() int {
	return d.rows
}

// IndexSize returns the number of claimed buckets.
func (d *Deduplicator) IndexSize() int {
	return d.index.Len()
}

// signed is a document after shingling, signing and banding.
type signed struct {
	sig      minhash.Signature
	bands    []lsh.Band
	shingles int
}

// Decide processes docs in order and returns one Decision per document.
// Calling Decide again on the same Deduplicator continues the same run.
func (d *Deduplicator) Decide(ctx context.Context, docs []model.Document) ([]Decision, error) {
	decisions := make([]Decision, 0, len(docs))

	for start := 0; start < len(docs); start += d.chunkSize {
		end := min(start+d.chunkSize, len(docs))
		chunk := docs[start:end]

		prepared, err := d.sign(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for i, doc := range chunk {
			decisions = append(decisions, d.admit(doc.ID, prepared[i]))
		}
	}

	return decisions, nil
}

// sign shingles, signs and bands a chunk in parallel.
func (d *Deduplicator) sign(ctx context.Context, chunk []model.Document) ([]signed, error) {
	out := make([]signed, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i := range chunk {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sig, n := d.signer.SignText(chunk[i].Text, d.opts.NGramSize)
			bands, err := lsh.Bands(sig, d.opts.NumBands, d.rows)
			if err != nil {
				return fmt.Errorf("banding %s: %w", chunk[i].ID, err)
			}
			out[i] = signed{sig: sig, bands: bands, shingles: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Deduplicator) admit(id string, s signed) Decision {
	decision := Decision{ID: id, Shingles: s.shingles}

	if !d.opts.Verify {
		owners, claimed := d.index.ClaimIfAbsent(s.bands, id)
		if !claimed {
			decision.DuplicateOf = owners[0]
			decision.SharedBands = d.sharedBands(s.bands)
			d.logger.Debug("duplicate", "id", id, "duplicate_of", decision.DuplicateOf)
			return decision
		}
		decision.Admitted = true
		return decision
	}

	candidates := d.index.Candidates(s.bands)
	if len(candidates) > 0 {
		decision.SharedBands = d.sharedBands(s.bands)
	}
	best, bestSim := "", -1.0
	for _, c := range candidates {
		sim, err := minhash.EstimateJaccard(s.sig, d.reps[c])
		if err != nil {
			continue
		}
		if sim > bestSim {
			best, bestSim = c, sim
		}
	}
	if best != "" {
		decision.Similarity = bestSim
		if bestSim >= d.opts.JaccardThreshold {
			decision.DuplicateOf = best
			d.logger.Debug("verified duplicate", "id", id, "duplicate_of", best, "similarity", bestSim)
			return decision
		}
		d.logger.Debug("candidate below threshold", "id", id, "candidate", best, "similarity", bestSim)
	}

	d.index.Claim(s.bands, id)
	d.reps[id] = s.sig
	decision.Admitted = true
	return decision
}

func (d *Deduplicator) sharedBands(bands []lsh.Band) int {
	n := 0
	for _, b := range bands {
		if _, ok := d.index.Lookup(b); ok {
			n++
		}
	}
	return n
}

// Admitted returns the IDs of admitted documents in input order.
func Admitted(decisions []Decision) []string {
	ids := make([]string, 0, len(decisions))
	for _, dec := range decisions {
		if dec.Admitted {
			ids = append(ids, dec.ID)
		}
	}
	return ids
}

// Process runs a fresh near-duplicate pipeline over docs and returns the
// admitted document IDs in input order.
func Process(ctx context.Context, docs []model.Document, opts Options) ([]string, error) {
	d, err := New(opts)
	if err != nil {
		return nil, err
	}
	decisions, err := d.Decide(ctx, docs)
	if err != nil {
		return nil, err
	}
	return Admitted(decisions), nil
}

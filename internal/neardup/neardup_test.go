package neardup

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/corpusdedup/internal/lsh"
	"github.com/nao1215/corpusdedup/internal/model"
)

// words returns "prefix<from> ... prefix<to-1>".
func words(prefix string, from, to int) string {
	parts := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		parts = append(parts, fmt.Sprintf("%s%d", prefix, i))
	}
	return strings.Join(parts, " ")
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*Options) {}},
		{name: "hashes not divisible by bands", mutate: func(o *Options) { o.NumHashes = 101 }, wantErr: lsh.ErrBandShape},
		{name: "zero bands", mutate: func(o *Options) { o.NumBands = 0 }, wantErr: lsh.ErrBandShape},
		{name: "zero hashes", mutate: func(o *Options) { o.NumHashes = 0 }, wantErr: lsh.ErrBandShape},
		{name: "zero ngram", mutate: func(o *Options) { o.NGramSize = 0 }, wantErr: ErrInvalidNGramSize},
		{name: "threshold above one", mutate: func(o *Options) { o.JaccardThreshold = 1.5 }, wantErr: ErrInvalidThreshold},
		{name: "negative threshold", mutate: func(o *Options) { o.JaccardThreshold = -0.1 }, wantErr: ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			tt.mutate(&opts)

			_, err := New(opts)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProcessIdenticalPairIsOrderSensitive(t *testing.T) {
	t.Parallel()

	text := "the quick brown fox jumps over the lazy dog near the river bank"
	docA := model.Document{ID: "a.txt", Text: text}
	docB := model.Document{ID: "b.txt", Text: text}

	got, err := Process(context.Background(), []model.Document{docA, docB}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.txt"}) {
		t.Errorf("got %v, expected [a.txt]", got)
	}

	got, err = Process(context.Background(), []model.Document{docB, docA}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"b.txt"}) {
		t.Errorf("got %v, expected [b.txt]", got)
	}
}

func TestProcessDistinctDocumentsAreAllKept(t *testing.T) {
	t.Parallel()

	docs := make([]model.Document, 0, 20)
	expected := make([]string, 0, 20)
	for i := range 20 {
		id := fmt.Sprintf("doc%02d", i)
		docs = append(docs, model.Document{ID: id, Text: words(fmt.Sprintf("t%d_", i), 0, 40)})
		expected = append(expected, id)
	}

	opts := DefaultOptions()
	opts.Workers = 3
	got, err := Process(context.Background(), docs, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	t.Parallel()

	docs := []model.Document{
		{ID: "1", Text: words("alpha", 0, 30)},
		{ID: "2", Text: words("alpha", 0, 30)},
		{ID: "3", Text: words("beta", 0, 30)},
		{ID: "4", Text: words("gamma", 0, 30)},
		{ID: "5", Text: words("beta", 0, 30)},
	}

	first, err := Process(context.Background(), docs, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, []string{"1", "3", "4"}) {
		t.Fatalf("first run: got %v", first)
	}

	byID := make(map[string]model.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	survivors := make([]model.Document, 0, len(first))
	for _, id := range first {
		survivors = append(survivors, byID[id])
	}

	second, err := Process(context.Background(), survivors, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(second, first) {
		t.Errorf("second run: got %v, expected %v", second, first)
	}
}

func TestDecideEmptyDocumentsCollide(t *testing.T) {
	t.Parallel()

	d, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decisions, err := d.Decide(context.Background(), []model.Document{
		{ID: "empty", Text: ""},
		{ID: "short", Text: "too short"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decisions[0].Admitted {
		t.Error("expected first empty document to be admitted")
	}
	if decisions[1].Admitted || decisions[1].DuplicateOf != "empty" {
		t.Errorf("expected short document to duplicate empty, got %+v", decisions[1])
	}
	if decisions[1].SharedBands != 10 {
		t.Errorf("expected all 10 bands shared, got %d", decisions[1].SharedBands)
	}
	if decisions[0].Shingles != 0 || decisions[1].Shingles != 0 {
		t.Error("expected zero shingles for degenerate documents")
	}
}

func TestDecideVerify(t *testing.T) {
	t.Parallel()

	// One row per band: any agreeing signature position makes a candidate.
	opts := Options{
		NumHashes:        100,
		NumBands:         100,
		NGramSize:        1,
		JaccardThreshold: 0.9,
		Verify:           true,
	}

	t.Run("candidate below threshold is kept", func(t *testing.T) {
		t.Parallel()

		d, err := New(opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		decisions, err := d.Decide(context.Background(), []model.Document{
			{ID: "a", Text: words("w", 0, 20)},
			{ID: "b", Text: words("w", 10, 30)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		b := decisions[1]
		if !b.Admitted {
			t.Fatalf("expected b to be admitted, got %+v", b)
		}
		if b.SharedBands == 0 {
			t.Error("expected b to share bands with a")
		}
		if b.Similarity <= 0 || b.Similarity >= opts.JaccardThreshold {
			t.Errorf("expected similarity in (0, %v), got %v", opts.JaccardThreshold, b.Similarity)
		}
	})

	t.Run("identical candidate is dropped", func(t *testing.T) {
		t.Parallel()

		d, err := New(opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		decisions, err := d.Decide(context.Background(), []model.Document{
			{ID: "a", Text: words("w", 0, 20)},
			{ID: "b", Text: words("w", 10, 30)},
			{ID: "c", Text: words("w", 10, 30)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		c := decisions[2]
		if c.Admitted || c.DuplicateOf != "b" || c.Similarity != 1 {
			t.Errorf("expected c to duplicate b with similarity 1, got %+v", c)
		}
		if !reflect.DeepEqual(Admitted(decisions), []string{"a", "b"}) {
			t.Errorf("got %v", Admitted(decisions))
		}
	})

	t.Run("default policy drops on any shared band", func(t *testing.T) {
		t.Parallel()

		o := opts
		o.Verify = false
		got, err := Process(context.Background(), []model.Document{
			{ID: "a", Text: words("w", 0, 20)},
			{ID: "b", Text: words("w", 10, 30)},
		}, o)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("got %v, expected [a]", got)
		}
	})
}

func TestDecideAcrossChunks(t *testing.T) {
	t.Parallel()

	d, err := New(DefaultOptions(), WithChunkSize(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []model.Document{
		{ID: "1", Text: words("x", 0, 10)},
		{ID: "2", Text: words("y", 0, 10)},
		{ID: "3", Text: words("z", 0, 10)},
		{ID: "4", Text: words("x", 0, 10)},
		{ID: "5", Text: words("y", 0, 10)},
	}
	decisions, err := d.Decide(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decisions) != len(docs) {
		t.Fatalf("expected %d decisions, got %d", len(docs), len(decisions))
	}
	if decisions[3].DuplicateOf != "1" || decisions[4].DuplicateOf != "2" {
		t.Errorf("unexpected duplicates: %+v %+v", decisions[3], decisions[4])
	}
	if d.IndexSize() != 30 {
		t.Errorf("expected 30 claimed buckets, got %d", d.IndexSize())
	}
}

func TestDecideCanceled(t *testing.T) {
	t.Parallel()

	d, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.Decide(ctx, []model.Document{{ID: "x", Text: words("w", 0, 10)}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

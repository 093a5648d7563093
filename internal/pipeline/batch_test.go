package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/corpusdedup/internal/model"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("default concurrency is 10", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != 10 {
			t.Errorf("expected concurrency 10, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != 10 {
			t.Errorf("expected concurrency 10, got %d", bp.concurrency)
		}

		bp = NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(3))
		if bp.concurrency != 3 {
			t.Errorf("expected concurrency 3, got %d", bp.concurrency)
		}
	})
}

// TestBatchProcessorProcessBatch tests batch preprocessing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline {
		p := New()
		p.AddSteps(
			NewTransformStep("upper", func(s string) (string, error) {
				if strings.Contains(s, "broken") {
					return "", errors.New("cannot transform")
				}
				return strings.ToUpper(s), nil
			}),
			NewFilterStep("non_empty", func(s string) bool {
				return strings.TrimSpace(s) != ""
			}),
		)
		return p
	}

	docs := make([]model.Document, 0, 12)
	for i := range 10 {
		docs = append(docs, model.NewDocument(fmt.Sprintf("doc%d.txt", i), fmt.Sprintf("text %d", i)))
	}
	docs = append(docs,
		model.NewDocument("blank.txt", "   "),
		model.NewDocument("broken.txt", "broken"),
	)

	bp := NewBatchProcessor(factory, WithConcurrency(4))
	out, err := bp.ProcessBatch(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Kept) != 10 {
		t.Fatalf("expected 10 kept documents, got %d", len(out.Kept))
	}
	for i, d := range out.Kept {
		if d.ID != fmt.Sprintf("doc%d.txt", i) {
			t.Errorf("kept %d: unexpected order %s", i, d.ID)
		}
		if d.Text != fmt.Sprintf("TEXT %d", i) {
			t.Errorf("kept %d: expected transformed text, got %q", i, d.Text)
		}
	}
	if !reflect.DeepEqual(out.Dropped, []string{"blank.txt"}) {
		t.Errorf("unexpected dropped: %v", out.Dropped)
	}
	if len(out.Failed) != 1 || out.Failed[0].ID != "broken.txt" || out.Failed[0].Stage != "upper" {
		t.Errorf("unexpected failures: %+v", out.Failed)
	}
	if docs[0].Text != "text 0" {
		t.Error("input documents must not be modified")
	}
}

// TestBatchProcessorCanceled tests that cancellation aborts the batch.
func TestBatchProcessorCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bp := NewBatchProcessor(func() *Pipeline { return New() })
	_, err := bp.ProcessBatch(ctx, []model.Document{model.NewDocument("a.txt", "a")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

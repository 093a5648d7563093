package minhash

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/nao1215/corpusdedup/internal/shingle"
)

func TestNewSigner(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive length", func(t *testing.T) {
		t.Parallel()
		for _, n := range []int{0, -1} {
			if _, err := NewSigner(n); !errors.Is(err, ErrInvalidNumHashes) {
				t.Errorf("NewSigner(%d): expected ErrInvalidNumHashes, got %v", n, err)
			}
		}
	})

	t.Run("reports length", func(t *testing.T) {
		t.Parallel()
		s, err := NewSigner(64)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.NumHashes() != 64 {
			t.Errorf("expected 64, got %d", s.NumHashes())
		}
	})
}

func TestSignEmptySet(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 10, 100} {
		s, err := NewSigner(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sig := s.Sign(shingle.Set{})
		if len(sig) != n {
			t.Errorf("expected length %d, got %d", n, len(sig))
		}
		if !sig.IsEmpty() {
			t.Errorf("expected all zeros, got %v", sig)
		}
	}
}

func TestSignLength(t *testing.T) {
	t.Parallel()

	sets := []shingle.Set{
		shingle.NewSet("a"),
		shingle.NewSet("a b", "b c", "c d"),
		shingle.Shingle("the quick brown fox jumps over the lazy dog", 3),
	}
	for _, n := range []int{1, 7, 100, 256} {
		s, err := NewSigner(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, set := range sets {
			sig := s.Sign(set)
			if len(sig) != n {
				t.Errorf("expected length %d, got %d", n, len(sig))
			}
			if sig.IsEmpty() {
				t.Error("non-empty set produced the empty sentinel")
			}
		}
	}
}

func TestSignDeterministic(t *testing.T) {
	t.Parallel()

	set := shingle.Shingle("lorem ipsum dolor sit amet consectetur adipiscing elit", 2)

	a, _ := NewSigner(128)
	b, _ := NewSigner(128)
	if !a.Sign(set).Equal(b.Sign(set)) {
		t.Error("expected identical signatures from identically configured signers")
	}

	seeded, _ := NewSigner(128, WithSeed(42))
	if seeded.Sign(set).Equal(a.Sign(set)) {
		t.Error("expected a different seed to select a different hash family")
	}
}

func TestSignIsMinimum(t *testing.T) {
	t.Parallel()

	s, _ := NewSigner(32)
	x := s.Sign(shingle.NewSet("x"))
	y := s.Sign(shingle.NewSet("y"))
	xy := s.Sign(shingle.NewSet("x", "y"))

	for i := range xy {
		want := min(x[i], y[i])
		if xy[i] != want {
			t.Errorf("position %d: got %d, expected %d", i, xy[i], want)
		}
	}
}

func TestEstimateJaccard(t *testing.T) {
	t.Parallel()

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := EstimateJaccard(Signature{1, 2}, Signature{1})
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("expected ErrLengthMismatch, got %v", err)
		}
	})

	t.Run("counts agreeing positions", func(t *testing.T) {
		t.Parallel()
		got, err := EstimateJaccard(Signature{1, 2, 3, 4}, Signature{1, 0, 3, 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0.5 {
			t.Errorf("expected 0.5, got %v", got)
		}
	})

	t.Run("approximates true similarity", func(t *testing.T) {
		t.Parallel()

		a := shingle.Set{}
		b := shingle.Set{}
		for i := range 150 {
			a[fmt.Sprintf("s%d", i)] = struct{}{}
		}
		for i := 50; i < 200; i++ {
			b[fmt.Sprintf("s%d", i)] = struct{}{}
		}
		exact := shingle.Jaccard(a, b) // 100 / 200

		s, _ := NewSigner(512)
		est, err := EstimateJaccard(s.Sign(a), s.Sign(b))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(est-exact) > 0.1 {
			t.Errorf("estimate %v too far from exact %v", est, exact)
		}
	})
}

package shingle

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Set is a set of shingles. Order is irrelevant, duplicates collapse.
type Set map[string]struct{}

// NewSet creates a Set holding the given shingles.
func NewSet(shingles ...string) Set {
	s := make(Set, len(shingles))
	for _, sh := range shingles {
		s[sh] = struct{}{}
	}
	return s
}

// Len returns the number of distinct shingles.
func (s Set) Len() int {
	return len(s)
}

// Contains reports whether the shingle is in the set.
func (s Set) Contains(shingle string) bool {
	_, ok := s[shingle]
	return ok
}

// Sorted returns the shingles in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for sh := range s {
		out = append(out, sh)
	}
	sort.Strings(out)
	return out
}

// Shingle returns the set of all n-token windows of the normalized text.
// Text with fewer than n tokens yields an empty set, as does n <= 0.
func Shingle(text string, n int) Set {
	if n <= 0 {
		return Set{}
	}

	tokens := Tokenize(text)
	if len(tokens) < n {
		return Set{}
	}

	set := make(Set, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return set
}

// Tokenize normalizes text and splits it into tokens.
func Tokenize(text string) []string {
	// Casers keep state between calls, so one is created per call.
	lowered := cases.Lower(language.Und).String(text)
	return strings.Fields(strings.Map(keepWordRune, lowered))
}

// keepWordRune maps punctuation and symbols to a space.
func keepWordRune(r rune) rune {
	if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return r
	}
	return ' '
}

// Jaccard returns |a ∩ b| / |a ∪ b|.
// Two empty sets are identical and have similarity 1.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for sh := range small {
		if _, ok := large[sh]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

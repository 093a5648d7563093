package linededup

import (
	"strings"
	"sync"
)

// FrequencyTable counts exact line occurrences across a whole corpus.
// Add and Merge are safe for concurrent use.
type FrequencyTable struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewFrequencyTable creates an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		counts: make(map[string]int),
	}
}

// Add counts each line once.
func (t *FrequencyTable) Add(lines []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range lines {
		t.counts[line]++
	}
}

// Merge adds a locally accumulated count map into the table.
func (t *FrequencyTable) Merge(local map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for line, n := range local {
		t.counts[line] += n
	}
}

// Count returns how often line occurred.
func (t *FrequencyTable) Count(line string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[line]
}

// Len returns the number of distinct lines.
func (t *FrequencyTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.counts)
}

// Unique reports whether line occurred exactly once.
func (t *FrequencyTable) Unique(line string) bool {
	return t.Count(line) == 1
}

// SplitLines splits text after every '\n'. Terminators stay attached to
// their line, and a final line without a terminator is returned as is.
// Joining the result reproduces the input exactly.
func SplitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

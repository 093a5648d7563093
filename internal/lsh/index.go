package lsh

import "sync"

// Index maps bucket keys to the document that claimed them first.
// All methods are safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	buckets map[Band]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		buckets: make(map[Band]string),
	}
}

// Len returns the number of claimed buckets.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.buckets)
}

// Lookup returns the owner of a bucket.
func (x *Index) Lookup(b Band) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	owner, ok := x.buckets[b]
	return owner, ok
}

// Candidates returns the distinct owners of the given bands in band order.
func (x *Index) Candidates(bands []Band) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.candidatesLocked(bands)
}

// Claim assigns every unclaimed band to owner and returns how many were
// claimed. Bands that already have an owner keep it.
func (x *Index) Claim(bands []Band, owner string) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.claimLocked(bands, owner)
}

// ClaimIfAbsent claims all bands for owner only when none of them is
// claimed yet. Otherwise nothing changes and the owners of the shared
// bands are returned in band order.
func (x *Index) ClaimIfAbsent(bands []Band, owner string) (owners []string, claimed bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if shared := x.candidatesLocked(bands); len(shared) > 0 {
		return shared, false
	}
	x.claimLocked(bands, owner)
	return nil, true
}

func (x *Index) candidatesLocked(bands []Band) []string {
	var owners []string
	seen := make(map[string]struct{})
	for _, b := range bands {
		owner, ok := x.buckets[b]
		if !ok {
			continue
		}
		if _, dup := seen[owner]; dup {
			continue
		}
		seen[owner] = struct{}{}
		owners = append(owners, owner)
	}
	return owners
}

func (x *Index) claimLocked(bands []Band, owner string) int {
	n := 0
	for _, b := range bands {
		if _, ok := x.buckets[b]; ok {
			continue
		}
		x.buckets[b] = owner
		n++
	}
	return n
}

// Package lsh implements locality-sensitive hashing over MinHash signatures.
//
// A signature of b*r values is split into b bands of r consecutive rows.
// Each band is reduced to a 128-bit fingerprint, and the pair (band
// index, fingerprint) is a bucket key. Two documents that share any
// bucket key are near-duplicate candidates. For a Jaccard similarity s
// the probability of sharing at least one bucket is 1 - (1 - s^r)^b.
//
// Index is the run-scoped bucket table. An entry is written once and is
// never overwritten during a run.
package lsh

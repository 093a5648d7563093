// Package minhash computes MinHash signatures of shingle sets.
//
// A Signature holds one minimum hash value per hash function. For two
// sets, the probability that their values agree at a position equals
// their Jaccard similarity, so the fraction of agreeing positions is an
// unbiased estimate of it.
//
// The hash family is derived from a single keyed BLAKE2b-256 digest per
// shingle. The digest is split into two 64-bit words a and b, and hash
// function i is mix(a + i*b), where mix is the SplitMix64 finalizer.
// Every shingle is therefore hashed once regardless of the signature
// length, and the remaining work per position is a multiply and a mix.
package minhash

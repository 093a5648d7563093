// Package neardup removes near-duplicate documents with MinHash and
// locality-sensitive hashing.
//
// Each document is shingled, signed and split into bands. A run owns one
// lsh.Index; documents are admitted in input order and the first document
// to claim a bucket is the representative of everything that later lands
// in it. Signing runs in parallel, admission does not, so results are
// deterministic for a given input order.
//
// Two admission policies exist. The default drops a document as soon as
// any of its bands is already indexed. With Verify set, a document sharing
// bands is compared against each representative's signature and dropped
// only when the estimated Jaccard similarity reaches JaccardThreshold.
package neardup

// Package main provides the entry point for the corpusdedup CLI.
//
// corpusdedup removes duplicated text from document corpora. It has two
// modes: exact line deduplication across the corpus, and near-duplicate
// document removal with MinHash and locality-sensitive hashing.
//
// Usage:
//
//	corpusdedup lines -o OUT inputs...
//	corpusdedup minhash -o OUT inputs...
//
// See --help for all available options.
package main

// main is the entry point for corpusdedup.
func main() {
	Execute()
}

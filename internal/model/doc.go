// Package model defines the core data structures shared across corpusdedup.
//
// This package contains the following main types:
//   - Document: A single corpus document read from an input source
//   - Failure: A document that could not be read or preprocessed
//   - DocumentResult: The per-document outcome of a deduplication run
//   - RunReport: The full result of one run, serialized to reports and history
//   - Summary: A condensed view of a RunReport for terminal output
//
// Models live in their own package so the corpus, dedup, report and
// database packages can share them without import cycles.
package model

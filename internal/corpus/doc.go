// Package corpus reads input documents from the filesystem and writes
// deduplicated artifacts back out.
//
// Reading is concurrent but results keep the order of the input paths.
// A file that cannot be read, is too large or is not valid UTF-8 becomes
// a model.Failure and the rest of the corpus is still processed.
//
// Artifacts are named by the base name of their source, so two inputs
// with the same base name would overwrite each other. CheckOutputNames
// rejects such inputs before anything is read.
package corpus

// Package log provides the corpusdedup logger, built on top of the
// standard slog package.
//
// Deduplication logs talk about documents, and documents can be large.
// The ElidingHandler keeps corpus text out of log output:
//   - Attributes named like document content (text, content, line, lines,
//     body, html) are replaced by a size summary such as "<2048 bytes, 31 lines>"
//   - Any other string longer than MaxValueLength is truncated
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("duplicate", "id", doc.ID, "text", doc.Text) // text is summarized
//	slog.SetDefault(logger)
package log

// Package linededup removes boilerplate lines from a corpus.
//
// A line is boilerplate when it occurs more than once anywhere in the
// corpus, counting every occurrence in every document. Boilerplate lines
// are removed from every document they appear in; no single copy is kept.
// Repeated short sentences are removed along with headers, footers and
// legal notices.
//
// Deduplication runs in two phases separated by a full barrier: the
// count phase observes every document before the filter phase looks at
// any of them, because a later document can turn an earlier document's
// line into boilerplate.
package linededup

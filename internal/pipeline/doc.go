// Package pipeline provides a framework for preprocessing documents in
// sequence before deduplication.
//
// Each document flows through an ordered list of Steps: HTML extraction,
// Unicode normalization, language filtering and any external text -> text
// or text -> bool collaborator. A Step may rewrite the document text or
// reject the document by returning ErrDrop.
//
// Steps never see more than one document, so documents are processed in
// parallel by the BatchProcessor using errgroup, while results keep the
// input order.
package pipeline

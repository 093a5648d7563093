package model

import "path/filepath"

// Document is one input document of a corpus.
// A Document is read once, then either emitted unchanged or dropped.
// Preprocessing steps may replace Text before deduplication starts.
type Document struct {
	// ID is the stable source identifier, normally the input path as given.
	ID string `json:"id"`

	// Path is the filesystem path the document was read from.
	// It is empty for documents that did not come from a file.
	Path string `json:"path,omitempty"`

	// Text is the raw text content.
	Text string `json:"-"`
}

// NewDocument creates a Document whose ID and Path are the given path.
func NewDocument(path, text string) Document {
	return Document{
		ID:   path,
		Path: path,
		Text: text,
	}
}

// OutputName returns the artifact name for the document.
// Artifacts are keyed by the base name of the source.
func (d Document) OutputName() string {
	if d.Path != "" {
		return filepath.Base(d.Path)
	}
	return filepath.Base(d.ID)
}

// Failure records a document that was skipped because it could not be
// read or preprocessed. A failure never aborts a run.
type Failure struct {
	// ID is the identifier of the failed document.
	ID string `json:"id"`

	// Stage names where the failure happened (for example "read" or "html_extract").
	Stage string `json:"stage"`

	// Error is the error message.
	Error string `json:"error"`
}

// NewFailure creates a Failure from an error.
func NewFailure(id, stage string, err error) Failure {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Failure{
		ID:    id,
		Stage: stage,
		Error: msg,
	}
}

package corpus

import "errors"

// Sentinel errors for corpus I/O.
var (
	// ErrInputNotFound is returned when an input path does not exist.
	ErrInputNotFound = errors.New("input path not found")

	// ErrNoInputs is returned when no input files remain after collection.
	ErrNoInputs = errors.New("no input files")

	// ErrNameCollision is returned when two inputs map to the same output name.
	ErrNameCollision = errors.New("output name collision")

	// ErrTooLarge is returned when a file exceeds the configured size limit.
	ErrTooLarge = errors.New("document exceeds size limit")

	// ErrInvalidUTF8 is returned when a file is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("document is not valid UTF-8")

	// ErrOutputDirRequired is returned when no output directory is given.
	ErrOutputDirRequired = errors.New("output directory is required")
)

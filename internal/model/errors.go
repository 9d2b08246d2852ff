package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// ErrCorpusUnavailable distinguishes "no data source loaded" from an
	// empty-but-successful retrieval.
	ErrCorpusUnavailable = errors.New("no conversation data loaded")

	// ErrExtractionRunning rejects a second concurrent batch start.
	ErrExtractionRunning = errors.New("a topic extraction run is already in progress")
)

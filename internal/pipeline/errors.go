package pipeline

import "errors"

var (
	// ErrNoLastResult is returned when a blind-mode re-analysis is requested
	// but no single-document result is on display.
	ErrNoLastResult = errors.New("no single-document analysis to re-run")
)

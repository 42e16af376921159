// Package ingestion turns lesson index HTML into a content inventory.
package ingestion

import (
	"errors"
	"fmt"
)

// ErrNoItems is returned when a page yields no lesson titles
var ErrNoItems = errors.New("no content items found")

// ExtractionError represents an error while reading or extracting a lesson page
type ExtractionError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.Source, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

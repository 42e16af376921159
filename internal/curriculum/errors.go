// Package curriculum loads curriculum and content documents from disk or raw bytes.
package curriculum

import "fmt"

// LoadError represents an error during file I/O or JSON parsing
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ShapeError reports a document that parsed as JSON but lacks its required
// top-level key.
type ShapeError struct {
	Document string
	Key      string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s document: missing top-level %q", e.Document, e.Key)
}

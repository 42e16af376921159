package curriculum

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/curriculum-coverage/internal/types"
)

const (
	documentCurriculum = "curriculum"
	documentContent    = "content"
)

// LoadCurriculum loads a curriculum document from a JSON file
func LoadCurriculum(path string) (*types.CurriculumDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseCurriculum(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return doc, nil
}

// ParseCurriculum parses curriculum JSON. The "subjects" key must be present
// and hold an object; everything below it degrades to defaults.
func ParseCurriculum(data []byte) (*types.CurriculumDocument, error) {
	raw, err := requireKey(data, documentCurriculum, "subjects")
	if err != nil {
		return nil, err
	}

	var subjects map[string]types.CurriculumSubject
	if err := json.Unmarshal(raw, &subjects); err != nil {
		return nil, &LoadError{Message: "failed to unmarshal curriculum subjects", Cause: err}
	}

	return &types.CurriculumDocument{Subjects: subjects}, nil
}

// LoadContent loads a content inventory from a JSON file
func LoadContent(path string) (*types.ContentDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseContent(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return doc, nil
}

// ParseContent parses content JSON. The "content" key must be present and hold
// an array of objects.
func ParseContent(data []byte) (*types.ContentDocument, error) {
	raw, err := requireKey(data, documentContent, "content")
	if err != nil {
		return nil, err
	}

	var items []types.ContentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &LoadError{Message: "failed to unmarshal content items", Cause: err}
	}
	if items == nil {
		items = []types.ContentItem{}
	}

	return &types.ContentDocument{Content: items}, nil
}

// requireKey decodes the top-level object and returns the raw value of key.
// A missing or null key is a ShapeError.
func requireKey(data []byte, document, key string) (json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to unmarshal %s JSON", document), Cause: err}
	}

	raw, ok := top[key]
	if !ok || string(raw) == "null" {
		return nil, &ShapeError{Document: document, Key: key}
	}
	return raw, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}
	return data, nil
}

func withPath(err error, path string) error {
	if loadErr, ok := err.(*LoadError); ok && loadErr.Path == "" {
		loadErr.Path = path
		loadErr.Message = fmt.Sprintf("%s (%s)", loadErr.Message, path)
	}
	return err
}

// Package schemas provides JSON Schema validation for curriculum, content and
// coverage report documents.
package schemas

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Kind names one of the documents this package knows a schema for
type Kind string

const (
	KindCurriculum Kind = "curriculum"
	KindContent    Kind = "content"
	KindReport     Kind = "report"
)

var schemaNames = map[Kind]string{
	KindCurriculum: "curriculum.schema.json",
	KindContent:    "content.schema.json",
	KindReport:     "coverage_report.schema.json",
}

// Kinds returns every supported document kind
func Kinds() []Kind {
	return []Kind{KindCurriculum, KindContent, KindReport}
}

// ParseKind converts a CLI or API string into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schemaNames[k]; !ok {
		return "", fmt.Errorf("unknown document kind %q (expected curriculum, content or report)", s)
	}
	return k, nil
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Kind   Kind
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Kind != "" {
		sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Kind))
	} else {
		sb.WriteString("validation failed:\n")
	}
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Schema returns the embedded schema text for kind
func Schema(kind Kind) (string, error) {
	name, ok := schemaNames[kind]
	if !ok {
		return "", &SchemaLoadError{Path: string(kind), Message: "unknown document kind"}
	}
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return "", &SchemaLoadError{Path: name, Message: "embedded schema missing", Cause: err}
	}
	return string(data), nil
}

// ValidateDocument validates raw JSON bytes against the embedded schema for kind
func ValidateDocument(kind Kind, data []byte) error {
	schema, err := Schema(kind)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaNames[kind],
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if verr := toValidationError(result); verr != nil {
		verr.Kind = kind
		return verr
	}
	return nil
}

// ValidateFile validates a JSON file on disk against the embedded schema for kind
func ValidateFile(kind Kind, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", absPath)
		}
		return fmt.Errorf("failed to read JSON file: %w", err)
	}

	return ValidateDocument(kind, data)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if verr := toValidationError(result); verr != nil {
		return verr
	}
	return nil
}

func toValidationError(result *gojsonschema.Result) *ValidationError {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// Package schemas validates stage output artifacts against embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/research-lab/internal/types"
)

//go:embed *.json
var schemaFS embed.FS

// schemaFiles maps each pipeline stage to its embedded schema file.
var schemaFiles = map[string]string{
	types.StageProblemFinder:       "problem_finder.json",
	types.StageHypothesisGenerator: "hypothesis_generator.json",
	types.StageExperimentDesigner:  "experiment_designer.json",
	types.StageDataAnalyst:         "data_analyst.json",
	types.StagePaperWriter:         "paper_writer.json",
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*gojsonschema.Schema{}
)

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Stage  string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s output failed validation:\n", ve.Stage))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself.
type SchemaLoadError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema for %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema for %s: %s", e.Stage, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func schemaFor(stage string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[stage]; ok {
		return s, nil
	}

	name, ok := schemaFiles[stage]
	if !ok {
		return nil, &SchemaLoadError{Stage: stage, Message: "no schema registered for stage"}
	}

	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, &SchemaLoadError{Stage: stage, Message: "embedded schema missing", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Stage: stage, Message: "schema failed to compile", Cause: err}
	}

	compiled[stage] = schema
	return schema, nil
}

// Validate checks a serialized stage output against the schema for that stage.
// A nil return means the document satisfies the schema.
func Validate(stage string, data []byte) error {
	schema, err := schemaFor(stage)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{Stage: stage, Message: "document could not be validated", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Stage: stage}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}

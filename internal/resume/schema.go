package resume

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed record.schema.json
var recordSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// FieldError is a single shape violation at a JSON path
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ShapeError lists every shape violation found in a document
type ShapeError struct {
	Errors []FieldError
}

func (e *ShapeError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid resume record:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(recordSchema))
	})
	return schema, schemaErr
}

// ValidateShape checks a JSON document against the record schema. Missing
// collections are accepted; wrong types are not.
func ValidateShape(doc []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile record schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate record: %w", err)
	}
	if result.Valid() {
		return nil
	}

	shapeErr := &ShapeError{}
	for _, re := range result.Errors() {
		shapeErr.Errors = append(shapeErr.Errors, FieldError{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return shapeErr
}

// Decode validates doc and unmarshals it into a normalized Record
func Decode(doc []byte) (Record, error) {
	if err := ValidateShape(doc); err != nil {
		return Record{}, err
	}
	var r Record
	if err := json.Unmarshal(doc, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode resume record: %w", err)
	}
	return r.Normalize(), nil
}

// DecodePartial validates doc and unmarshals it into a PartialRecord
func DecodePartial(doc []byte) (PartialRecord, error) {
	if err := ValidateShape(doc); err != nil {
		return PartialRecord{}, err
	}
	var p PartialRecord
	if err := json.Unmarshal(doc, &p); err != nil {
		return PartialRecord{}, fmt.Errorf("failed to decode partial record: %w", err)
	}
	return p, nil
}

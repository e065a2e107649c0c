package validation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaValidator validates JSON documents against compiled JSON schemas
type SchemaValidator interface {
	// Register compiles a schema document under a name for later use
	Register(name string, schema []byte) error
	// Validate checks data against a registered schema
	Validate(name string, data []byte) error
	// ValidateFile reads dataPath and checks it against a registered schema
	ValidateFile(name, dataPath string) error
}

type validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// NewSchemaValidator creates an empty schema validator
func NewSchemaValidator() SchemaValidator {
	return &validator{schemas: make(map[string]*jsonschema.Schema)}
}

func (v *validator) Register(name string, schema []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

func (v *validator) Validate(name string, data []byte) error {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSchemaNotRegistered, name)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func (v *validator) ValidateFile(name, dataPath string) error {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read data file %s: %w", dataPath, err)
	}
	return v.Validate(name, data)
}

// ErrSchemaNotRegistered is returned when validating against an unknown schema name
var ErrSchemaNotRegistered = errors.New("schema not registered")

// formatValidationError flattens nested validation causes into one line per failure
func formatValidationError(err error) error {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		var lines []string
		collectErrors(validationErr, &lines)
		return fmt.Errorf("schema validation failed:\n%s", strings.Join(lines, "\n"))
	}
	return fmt.Errorf("validation error: %w", err)
}

func collectErrors(err *jsonschema.ValidationError, lines *[]string) {
	if len(err.Causes) == 0 {
		location := "/" + strings.Join(err.InstanceLocation, "/")
		keywords := ""
		if err.ErrorKind != nil {
			keywords = strings.Join(err.ErrorKind.KeywordPath(), ".")
		}
		if keywords != "" {
			*lines = append(*lines, fmt.Sprintf("  - at %s: %s validation failed", location, keywords))
		} else {
			*lines = append(*lines, fmt.Sprintf("  - at %s: validation failed", location))
		}
	}
	for _, cause := range err.Causes {
		collectErrors(cause, lines)
	}
}

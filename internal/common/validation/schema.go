// Package validation holds the JSON schemas for generation documents and
// workflow definitions and validates payloads against them.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// GenerationDocumentSchema describes the job payload accepted by the compile
// worker. Ecosystem specific fields pass through unchecked.
const GenerationDocumentSchema = `{
  "type": "object",
  "required": ["prompt"],
  "anyOf": [
    {"required": ["ecosystem"]},
    {"required": ["workflow"]}
  ],
  "properties": {
    "requestId": {"type": "string"},
    "workflow": {"type": "string", "minLength": 1},
    "ecosystem": {"type": "string", "minLength": 1},
    "baseModel": {"type": "string"},
    "prompt": {"type": "string"},
    "negativePrompt": {"type": "string"},
    "seed": {"type": "integer", "minimum": 0},
    "quantity": {"type": "integer", "minimum": 1, "maximum": 20},
    "aspectRatio": {
      "type": "object",
      "required": ["width", "height"],
      "properties": {
        "width": {"type": "integer", "minimum": 1},
        "height": {"type": "integer", "minimum": 1},
        "value": {"type": "string"}
      }
    },
    "model": {"$ref": "#/definitions/resource"},
    "resources": {
      "type": "array",
      "items": {"$ref": "#/definitions/resource"}
    },
    "images": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["url"],
        "properties": {"url": {"type": "string", "minLength": 1}}
      }
    }
  },
  "definitions": {
    "resource": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "integer", "minimum": 1},
        "baseModel": {"type": "string"},
        "strength": {"type": "number"},
        "epochNumber": {"type": "integer"},
        "model": {
          "type": "object",
          "properties": {
            "id": {"type": "integer"},
            "type": {"type": "string"}
          }
        },
        "trainedWords": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// WorkflowDefinitionSchema describes a published workflow template.
const WorkflowDefinitionSchema = `{
  "type": "object",
  "required": ["key", "type", "name", "template"],
  "properties": {
    "key": {"type": "string", "pattern": "^[a-z0-9][a-z0-9:_-]*$"},
    "type": {"type": "string", "enum": ["txt2img", "img2img", "vid2vid"]},
    "name": {"type": "string", "minLength": 1},
    "template": {"type": "string", "minLength": 2}
  }
}`

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*gojsonschema.Schema{}
)

func compiled(schemaJSON string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := schemaCache[schemaJSON]; ok {
		return s, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCache[schemaJSON] = s
	return s, nil
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateJSON validates a raw JSON document against schemaJSON.
func ValidateJSON(schemaJSON string, document []byte) (*ValidationResult, error) {
	return validate(schemaJSON, gojsonschema.NewBytesLoader(document))
}

// ValidateValue validates a Go value (maps, slices, structs) against schemaJSON.
func ValidateValue(schemaJSON string, value interface{}) (*ValidationResult, error) {
	return validate(schemaJSON, gojsonschema.NewGoLoader(value))
}

func validate(schemaJSON string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	schema, err := compiled(schemaJSON)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Summary joins all error messages into one line.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

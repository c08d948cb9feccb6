package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator checks inbound API payloads against JSON schemas before
// they reach struct binding. Schemas are compiled once at startup.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

const interactionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["user_id", "item_id", "action"],
	"properties": {
		"user_id": {"type": "string", "minLength": 1},
		"item_id": {"type": "string", "minLength": 1},
		"action": {"type": "string", "enum": ["view", "click", "like", "share", "comment"]}
	},
	"additionalProperties": false
}`

const onboardingSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["user_id", "interests"],
	"properties": {
		"user_id": {"type": "string", "minLength": 1},
		"interests": {
			"type": "array",
			"minItems": 3,
			"maxItems": 3,
			"items": {"type": "string", "minLength": 1}
		}
	},
	"additionalProperties": false
}`

const postSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "title"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"title": {"type": "string", "minLength": 1, "maxLength": 255},
		"body": {"type": "string"},
		"category": {"type": "string"},
		"author_id": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`

func NewSchemaValidator() (*SchemaValidator, error) {
	sv := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema)}

	sources := map[string]string{
		"interaction": interactionSchema,
		"onboarding":  onboardingSchema,
		"post":        postSchema,
	}
	for name, source := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
		}
		sv.schemas[name] = schema
	}
	return sv, nil
}

func (sv *SchemaValidator) ValidateInteraction(body []byte) *ValidationResult {
	return sv.validate("interaction", body)
}

func (sv *SchemaValidator) ValidateOnboarding(body []byte) *ValidationResult {
	return sv.validate("onboarding", body)
}

func (sv *SchemaValidator) ValidatePost(body []byte) *ValidationResult {
	return sv.validate("post", body)
}

func (sv *SchemaValidator) validate(name string, body []byte) *ValidationResult {
	schema, ok := sv.schemas[name]
	if !ok {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "schema", Message: fmt.Sprintf("unknown schema: %s", name)}},
		}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "body", Message: "request body is not valid JSON"}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out
}

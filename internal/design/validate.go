package design

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/microcosm-cc/bluemonday"
)

// Mutable top-level design fields. Anything else in a field patch is dropped
// rather than rejected, matching the permissive generic-update semantics.
type fieldPatch struct {
	Name             *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string   `json:"description" validate:"omitempty,max=2000"`
	Width            *float64  `json:"width" validate:"omitempty,min=1,max=100000"`
	Height           *float64  `json:"height" validate:"omitempty,min=1,max=100000"`
	CanvasBackground *string   `json:"canvasBackground" validate:"omitempty,max=50"`
	Elements         []Element `json:"elements"`
}

// FieldValidator validates and sanitizes top-level design field patches.
// Element bodies are never validated here; they are opaque by contract.
type FieldValidator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewFieldValidator() *FieldValidator {
	return &FieldValidator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Clean checks the recognized fields of a raw patch and returns a sanitized
// copy containing only those fields.
func (v *FieldValidator) Clean(fields map[string]interface{}) (map[string]interface{}, error) {
	var patch fieldPatch
	if err := mapToStruct(fields, &patch); err != nil {
		return nil, fmt.Errorf("parse field patch: %w", err)
	}

	if err := v.validate.Struct(&patch); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid field %q", verrs[0].Field())
		}
		return nil, fmt.Errorf("validate field patch: %w", err)
	}

	clean := make(map[string]interface{})
	if patch.Name != nil {
		clean["name"] = v.sanitizer.Sanitize(*patch.Name)
	}
	if patch.Description != nil {
		clean["description"] = v.sanitizer.Sanitize(*patch.Description)
	}
	if patch.Width != nil {
		clean["width"] = int(*patch.Width)
	}
	if patch.Height != nil {
		clean["height"] = int(*patch.Height)
	}
	if patch.CanvasBackground != nil {
		color, err := normalizeColor(*patch.CanvasBackground)
		if err != nil {
			return nil, err
		}
		clean["canvasBackground"] = color
	}
	if patch.Elements != nil {
		clean["elements"] = patch.Elements
	}
	return clean, nil
}

// normalizeColor parses a hex color and returns its canonical form.
func normalizeColor(raw string) (string, error) {
	c, err := colorful.Hex(raw)
	if err != nil {
		return "", fmt.Errorf("invalid canvas background %q: %w", raw, err)
	}
	return c.Hex(), nil
}

// mapToStruct converts a map to a typed struct via a JSON round trip.
func mapToStruct(data map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// Package workflows stores named workflow graph templates and compiles them
// into concrete graphs by placeholder substitution.
package workflows

import (
	"encoding/json"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/validation"
)

type DefinitionType string

const (
	TypeTxt2Img DefinitionType = "txt2img"
	TypeImg2Img DefinitionType = "img2img"
	TypeVid2Vid DefinitionType = "vid2vid"
)

// Definition is a published workflow template. Template is JSON text whose
// string leaves may hold {{name}} or {{{name}}} placeholders.
type Definition struct {
	Key      string         `json:"key"`
	Type     DefinitionType `json:"type"`
	Name     string         `json:"name"`
	Template string         `json:"template"`
}

// Validate checks the definition shape and that the template is JSON.
func (d *Definition) Validate() error {
	result, err := validation.ValidateValue(validation.WorkflowDefinitionSchema, d)
	if err != nil {
		return apperrors.NewInvalidWorkflowDefinitionError(d.Key, err.Error())
	}
	if !result.Valid {
		return apperrors.NewInvalidWorkflowDefinitionError(d.Key, result.Summary())
	}
	if !json.Valid([]byte(d.Template)) {
		return apperrors.NewInvalidWorkflowDefinitionError(d.Key, "template is not valid JSON")
	}
	return nil
}

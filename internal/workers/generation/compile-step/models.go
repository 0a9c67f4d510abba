// internal/workers/generation/compile-step/models.go
package compilestep

import "generation-workers/internal/generation/orchestrator"

// Input is the correlation envelope of a job. The rest of the job variables
// are the generation document itself.
type Input struct {
	RequestID string `json:"requestId,omitempty"`
}

// Output is what the submission process receives.
type Output struct {
	RequestID string             `json:"requestId"`
	StepType  string             `json:"stepType"`
	Step      *orchestrator.Step `json:"step"`
}

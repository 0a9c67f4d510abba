// pkg/registry/schema.go
package registry

import "generation-workers/internal/generation/workflows"

// WorkflowRegistry is the on-disk catalogue of workflow templates that the
// publisher pushes into the template store.
type WorkflowRegistry struct {
	Version     string                 `json:"version"`
	LastUpdated string                 `json:"lastUpdated"`
	Workflows   []workflows.Definition `json:"workflows"`
}

// Find returns the definition stored under key.
func (r *WorkflowRegistry) Find(key string) (*workflows.Definition, bool) {
	for i := range r.Workflows {
		if r.Workflows[i].Key == key {
			return &r.Workflows[i], true
		}
	}
	return nil, false
}

// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func LoadRegistry(path string) (*WorkflowRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg WorkflowRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg to path, stamping LastUpdated.
func SaveRegistry(reg *WorkflowRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks every definition and rejects duplicate keys.
func (r *WorkflowRegistry) Validate() error {
	if len(r.Workflows) == 0 {
		return fmt.Errorf("registry contains no workflows")
	}
	keys := make(map[string]bool, len(r.Workflows))
	for i := range r.Workflows {
		def := &r.Workflows[i]
		if keys[def.Key] {
			return fmt.Errorf("duplicate workflow key: %s", def.Key)
		}
		keys[def.Key] = true

		if err := def.Validate(); err != nil {
			return fmt.Errorf("workflow %q: %w", def.Key, err)
		}
	}
	return nil
}

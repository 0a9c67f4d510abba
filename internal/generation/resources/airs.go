// Package resources resolves resource ids to AIRs and hydrates resource data
// from the model catalogue.
package resources

import (
	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/air"
)

// Airs maps resource version ids to their AIR strings for one request.
type Airs struct {
	byID map[int]string
}

// NewAirs indexes the given resources.
func NewAirs(resources ...generation.ResourceData) *Airs {
	a := &Airs{byID: make(map[int]string, len(resources))}
	for _, r := range resources {
		a.byID[r.ID] = air.ToAir(r)
	}
	return a
}

// ForRequest indexes the model and resources of in.
func ForRequest(in generation.Input) *Airs {
	return NewAirs(in.Common().AllResources()...)
}

// RequireHydrated fails on the first model or resource that lacks the data
// needed to build its AIR.
func RequireHydrated(in generation.Input) error {
	for _, r := range in.Common().AllResources() {
		if !r.Hydrated() {
			return apperrors.NewResourceNotResolvedError(r.ID)
		}
	}
	return nil
}

// GetOrThrow returns the AIR for id. A miss means a resource reached a
// handler without being resolved.
func (a *Airs) GetOrThrow(id int) (string, error) {
	if s, ok := a.byID[id]; ok {
		return s, nil
	}
	return "", apperrors.NewResourceNotResolvedError(id)
}

func (a *Airs) Len() int { return len(a.byID) }

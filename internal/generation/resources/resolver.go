package resources

import (
	"context"
	"fmt"
	"sort"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
)

// DataResolver supplies full resource data for version ids. Ids that do not
// exist are absent from the result.
type DataResolver interface {
	Resolve(ctx context.Context, ids []int) (map[int]generation.ResourceData, error)
}

// Hydrate fills baseModel, model and trainedWords on every resource of in
// that lacks them. Strength and epoch chosen by the caller are kept.
func Hydrate(ctx context.Context, resolver DataResolver, in generation.Input) error {
	base := in.Common()

	var missing []int
	seen := map[int]bool{}
	collect := func(r *generation.ResourceData) {
		if !r.Hydrated() && !seen[r.ID] {
			seen[r.ID] = true
			missing = append(missing, r.ID)
		}
	}
	if base.Model != nil {
		collect(base.Model)
	}
	for i := range base.Resources {
		collect(&base.Resources[i])
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Ints(missing)

	found, err := resolver.Resolve(ctx, missing)
	if err != nil {
		return err
	}

	fill := func(r *generation.ResourceData) error {
		if r.Hydrated() {
			return nil
		}
		data, ok := found[r.ID]
		if !ok {
			return apperrors.NewInvalidGenerationInputError(fmt.Sprintf("resource %d does not exist", r.ID))
		}
		r.BaseModel = data.BaseModel
		r.Model = data.Model
		if len(r.TrainedWords) == 0 {
			r.TrainedWords = data.TrainedWords
		}
		return nil
	}
	if base.Model != nil {
		if err := fill(base.Model); err != nil {
			return err
		}
	}
	for i := range base.Resources {
		if err := fill(&base.Resources[i]); err != nil {
			return err
		}
	}
	return nil
}

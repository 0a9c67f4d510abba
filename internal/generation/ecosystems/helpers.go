package ecosystems

import (
	"context"
	"fmt"
	"math/rand/v2"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/metrics"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/air"
	"generation-workers/internal/generation/comfy"
	"generation-workers/internal/generation/orchestrator"
)

func step(kind orchestrator.StepType, input interface{}) *orchestrator.Step {
	return &orchestrator.Step{Type: kind, Input: input}
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func intPtrOr(v *int, def int) int {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func requireAspectRatio(b *generation.Base) (*generation.AspectRatio, error) {
	if b.AspectRatio == nil || b.AspectRatio.Width <= 0 || b.AspectRatio.Height <= 0 {
		return nil, apperrors.NewMissingRequiredFieldError("aspectRatio", string(b.Ecosystem))
	}
	return b.AspectRatio, nil
}

func requireImages(b *generation.Base) error {
	if !b.HasImages() {
		return apperrors.NewMissingRequiredFieldError("images", string(b.Ecosystem))
	}
	return nil
}

// aspectValue is the "w:h" form of the aspect ratio, or def when absent.
func aspectValue(b *generation.Base, def string) string {
	if b.AspectRatio == nil {
		return def
	}
	if b.AspectRatio.Value != "" {
		return b.AspectRatio.Value
	}
	w, h := b.AspectRatio.Width, b.AspectRatio.Height
	if w <= 0 || h <= 0 {
		return def
	}
	g := gcd(w, h)
	return fmt.Sprintf("%d:%d", w/g, h/g)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func imageOperation(b *generation.Base) string {
	if b.HasImages() {
		return orchestrator.OperationEditImage
	}
	return orchestrator.OperationCreateImage
}

func videoOperation(b *generation.Base) string {
	if b.HasImages() {
		return orchestrator.OperationImageToVideo
	}
	return orchestrator.OperationTextToVideo
}

func firstImage(b *generation.Base) string {
	if !b.HasImages() {
		return ""
	}
	return b.Images[0].URL
}

func isLora(r generation.ResourceData) bool {
	switch air.ResourceTypeFor(r.Model.Type) {
	case air.TypeLora, air.TypeDora, air.TypeLycoris:
		return true
	}
	return false
}

// loraMap renders additional lora resources as AIR -> strength. It returns
// nil when there are none so the field is omitted.
func loraMap(rc *ResolverCtx, b *generation.Base) (map[string]float64, error) {
	var out map[string]float64
	for _, r := range b.Resources {
		if !isLora(r) {
			continue
		}
		id, err := rc.Airs.GetOrThrow(r.ID)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = map[string]float64{}
		}
		out[id] = r.StrengthOrDefault()
	}
	return out, nil
}

// loraList renders additional lora resources as an ordered list.
func loraList(rc *ResolverCtx, b *generation.Base) ([]orchestrator.LoraRef, error) {
	var out []orchestrator.LoraRef
	for _, r := range b.Resources {
		if !isLora(r) {
			continue
		}
		id, err := rc.Airs.GetOrThrow(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, orchestrator.LoraRef{Air: id, Strength: r.StrengthOrDefault()})
	}
	return out, nil
}

// comfyResources lists the model and additional resources in chain order.
func comfyResources(rc *ResolverCtx, b *generation.Base) ([]comfy.Resource, error) {
	all := b.AllResources()
	out := make([]comfy.Resource, 0, len(all))
	for _, r := range all {
		id, err := rc.Airs.GetOrThrow(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, comfy.Resource{
			AIR:         id,
			Type:        air.ResourceTypeFor(r.Model.Type),
			TriggerWord: r.TriggerWord(),
			Strength:    r.Strength,
		})
	}
	return out, nil
}

// compileComfy instantiates the workflow template key and splices resources
// into the resulting graph.
func compileComfy(ctx context.Context, rc *ResolverCtx, key string, params map[string]interface{}, resources []comfy.Resource, quantity int) (*orchestrator.Step, error) {
	raw, err := rc.Workflows.Compile(ctx, key, params)
	if err != nil {
		return nil, err
	}
	wf, err := comfy.Parse(raw)
	if err != nil {
		return nil, apperrors.NewWorkflowCompilationError(key, err)
	}

	if added := comfy.ApplyResources(wf, resources); added > 0 {
		metrics.ResourceNodesSynthesized.Add(float64(added))
	}

	return step(orchestrator.StepComfy, orchestrator.ComfyInput{
		Quantity:      quantity,
		ComfyWorkflow: wf,
	}), nil
}

func seedOrRandom(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return rand.Int64N(1 << 32)
}

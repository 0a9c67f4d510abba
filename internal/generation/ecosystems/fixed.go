package ecosystems

import (
	"context"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/orchestrator"
)

// Workflow keys with fixed builders, and the templates they compile.
const (
	WorkflowUpscale            = "img2img:upscale"
	WorkflowRemoveBackground   = "img2img:remove-background"
	WorkflowVideoInterpolation = "vid2vid:interpolate"
	WorkflowVideoUpscale       = "vid2vid:upscale"

	UpscaleTemplateKey          = "img2img-upscale"
	RemoveBackgroundTemplateKey = "img2img-background-removal"
)

const defaultInterpolationModel = "film"

func compileUpscale(ctx context.Context, in *generation.UpscaleInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	if err := requireImages(&in.Base); err != nil {
		return nil, err
	}
	src := in.Images[0]
	if in.UpscaleWidth <= 0 || in.UpscaleHeight <= 0 {
		return nil, apperrors.NewMissingRequiredFieldError("upscaleWidth", WorkflowUpscale)
	}
	resources, err := comfyResources(rc, &in.Base)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{
		"image":         src.URL,
		"upscaleWidth":  in.UpscaleWidth,
		"upscaleHeight": in.UpscaleHeight,
	}
	return compileComfy(ctx, rc, UpscaleTemplateKey, params, resources, 1)
}

func compileRemoveBackground(ctx context.Context, in *generation.RemoveBackgroundInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	if err := requireImages(&in.Base); err != nil {
		return nil, err
	}
	params := map[string]interface{}{"image": firstImage(&in.Base)}
	return compileComfy(ctx, rc, RemoveBackgroundTemplateKey, params, nil, 1)
}

func compileVideoInterpolation(_ context.Context, in *generation.VideoInterpolationInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	if in.Video == "" {
		return nil, apperrors.NewMissingRequiredFieldError("video", WorkflowVideoInterpolation)
	}
	return step(orchestrator.StepVideoInterpolation, orchestrator.VideoInterpolationInput{
		Video:               in.Video,
		InterpolationFactor: intOr(in.InterpolationFactor, 2),
		Model:               defaultInterpolationModel,
	}), nil
}

func compileVideoUpscale(_ context.Context, in *generation.VideoUpscaleInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	if in.Video == "" {
		return nil, apperrors.NewMissingRequiredFieldError("video", WorkflowVideoUpscale)
	}
	scale := in.ScaleFactor
	if scale <= 0 {
		scale = 2
	}
	return step(orchestrator.StepVideoUpscaler, orchestrator.VideoUpscalerInput{
		Video:       in.Video,
		ScaleFactor: scale,
	}), nil
}

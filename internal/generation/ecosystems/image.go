package ecosystems

import (
	"context"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/orchestrator"
)

// compileQwen targets the stable-diffusion.cpp engine.
func compileQwen(_ context.Context, in *generation.QwenInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}
	loras, err := loraMap(rc, &in.Base)
	if err != nil {
		return nil, err
	}

	return step(orchestrator.StepImageGen, orchestrator.SdcppInput{
		Engine:         "sdcpp",
		Ecosystem:      "qwen",
		Operation:      imageOperation(&in.Base),
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Images:         in.ImageURLs(),
		Width:          ar.Width,
		Height:         ar.Height,
		CfgScale:       floatOr(in.CfgScale, 2.5),
		Steps:          intPtrOr(in.Steps, 20),
		SampleMethod:   stringOr(in.Sampler, "euler"),
		Schedule:       "simple",
		Seed:           in.Seed,
		Quantity:       in.QuantityOrDefault(),
		Loras:          loras,
	}), nil
}

// compileZImage runs the turbo distillation, which is pinned to 9 steps at
// cfg 1.
func compileZImage(_ context.Context, in *generation.ZImageInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}
	loras, err := loraMap(rc, &in.Base)
	if err != nil {
		return nil, err
	}

	return step(orchestrator.StepImageGen, orchestrator.SdcppInput{
		Engine:         "sdcpp",
		Ecosystem:      "zImage",
		Operation:      orchestrator.OperationCreateImage,
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Width:          ar.Width,
		Height:         ar.Height,
		CfgScale:       1,
		Steps:          9,
		SampleMethod:   "euler",
		Schedule:       "simple",
		Seed:           in.Seed,
		Quantity:       in.QuantityOrDefault(),
		Loras:          loras,
	}), nil
}

// openAISize picks the closest supported size for the requested shape.
func openAISize(b *generation.Base) string {
	if b.AspectRatio == nil || b.AspectRatio.Width == b.AspectRatio.Height {
		return "1024x1024"
	}
	if b.AspectRatio.Width > b.AspectRatio.Height {
		return "1536x1024"
	}
	return "1024x1536"
}

func compileOpenAI(_ context.Context, in *generation.OpenAIInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	input := orchestrator.OpenAIInput{
		Engine:    "openai",
		Model:     "gpt-image-1",
		Operation: imageOperation(&in.Base),
		Prompt:    in.Prompt,
		Images:    in.ImageURLs(),
		Size:      openAISize(&in.Base),
		Quality:   stringOr(in.Quality, "high"),
		Quantity:  in.QuantityOrDefault(),
	}
	if in.Transparent {
		input.Background = "transparent"
	}
	return step(orchestrator.StepImageGen, input), nil
}

// compileImagen4 ignores resources; the engine accepts none.
func compileImagen4(_ context.Context, in *generation.ImagenInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	return step(orchestrator.StepImageGen, orchestrator.GoogleInput{
		Engine:         "google",
		Model:          "imagen4",
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		AspectRatio:    aspectValue(&in.Base, "1:1"),
		NumImages:      in.QuantityOrDefault(),
		Seed:           in.Seed,
	}), nil
}

func compileNanoBanana(_ context.Context, in *generation.NanoBananaInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	return step(orchestrator.StepImageGen, orchestrator.GeminiInput{
		Engine:    "gemini",
		Model:     "2.5-flash",
		Operation: imageOperation(&in.Base),
		Prompt:    in.Prompt,
		Images:    in.ImageURLs(),
		NumImages: in.QuantityOrDefault(),
	}), nil
}

// Seedream versions keyed by model version id.
const (
	SeedreamV3Version = 1904664
	SeedreamV4Version = 2208278
)

var seedreamVersions = map[int]string{
	SeedreamV3Version: "v3",
	SeedreamV4Version: "v4",
}

func compileSeedream(_ context.Context, in *generation.SeedreamInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}
	version, ok := seedreamVersions[in.ModelVersionID()]
	if !ok {
		version = "v4"
	}
	if version == "v3" && in.HasImages() {
		return nil, apperrors.NewInvalidGenerationInputError("seedream v3 does not accept source images")
	}

	return step(orchestrator.StepImageGen, orchestrator.SeedreamInput{
		Engine:        "seedream",
		Version:       version,
		Operation:     imageOperation(&in.Base),
		Prompt:        in.Prompt,
		Images:        in.ImageURLs(),
		Size:          orchestrator.Size{Width: ar.Width, Height: ar.Height},
		GuidanceScale: floatOr(in.GuidanceScale, 0),
		Seed:          in.Seed,
		Quantity:      in.QuantityOrDefault(),
	}), nil
}

package ecosystems

import (
	"context"

	"generation-workers/internal/generation"
	"generation-workers/internal/generation/orchestrator"
)

type wanVariant struct {
	version        string
	resolution     string
	requiresImages bool
	frameRate      int
}

// Wan base models routed individually; each maps to one engine version.
var wanVariants = map[string]wanVariant{
	"WanVideo14B_T2V":      {version: "v2.1", resolution: "480p", frameRate: 16},
	"WanVideo14B_I2V_720p": {version: "v2.1", resolution: "720p", requiresImages: true, frameRate: 16},
	"WanVideo22_TI2V_5B":   {version: "v2.2-5b", resolution: "720p", frameRate: 24},
	"WanVideo25_T2V":       {version: "v2.5", resolution: "1080p", frameRate: 24},
}

func wanBuilder(variant wanVariant) func(context.Context, *generation.WanInput, *ResolverCtx) (*orchestrator.Step, error) {
	return func(_ context.Context, in *generation.WanInput, rc *ResolverCtx) (*orchestrator.Step, error) {
		if variant.requiresImages {
			if err := requireImages(&in.Base); err != nil {
				return nil, err
			}
		}
		loras, err := loraList(rc, &in.Base)
		if err != nil {
			return nil, err
		}
		var shift float64
		if in.Shift != nil {
			shift = *in.Shift
		}

		return step(orchestrator.StepVideoGen, orchestrator.WanInput{
			Engine:         "wan",
			Version:        variant.version,
			Operation:      videoOperation(&in.Base),
			Prompt:         in.Prompt,
			NegativePrompt: in.NegativePrompt,
			Images:         in.ImageURLs(),
			AspectRatio:    aspectValue(&in.Base, "16:9"),
			Resolution:     stringOr(in.Resolution, variant.resolution),
			Duration:       intOr(in.Duration, 5),
			FrameRate:      intOr(in.FrameRate, variant.frameRate),
			Steps:          intPtrOr(in.Steps, 0),
			CfgScale:       floatOr(in.CfgScale, 0),
			Shift:          shift,
			Seed:           in.Seed,
			Loras:          loras,
		}), nil
	}
}

// Kling models keyed by model version id.
const (
	KlingV16Version      = 1150937
	KlingV21Version      = 1845298
	KlingV25TurboVersion = 2203468
)

var klingModels = map[int]string{
	KlingV16Version:      "v1_6",
	KlingV21Version:      "v2_1",
	KlingV25TurboVersion: "v2_5_turbo",
}

func compileKling(_ context.Context, in *generation.KlingInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	model, ok := klingModels[in.ModelVersionID()]
	if !ok {
		model = "v2_1"
	}
	return step(orchestrator.StepVideoGen, orchestrator.KlingInput{
		Engine:         "kling",
		Model:          model,
		Operation:      videoOperation(&in.Base),
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		SourceImage:    firstImage(&in.Base),
		AspectRatio:    aspectValue(&in.Base, "16:9"),
		Duration:       intOr(in.Duration, 5),
		Mode:           stringOr(in.Mode, "standard"),
		CfgScale:       floatOr(in.CfgScale, 0.5),
		Seed:           in.Seed,
	}), nil
}

func compileVidu(_ context.Context, in *generation.ViduInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	return step(orchestrator.StepVideoGen, orchestrator.ViduInput{
		Engine:            "vidu",
		Model:             "q1",
		Operation:         videoOperation(&in.Base),
		Prompt:            in.Prompt,
		SourceImage:       firstImage(&in.Base),
		AspectRatio:       aspectValue(&in.Base, "16:9"),
		Duration:          intOr(in.Duration, 5),
		Style:             stringOr(in.Style, "general"),
		MovementAmplitude: stringOr(in.MovementAmplitude, "auto"),
		Seed:              in.Seed,
	}), nil
}

func compileHunyuan(_ context.Context, in *generation.HunyuanInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}
	loras, err := loraList(rc, &in.Base)
	if err != nil {
		return nil, err
	}
	return step(orchestrator.StepVideoGen, orchestrator.HunyuanInput{
		Engine:         "hunyuan",
		Model:          "hyv1",
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Width:          ar.Width,
		Height:         ar.Height,
		Duration:       intOr(in.Duration, 5),
		FrameRate:      intOr(in.FrameRate, 24),
		Steps:          intPtrOr(in.Steps, 20),
		CfgScale:       floatOr(in.CfgScale, 6),
		Seed:           in.Seed,
		Loras:          loras,
	}), nil
}

func compileLightricks(_ context.Context, in *generation.LightricksInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}
	return step(orchestrator.StepVideoGen, orchestrator.LightricksInput{
		Engine:         "lightricks",
		Model:          "ltxv",
		Operation:      videoOperation(&in.Base),
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		SourceImage:    firstImage(&in.Base),
		Width:          ar.Width,
		Height:         ar.Height,
		Duration:       intOr(in.Duration, 5),
		Steps:          intPtrOr(in.Steps, 25),
		CfgScale:       floatOr(in.CfgScale, 3),
		Seed:           in.Seed,
	}), nil
}

func compileMiniMax(_ context.Context, in *generation.MiniMaxInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	return step(orchestrator.StepVideoGen, orchestrator.MiniMaxInput{
		Engine:               "minimax",
		Model:                "hailou",
		Operation:            videoOperation(&in.Base),
		Prompt:               in.Prompt,
		SourceImage:          firstImage(&in.Base),
		EnablePromptEnhancer: in.EnablePromptEnhancer,
	}), nil
}

// Veo 3 modes keyed by model version id.
const (
	Veo3FastVersion     = 1885367
	Veo3StandardVersion = 1885368
)

var veo3Modes = map[int]string{
	Veo3FastVersion:     "fast",
	Veo3StandardVersion: "standard",
}

func compileVeo3(_ context.Context, in *generation.Veo3Input, _ *ResolverCtx) (*orchestrator.Step, error) {
	mode, ok := veo3Modes[in.ModelVersionID()]
	if !ok {
		mode = "fast"
	}
	return step(orchestrator.StepVideoGen, orchestrator.Veo3Input{
		Engine:         "veo3",
		Mode:           mode,
		Operation:      videoOperation(&in.Base),
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Images:         in.ImageURLs(),
		AspectRatio:    aspectValue(&in.Base, "16:9"),
		Duration:       intOr(in.Duration, 8),
		GenerateAudio:  in.GenerateAudio,
		Seed:           in.Seed,
	}), nil
}

// Sora 2 models keyed by model version id.
const (
	Sora2StandardVersion = 2267501
	Sora2ProVersion      = 2267502
)

var sora2Models = map[int]string{
	Sora2StandardVersion: "sora-2",
	Sora2ProVersion:      "sora-2-pro",
}

func compileSora(_ context.Context, in *generation.SoraInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	model, ok := sora2Models[in.ModelVersionID()]
	if !ok {
		model = "sora-2"
	}
	resolution := stringOr(in.Resolution, "720p")
	return step(orchestrator.StepVideoGen, orchestrator.SoraInput{
		Engine:      "sora",
		Model:       model,
		Operation:   videoOperation(&in.Base),
		Prompt:      in.Prompt,
		Images:      in.ImageURLs(),
		AspectRatio: aspectValue(&in.Base, "16:9"),
		Resolution:  resolution,
		Duration:    intOr(in.Duration, 4),
		Seed:        in.Seed,
	}), nil
}

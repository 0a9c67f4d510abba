package ecosystems

import (
	"context"

	"generation-workers/internal/generation"
	"generation-workers/internal/generation/air"
	"generation-workers/internal/generation/orchestrator"
)

const fluxModelID = 618692

type fluxMode struct {
	name           string
	pinnedSteps    int
	pinnedCfg      float64
	takesResources bool
}

// Flux.1 modes keyed by model version id.
const (
	FluxDraftVersion    = 699279
	FluxStandardVersion = 691639
	FluxProVersion      = 922358
	FluxUltraVersion    = 1088507
)

var fluxModes = map[int]fluxMode{
	FluxDraftVersion:    {name: "draft", pinnedSteps: 4, pinnedCfg: 1, takesResources: true},
	FluxStandardVersion: {name: "standard", takesResources: true},
	FluxProVersion:      {name: "pro"},
	FluxUltraVersion:    {name: "ultra"},
}

func fluxModeAir(version int) string {
	return air.AIR{
		Ecosystem:    "flux1",
		ResourceType: air.TypeCheckpoint,
		Source:       air.SourceCivitai,
		ModelID:      fluxModelID,
		VersionID:    version,
	}.String()
}

// compileFlux1 picks the mode from the model version, standard by default.
// Draft pins steps and cfg; pro and ultra take no resources.
func compileFlux1(_ context.Context, in *generation.FluxInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}

	version := in.ModelVersionID()
	mode, ok := fluxModes[version]
	if !ok {
		version = FluxStandardVersion
		mode = fluxModes[version]
	}
	modeAir := fluxModeAir(version)

	params := orchestrator.TextToImageParams{
		Prompt:   in.Prompt,
		Width:    ar.Width,
		Height:   ar.Height,
		Seed:     in.Seed,
		FluxMode: modeAir,
	}
	if mode.takesResources {
		params.Scheduler = "Euler"
		params.Steps = intPtrOr(in.Steps, 28)
		params.CfgScale = floatOr(in.CfgScale, 3.5)
		if mode.pinnedSteps > 0 {
			params.Steps = mode.pinnedSteps
			params.CfgScale = mode.pinnedCfg
		}
	}
	if mode.name == "ultra" {
		params.FluxUltraRaw = in.Raw
	}

	input := orchestrator.TextToImageInput{
		Model:     modeAir,
		Params:    params,
		Quantity:  in.QuantityOrDefault(),
		BatchSize: 1,
	}
	if mode.takesResources {
		networks, err := additionalNetworks(rc, &in.Base)
		if err != nil {
			return nil, err
		}
		input.AdditionalNetworks = networks
	}
	return step(orchestrator.StepTextToImage, input), nil
}

// Flux.1 Kontext models keyed by model version id.
const (
	FluxKontextDevVersion = 1892509
	FluxKontextProVersion = 1892523
	FluxKontextMaxVersion = 1892498
)

var fluxKontextModels = map[int]string{
	FluxKontextDevVersion: "dev",
	FluxKontextProVersion: "pro",
	FluxKontextMaxVersion: "max",
}

func compileFluxKontext(_ context.Context, in *generation.FluxKontextInput, _ *ResolverCtx) (*orchestrator.Step, error) {
	if err := requireImages(&in.Base); err != nil {
		return nil, err
	}
	model, ok := fluxKontextModels[in.ModelVersionID()]
	if !ok {
		model = "pro"
	}

	input := orchestrator.FluxKontextInput{
		Engine:        "flux1-kontext",
		Model:         model,
		Prompt:        in.Prompt,
		Images:        in.ImageURLs(),
		AspectRatio:   aspectValue(&in.Base, ""),
		GuidanceScale: floatOr(in.CfgScale, 3.5),
		Seed:          in.Seed,
		Quantity:      in.QuantityOrDefault(),
	}
	if model == "dev" {
		input.Steps = intPtrOr(in.Steps, 28)
	}
	return step(orchestrator.StepImageGen, input), nil
}

var flux2KleinVersions = map[string]string{
	"Flux2Klein_4B": "4b",
	"Flux2Klein_9B": "9b",
}

// compileFlux2Klein serves the distilled Klein models, which run at a fixed
// cfg of 1 and 12 steps regardless of the request.
func compileFlux2Klein(_ context.Context, in *generation.Flux2KleinInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}
	loras, err := loraMap(rc, &in.Base)
	if err != nil {
		return nil, err
	}

	return step(orchestrator.StepImageGen, orchestrator.Flux2Input{
		Engine:         "flux2",
		Model:          "klein",
		ModelVersion:   flux2KleinVersions[in.BaseModel],
		Operation:      imageOperation(&in.Base),
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Images:         in.ImageURLs(),
		Width:          ar.Width,
		Height:         ar.Height,
		CfgScale:       1,
		Steps:          12,
		SampleMethod:   "euler",
		Schedule:       "simple",
		Seed:           in.Seed,
		Quantity:       in.QuantityOrDefault(),
		Loras:          loras,
	}), nil
}

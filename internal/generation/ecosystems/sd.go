package ecosystems

import (
	"context"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/air"
	"generation-workers/internal/generation/orchestrator"
)

// Img2ImgWorkflowKey is the template used for SD family image to image.
const Img2ImgWorkflowKey = "img2img"

type samplerSpec struct {
	scheduler      string // textToImage scheduler
	comfySampler   string
	comfyScheduler string
}

var samplers = map[string]samplerSpec{
	"Euler a":          {"EulerA", "euler_ancestral", "normal"},
	"Euler":            {"Euler", "euler", "normal"},
	"Heun":             {"Heun", "heun", "normal"},
	"DPM2":             {"DPM2", "dpm_2", "normal"},
	"DPM2 a":           {"DPM2A", "dpm_2_ancestral", "normal"},
	"DPM++ 2S a":       {"DPM2SA", "dpmpp_2s_ancestral", "normal"},
	"DPM++ 2M":         {"DPM2M", "dpmpp_2m", "normal"},
	"DPM++ 2M Karras":  {"DPM2MKarras", "dpmpp_2m", "karras"},
	"DPM++ SDE":        {"DPMSDE", "dpmpp_sde", "normal"},
	"DPM++ SDE Karras": {"DPMSDEKarras", "dpmpp_sde", "karras"},
	"DDIM":             {"DDIM", "ddim", "ddim_uniform"},
	"LCM":              {"LCM", "lcm", "normal"},
}

const defaultSampler = "Euler a"

type sdDefaults struct {
	steps    int
	cfgScale float64
	clipSkip int
}

var sdFamilyDefaults = map[generation.Ecosystem]sdDefaults{
	generation.EcosystemSD1:         {steps: 25, cfgScale: 7, clipSkip: 2},
	generation.EcosystemSDXL:        {steps: 25, cfgScale: 7, clipSkip: 1},
	generation.EcosystemPony:        {steps: 25, cfgScale: 7, clipSkip: 2},
	generation.EcosystemIllustrious: {steps: 25, cfgScale: 5.5, clipSkip: 2},
	generation.EcosystemNoobAI:      {steps: 25, cfgScale: 5, clipSkip: 2},
}

// compileSD builds a textToImage step, or a comfy img2img step when source
// images are present.
func compileSD(ctx context.Context, in *generation.SDInput, rc *ResolverCtx) (*orchestrator.Step, error) {
	if in.Model == nil {
		return nil, apperrors.NewMissingRequiredFieldError("model", string(in.Ecosystem))
	}
	ar, err := requireAspectRatio(&in.Base)
	if err != nil {
		return nil, err
	}

	defaults := sdFamilyDefaults[in.Ecosystem]
	sampler, ok := samplers[in.Sampler]
	if !ok {
		sampler = samplers[defaultSampler]
	}
	steps := intPtrOr(in.Steps, defaults.steps)
	cfgScale := floatOr(in.CfgScale, defaults.cfgScale)

	if in.HasImages() {
		resources, err := comfyResources(rc, &in.Base)
		if err != nil {
			return nil, err
		}
		params := map[string]interface{}{
			"prompt":         in.Prompt,
			"negativePrompt": in.NegativePrompt,
			"seed":           seedOrRandom(in.Seed),
			"steps":          steps,
			"cfgScale":       cfgScale,
			"sampler":        sampler.comfySampler,
			"scheduler":      sampler.comfyScheduler,
			"denoise":        floatOr(in.Denoise, 0.75),
			"width":          ar.Width,
			"height":         ar.Height,
			"image":          firstImage(&in.Base),
		}
		return compileComfy(ctx, rc, Img2ImgWorkflowKey, params, resources, in.QuantityOrDefault())
	}

	model, err := rc.Airs.GetOrThrow(in.Model.ID)
	if err != nil {
		return nil, err
	}
	networks, err := additionalNetworks(rc, &in.Base)
	if err != nil {
		return nil, err
	}

	return step(orchestrator.StepTextToImage, orchestrator.TextToImageInput{
		Model:              model,
		AdditionalNetworks: networks,
		Params: orchestrator.TextToImageParams{
			Prompt:         in.Prompt,
			NegativePrompt: in.NegativePrompt,
			Scheduler:      sampler.scheduler,
			Steps:          steps,
			CfgScale:       cfgScale,
			Width:          ar.Width,
			Height:         ar.Height,
			Seed:           in.Seed,
			ClipSkip:       intPtrOr(in.ClipSkip, defaults.clipSkip),
		},
		Quantity:  in.QuantityOrDefault(),
		BatchSize: 1,
	}), nil
}

// additionalNetworks renders resources as the AIR keyed map textToImage
// accepts. Embeddings carry their trigger word instead of a strength.
func additionalNetworks(rc *ResolverCtx, b *generation.Base) (map[string]orchestrator.AdditionalNetwork, error) {
	var out map[string]orchestrator.AdditionalNetwork
	for _, r := range b.Resources {
		id, err := rc.Airs.GetOrThrow(r.ID)
		if err != nil {
			return nil, err
		}
		network := orchestrator.AdditionalNetwork{Type: air.ResourceTypeFor(r.Model.Type)}
		if network.Type == air.TypeEmbedding {
			network.TriggerWord = r.TriggerWord()
		} else {
			strength := r.StrengthOrDefault()
			network.Strength = &strength
		}
		if out == nil {
			out = map[string]orchestrator.AdditionalNetwork{}
		}
		out[id] = network
	}
	return out, nil
}

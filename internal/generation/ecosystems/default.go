package ecosystems

import (
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/orchestrator"
)

// DefaultRegistry is the production routing table.
func DefaultRegistry() *Registry {
	sd := Define(orchestrator.StepTextToImage, compileSD)

	r := NewRegistry().
		Workflow(WorkflowUpscale, Define(orchestrator.StepComfy, compileUpscale)).
		Workflow(WorkflowRemoveBackground, Define(orchestrator.StepComfy, compileRemoveBackground)).
		Workflow(WorkflowVideoInterpolation, Define(orchestrator.StepVideoInterpolation, compileVideoInterpolation)).
		Workflow(WorkflowVideoUpscale, Define(orchestrator.StepVideoUpscaler, compileVideoUpscale)).
		Ecosystem(generation.EcosystemSD1, sd).
		Ecosystem(generation.EcosystemSDXL, sd).
		Ecosystem(generation.EcosystemPony, sd).
		Ecosystem(generation.EcosystemIllustrious, sd).
		Ecosystem(generation.EcosystemNoobAI, sd).
		Ecosystem(generation.EcosystemFlux1, Define(orchestrator.StepTextToImage, compileFlux1)).
		Ecosystem(generation.EcosystemFluxKontext, Define(orchestrator.StepImageGen, compileFluxKontext)).
		Ecosystem(generation.EcosystemQwen, Define(orchestrator.StepImageGen, compileQwen)).
		Ecosystem(generation.EcosystemZImageTurbo, Define(orchestrator.StepImageGen, compileZImage)).
		Ecosystem(generation.EcosystemOpenAI, Define(orchestrator.StepImageGen, compileOpenAI)).
		Ecosystem(generation.EcosystemImagen4, Define(orchestrator.StepImageGen, compileImagen4)).
		Ecosystem(generation.EcosystemNanoBanana, Define(orchestrator.StepImageGen, compileNanoBanana)).
		Ecosystem(generation.EcosystemSeedream, Define(orchestrator.StepImageGen, compileSeedream)).
		Ecosystem(generation.EcosystemKling, Define(orchestrator.StepVideoGen, compileKling)).
		Ecosystem(generation.EcosystemVidu, Define(orchestrator.StepVideoGen, compileVidu)).
		Ecosystem(generation.EcosystemHyV1, Define(orchestrator.StepVideoGen, compileHunyuan)).
		Ecosystem(generation.EcosystemLTXV, Define(orchestrator.StepVideoGen, compileLightricks)).
		Ecosystem(generation.EcosystemMiniMax, Define(orchestrator.StepVideoGen, compileMiniMax)).
		Ecosystem(generation.EcosystemVeo3, Define(orchestrator.StepVideoGen, compileVeo3)).
		Ecosystem(generation.EcosystemSora2, Define(orchestrator.StepVideoGen, compileSora))

	flux2 := Define(orchestrator.StepImageGen, compileFlux2Klein)
	for baseModel := range flux2KleinVersions {
		r.BaseModel(generation.EcosystemFlux2Klein, baseModel, flux2)
	}
	for baseModel, variant := range wanVariants {
		r.BaseModel(generation.EcosystemWanVideo, baseModel, Define(orchestrator.StepVideoGen, wanBuilder(variant)))
	}
	return r
}

package generation

// Image ecosystems.

type SDInput struct {
	Base
	CfgScale *float64 `json:"cfgScale,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
	Sampler  string   `json:"sampler,omitempty"`
	ClipSkip *int     `json:"clipSkip,omitempty"`
	Denoise  *float64 `json:"denoise,omitempty"`
}

type FluxInput struct {
	Base
	CfgScale *float64 `json:"cfgScale,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
	Raw      bool     `json:"fluxUltraRaw,omitempty"`
}

type FluxKontextInput struct {
	Base
	CfgScale *float64 `json:"cfgScale,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
}

// Flux2KleinInput steps and cfgScale are accepted but ignored, the
// distilled model pins both.
type Flux2KleinInput struct {
	Base
	CfgScale *float64 `json:"cfgScale,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
}

type QwenInput struct {
	Base
	CfgScale *float64 `json:"cfgScale,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
	Sampler  string   `json:"sampler,omitempty"`
}

type ZImageInput struct {
	Base
}

type OpenAIInput struct {
	Base
	Quality     string `json:"quality,omitempty"`
	Transparent bool   `json:"transparent,omitempty"`
}

type ImagenInput struct {
	Base
}

type NanoBananaInput struct {
	Base
}

type SeedreamInput struct {
	Base
	GuidanceScale *float64 `json:"guidanceScale,omitempty"`
}

// Video ecosystems.

type WanInput struct {
	Base
	Duration   int      `json:"duration,omitempty"`
	CfgScale   *float64 `json:"cfgScale,omitempty"`
	Steps      *int     `json:"steps,omitempty"`
	FrameRate  int      `json:"frameRate,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
	Shift      *float64 `json:"shift,omitempty"`
}

type KlingInput struct {
	Base
	Duration int      `json:"duration,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	CfgScale *float64 `json:"cfgScale,omitempty"`
}

type ViduInput struct {
	Base
	Duration          int    `json:"duration,omitempty"`
	Style             string `json:"style,omitempty"`
	MovementAmplitude string `json:"movementAmplitude,omitempty"`
}

type HunyuanInput struct {
	Base
	Duration  int      `json:"duration,omitempty"`
	CfgScale  *float64 `json:"cfgScale,omitempty"`
	Steps     *int     `json:"steps,omitempty"`
	FrameRate int      `json:"frameRate,omitempty"`
}

type LightricksInput struct {
	Base
	Duration int      `json:"duration,omitempty"`
	CfgScale *float64 `json:"cfgScale,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
}

type MiniMaxInput struct {
	Base
	EnablePromptEnhancer bool `json:"enablePromptEnhancer,omitempty"`
}

type Veo3Input struct {
	Base
	Duration      int  `json:"duration,omitempty"`
	GenerateAudio bool `json:"generateAudio,omitempty"`
}

type SoraInput struct {
	Base
	Duration   int    `json:"duration,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// Fixed workflows.

type UpscaleInput struct {
	Base
	UpscaleWidth  int `json:"upscaleWidth"`
	UpscaleHeight int `json:"upscaleHeight"`
}

type RemoveBackgroundInput struct {
	Base
}

type VideoInterpolationInput struct {
	Base
	Video               string `json:"video"`
	InterpolationFactor int    `json:"interpolationFactor,omitempty"`
}

type VideoUpscaleInput struct {
	Base
	Video       string  `json:"video"`
	ScaleFactor float64 `json:"scaleFactor,omitempty"`
}

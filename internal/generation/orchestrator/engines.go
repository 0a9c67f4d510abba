package orchestrator

// Engine payloads for imageGen and videoGen steps. Each carries an engine
// discriminator followed by the fields that engine accepts.

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type LoraRef struct {
	Air      string  `json:"air"`
	Strength float64 `json:"strength"`
}

// imageGen

type Flux2Input struct {
	Engine         string             `json:"engine"`
	Model          string             `json:"model"`
	ModelVersion   string             `json:"modelVersion"`
	Operation      string             `json:"operation"`
	Prompt         string             `json:"prompt"`
	NegativePrompt string             `json:"negativePrompt,omitempty"`
	Images         []string           `json:"images,omitempty"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	CfgScale       float64            `json:"cfgScale"`
	Steps          int                `json:"steps"`
	SampleMethod   string             `json:"sampleMethod"`
	Schedule       string             `json:"schedule"`
	Seed           *int64             `json:"seed,omitempty"`
	Quantity       int                `json:"quantity"`
	Loras          map[string]float64 `json:"loras,omitempty"`
}

type FluxKontextInput struct {
	Engine        string   `json:"engine"`
	Model         string   `json:"model"`
	Prompt        string   `json:"prompt"`
	Images        []string `json:"images"`
	AspectRatio   string   `json:"aspectRatio,omitempty"`
	GuidanceScale float64  `json:"guidanceScale,omitempty"`
	Steps         int      `json:"steps,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
	Quantity      int      `json:"quantity"`
}

// SdcppInput serves the stable-diffusion.cpp engine, which hosts several
// ecosystems selected by Ecosystem.
type SdcppInput struct {
	Engine         string             `json:"engine"`
	Ecosystem      string             `json:"ecosystem"`
	Operation      string             `json:"operation"`
	Prompt         string             `json:"prompt"`
	NegativePrompt string             `json:"negativePrompt,omitempty"`
	Images         []string           `json:"images,omitempty"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	CfgScale       float64            `json:"cfgScale"`
	Steps          int                `json:"steps"`
	SampleMethod   string             `json:"sampleMethod"`
	Schedule       string             `json:"schedule"`
	Seed           *int64             `json:"seed,omitempty"`
	Quantity       int                `json:"quantity"`
	Loras          map[string]float64 `json:"loras,omitempty"`
}

type OpenAIInput struct {
	Engine     string   `json:"engine"`
	Model      string   `json:"model"`
	Operation  string   `json:"operation"`
	Prompt     string   `json:"prompt"`
	Images     []string `json:"images,omitempty"`
	Size       string   `json:"size"`
	Quality    string   `json:"quality,omitempty"`
	Background string   `json:"background,omitempty"`
	Quantity   int      `json:"quantity"`
}

type GoogleInput struct {
	Engine         string `json:"engine"`
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	AspectRatio    string `json:"aspectRatio"`
	NumImages      int    `json:"numImages"`
	Seed           *int64 `json:"seed,omitempty"`
}

type GeminiInput struct {
	Engine    string   `json:"engine"`
	Model     string   `json:"model"`
	Operation string   `json:"operation"`
	Prompt    string   `json:"prompt"`
	Images    []string `json:"images,omitempty"`
	NumImages int      `json:"numImages"`
}

type SeedreamInput struct {
	Engine        string   `json:"engine"`
	Version       string   `json:"version"`
	Operation     string   `json:"operation"`
	Prompt        string   `json:"prompt"`
	Images        []string `json:"images,omitempty"`
	Size          Size     `json:"size"`
	GuidanceScale float64  `json:"guidanceScale,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
	Quantity      int      `json:"quantity"`
}

// videoGen

type WanInput struct {
	Engine         string    `json:"engine"`
	Version        string    `json:"version"`
	Operation      string    `json:"operation"`
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negativePrompt,omitempty"`
	Images         []string  `json:"images,omitempty"`
	AspectRatio    string    `json:"aspectRatio,omitempty"`
	Resolution     string    `json:"resolution,omitempty"`
	Duration       int       `json:"duration"`
	FrameRate      int       `json:"frameRate,omitempty"`
	Steps          int       `json:"steps,omitempty"`
	CfgScale       float64   `json:"cfgScale,omitempty"`
	Shift          float64   `json:"shift,omitempty"`
	Seed           *int64    `json:"seed,omitempty"`
	Loras          []LoraRef `json:"loras,omitempty"`
}

type KlingInput struct {
	Engine         string  `json:"engine"`
	Model          string  `json:"model"`
	Operation      string  `json:"operation"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt,omitempty"`
	SourceImage    string  `json:"sourceImage,omitempty"`
	AspectRatio    string  `json:"aspectRatio,omitempty"`
	Duration       int     `json:"duration"`
	Mode           string  `json:"mode"`
	CfgScale       float64 `json:"cfgScale,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`
}

type ViduInput struct {
	Engine            string `json:"engine"`
	Model             string `json:"model"`
	Operation         string `json:"operation"`
	Prompt            string `json:"prompt"`
	SourceImage       string `json:"sourceImage,omitempty"`
	AspectRatio       string `json:"aspectRatio,omitempty"`
	Duration          int    `json:"duration"`
	Style             string `json:"style,omitempty"`
	MovementAmplitude string `json:"movementAmplitude,omitempty"`
	Seed              *int64 `json:"seed,omitempty"`
}

type HunyuanInput struct {
	Engine         string    `json:"engine"`
	Model          string    `json:"model"`
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negativePrompt,omitempty"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Duration       int       `json:"duration"`
	FrameRate      int       `json:"frameRate,omitempty"`
	Steps          int       `json:"steps,omitempty"`
	CfgScale       float64   `json:"cfgScale,omitempty"`
	Seed           *int64    `json:"seed,omitempty"`
	Loras          []LoraRef `json:"loras,omitempty"`
}

type LightricksInput struct {
	Engine         string  `json:"engine"`
	Model          string  `json:"model"`
	Operation      string  `json:"operation"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt,omitempty"`
	SourceImage    string  `json:"sourceImage,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Duration       int     `json:"duration"`
	Steps          int     `json:"steps,omitempty"`
	CfgScale       float64 `json:"cfgScale,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`
}

type MiniMaxInput struct {
	Engine               string `json:"engine"`
	Model                string `json:"model"`
	Operation            string `json:"operation"`
	Prompt               string `json:"prompt"`
	SourceImage          string `json:"sourceImage,omitempty"`
	EnablePromptEnhancer bool   `json:"enablePromptEnhancer"`
}

type Veo3Input struct {
	Engine         string   `json:"engine"`
	Mode           string   `json:"mode"`
	Operation      string   `json:"operation"`
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negativePrompt,omitempty"`
	Images         []string `json:"images,omitempty"`
	AspectRatio    string   `json:"aspectRatio,omitempty"`
	Duration       int      `json:"duration"`
	GenerateAudio  bool     `json:"generateAudio"`
	Seed           *int64   `json:"seed,omitempty"`
}

type SoraInput struct {
	Engine      string   `json:"engine"`
	Model       string   `json:"model"`
	Operation   string   `json:"operation"`
	Prompt      string   `json:"prompt"`
	Images      []string `json:"images,omitempty"`
	AspectRatio string   `json:"aspectRatio,omitempty"`
	Resolution  string   `json:"resolution"`
	Duration    int      `json:"duration"`
	Seed        *int64   `json:"seed,omitempty"`
}

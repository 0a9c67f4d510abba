// Package generation holds the normalized generation request shared by the
// compiler, the ecosystem handlers and the job worker.
package generation

// Ecosystem discriminates the family of backends a request targets.
type Ecosystem string

const (
	EcosystemSD1         Ecosystem = "SD1"
	EcosystemSDXL        Ecosystem = "SDXL"
	EcosystemPony        Ecosystem = "Pony"
	EcosystemIllustrious Ecosystem = "Illustrious"
	EcosystemNoobAI      Ecosystem = "NoobAI"
	EcosystemFlux1       Ecosystem = "Flux1"
	EcosystemFluxKontext Ecosystem = "FluxKontext"
	EcosystemFlux2Klein  Ecosystem = "Flux2Klein"
	EcosystemQwen        Ecosystem = "Qwen"
	EcosystemZImageTurbo Ecosystem = "ZImageTurbo"
	EcosystemOpenAI      Ecosystem = "OpenAI"
	EcosystemImagen4     Ecosystem = "Imagen4"
	EcosystemNanoBanana  Ecosystem = "NanoBanana"
	EcosystemSeedream    Ecosystem = "Seedream"
	EcosystemWanVideo    Ecosystem = "WanVideo"
	EcosystemKling       Ecosystem = "Kling"
	EcosystemVidu        Ecosystem = "Vidu"
	EcosystemHyV1        Ecosystem = "HyV1"
	EcosystemLTXV        Ecosystem = "LTXV"
	EcosystemMiniMax     Ecosystem = "MiniMax"
	EcosystemVeo3        Ecosystem = "Veo3"
	EcosystemSora2       Ecosystem = "Sora2"
)

// Resource model types as stored on the model record.
const (
	ModelTypeCheckpoint       = "Checkpoint"
	ModelTypeLora             = "LORA"
	ModelTypeDora             = "DoRA"
	ModelTypeLoCon            = "LoCon"
	ModelTypeTextualInversion = "TextualInversion"
	ModelTypeVAE              = "VAE"
	ModelTypeUpscaler         = "Upscaler"
)

// DefaultStrength applies to resources that carry no strength.
const DefaultStrength = 1.0

type ModelRef struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// ResourceData is a requested model resource. ID is the version id.
type ResourceData struct {
	ID           int      `json:"id"`
	BaseModel    string   `json:"baseModel,omitempty"`
	Model        ModelRef `json:"model"`
	Strength     *float64 `json:"strength,omitempty"`
	EpochNumber  *int     `json:"epochNumber,omitempty"`
	TrainedWords []string `json:"trainedWords,omitempty"`
}

func (r ResourceData) StrengthOrDefault() float64 {
	if r.Strength == nil {
		return DefaultStrength
	}
	return *r.Strength
}

// TriggerWord is the first trained word, if any.
func (r ResourceData) TriggerWord() string {
	if len(r.TrainedWords) == 0 {
		return ""
	}
	return r.TrainedWords[0]
}

// Hydrated reports whether the fields needed to build an AIR are present.
func (r ResourceData) Hydrated() bool {
	return r.BaseModel != "" && r.Model.ID != 0 && r.Model.Type != ""
}

type AspectRatio struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Value  string `json:"value,omitempty"`
}

type SourceImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Base carries the fields common to every request variant.
type Base struct {
	Workflow       string         `json:"workflow,omitempty"`
	Ecosystem      Ecosystem      `json:"ecosystem,omitempty"`
	BaseModel      string         `json:"baseModel,omitempty"`
	Prompt         string         `json:"prompt"`
	NegativePrompt string         `json:"negativePrompt,omitempty"`
	Seed           *int64         `json:"seed,omitempty"`
	Quantity       int            `json:"quantity,omitempty"`
	AspectRatio    *AspectRatio   `json:"aspectRatio,omitempty"`
	Model          *ResourceData  `json:"model,omitempty"`
	Resources      []ResourceData `json:"resources,omitempty"`
	Images         []SourceImage  `json:"images,omitempty"`
}

// Input is implemented only by the request variants in this package.
type Input interface {
	Common() *Base
	isInput()
}

func (b *Base) Common() *Base { return b }
func (b *Base) isInput()      {}

func (b *Base) QuantityOrDefault() int {
	if b.Quantity <= 0 {
		return 1
	}
	return b.Quantity
}

func (b *Base) HasImages() bool { return len(b.Images) > 0 }

// ImageURLs returns the source image urls in request order.
func (b *Base) ImageURLs() []string {
	if len(b.Images) == 0 {
		return nil
	}
	urls := make([]string, 0, len(b.Images))
	for _, img := range b.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// AllResources returns the model followed by the additional resources.
func (b *Base) AllResources() []ResourceData {
	out := make([]ResourceData, 0, len(b.Resources)+1)
	if b.Model != nil {
		out = append(out, *b.Model)
	}
	return append(out, b.Resources...)
}

// ModelVersionID is the version id of the selected model, or 0 when absent.
func (b *Base) ModelVersionID() int {
	if b.Model == nil {
		return 0
	}
	return b.Model.ID
}

// Ecosystems lists every ecosystem the compiler must route.
var Ecosystems = []Ecosystem{
	EcosystemSD1, EcosystemSDXL, EcosystemPony, EcosystemIllustrious, EcosystemNoobAI,
	EcosystemFlux1, EcosystemFluxKontext, EcosystemFlux2Klein, EcosystemQwen, EcosystemZImageTurbo,
	EcosystemOpenAI, EcosystemImagen4, EcosystemNanoBanana, EcosystemSeedream,
	EcosystemWanVideo, EcosystemKling, EcosystemVidu, EcosystemHyV1, EcosystemLTXV,
	EcosystemMiniMax, EcosystemVeo3, EcosystemSora2,
}

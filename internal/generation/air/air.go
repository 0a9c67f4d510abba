// Package air encodes and decodes Asset Identity References, the canonical
// string form of a versioned model resource:
//
//	urn:air:<ecosystem>:<type>:<source>:<modelId>@<versionId>
package air

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
)

const SourceCivitai = "civitai"

// Resource types as they appear in the urn.
const (
	TypeCheckpoint = "checkpoint"
	TypeLora       = "lora"
	TypeDora       = "dora"
	TypeLycoris    = "lycoris"
	TypeEmbedding  = "embedding"
	TypeVAE        = "vae"
	TypeUpscaler   = "upscaler"
	TypeOther      = "other"
)

// AIR is comparable; two values are equal iff every field is equal.
type AIR struct {
	Ecosystem    string
	ResourceType string
	Source       string
	ModelID      int
	VersionID    int
}

func (a AIR) String() string {
	return fmt.Sprintf("urn:air:%s:%s:%s:%d@%d", a.Ecosystem, a.ResourceType, a.Source, a.ModelID, a.VersionID)
}

var baseModelEcosystems = map[string]string{
	"SD 1.4":                 "sd1",
	"SD 1.5":                 "sd1",
	"SD 1.5 LCM":             "sd1",
	"SD 1.5 Hyper":           "sd1",
	"SD 2.0":                 "sd2",
	"SD 2.1":                 "sd2",
	"SDXL 1.0":               "sdxl",
	"SDXL Lightning":         "sdxl",
	"SDXL Hyper":             "sdxl",
	"SDXL Turbo":             "sdxl",
	"Pony":                   "sdxl",
	"Illustrious":            "sdxl",
	"NoobAI":                 "sdxl",
	"Flux.1 D":               "flux1",
	"Flux.1 S":               "flux1",
	"Flux.1 Kontext":         "flux1",
	"Flux2Klein_4B":          "flux2",
	"Flux2Klein_9B":          "flux2",
	"Qwen":                   "qwen",
	"ZImageTurbo":            "zimageturbo",
	"OpenAI":                 "openai",
	"Imagen4":                "imagen4",
	"NanoBanana":             "nanobanana",
	"Seedream":               "seedream",
	"Wan Video 14B t2v":      "wanvideo",
	"Wan Video 14B i2v 720p": "wanvideo",
	"Wan Video 2.2 TI2V-5B":  "wanvideo",
	"Wan Video 2.5 T2V":      "wanvideo",
	"WanVideo14B_T2V":        "wanvideo",
	"WanVideo14B_I2V_720p":   "wanvideo",
	"WanVideo22_TI2V_5B":     "wanvideo",
	"WanVideo25_T2V":         "wanvideo",
	"Hunyuan Video":          "hyv1",
	"LTXV":                   "ltxv",
	"Kling":                  "kling",
	"Vidu":                   "vidu",
	"MiniMax":                "minimax",
	"Veo 3":                  "veo3",
	"Sora 2":                 "sora2",
}

var modelTypes = map[string]string{
	generation.ModelTypeCheckpoint:       TypeCheckpoint,
	generation.ModelTypeLora:             TypeLora,
	generation.ModelTypeDora:             TypeDora,
	generation.ModelTypeLoCon:            TypeLycoris,
	generation.ModelTypeTextualInversion: TypeEmbedding,
	generation.ModelTypeVAE:              TypeVAE,
	generation.ModelTypeUpscaler:         TypeUpscaler,
}

// EcosystemFor maps a base model name to its urn ecosystem segment.
func EcosystemFor(baseModel string) (string, bool) {
	eco, ok := baseModelEcosystems[baseModel]
	return eco, ok
}

// ResourceTypeFor maps a model type to its urn type segment. Unknown types
// map to "other".
func ResourceTypeFor(modelType string) string {
	if t, ok := modelTypes[modelType]; ok {
		return t
	}
	return TypeOther
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return slugRe.ReplaceAllString(strings.ToLower(s), "")
}

// ToAir formats r as an urn. It never fails: an unknown base model is
// reduced to a lowercase alphanumeric slug.
func ToAir(r generation.ResourceData) string {
	eco, ok := EcosystemFor(r.BaseModel)
	if !ok {
		eco = slug(r.BaseModel)
		if eco == "" {
			eco = "unknown"
		}
	}
	return AIR{
		Ecosystem:    eco,
		ResourceType: ResourceTypeFor(r.Model.Type),
		Source:       SourceCivitai,
		ModelID:      r.Model.ID,
		VersionID:    r.ID,
	}.String()
}

// FromResource is the strict form of ToAir: an unknown base model is an error.
func FromResource(r generation.ResourceData) (AIR, error) {
	eco, ok := EcosystemFor(r.BaseModel)
	if !ok {
		return AIR{}, apperrors.NewUnknownBaseModelError(r.BaseModel)
	}
	return AIR{
		Ecosystem:    eco,
		ResourceType: ResourceTypeFor(r.Model.Type),
		Source:       SourceCivitai,
		ModelID:      r.Model.ID,
		VersionID:    r.ID,
	}, nil
}

// FromResourceSafe returns false instead of an error.
func FromResourceSafe(r generation.ResourceData) (AIR, bool) {
	a, err := FromResource(r)
	return a, err == nil
}

var urnRe = regexp.MustCompile(`^urn:air:([^:]+):([^:]+):(civitai):(\d+)@(\d+)$`)

// ParseStrict parses s or fails with a malformed AIR error.
func ParseStrict(s string) (AIR, error) {
	m := urnRe.FindStringSubmatch(s)
	if m == nil {
		return AIR{}, apperrors.NewMalformedAirError(s, "does not match urn:air:<ecosystem>:<type>:civitai:<modelId>@<versionId>")
	}
	modelID, err := strconv.Atoi(m[4])
	if err != nil {
		return AIR{}, apperrors.NewMalformedAirError(s, "model id is out of range")
	}
	versionID, err := strconv.Atoi(m[5])
	if err != nil {
		return AIR{}, apperrors.NewMalformedAirError(s, "version id is out of range")
	}
	return AIR{
		Ecosystem:    m[1],
		ResourceType: m[2],
		Source:       m[3],
		ModelID:      modelID,
		VersionID:    versionID,
	}, nil
}

// ParseSafe never fails; ok is false when s is not a valid urn.
func ParseSafe(s string) (AIR, bool) {
	a, err := ParseStrict(s)
	if err != nil {
		return AIR{}, false
	}
	return a, true
}

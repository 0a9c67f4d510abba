package comfy

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generation-workers/internal/generation/air"
)

const txt2imgGraph = `{
  "3": {"class_type": "KSampler", "inputs": {"seed": 1125899906842624, "steps": 25, "cfg": 7, "model": ["4", 0], "positive": ["6", 0], "negative": ["7", 0], "latent_image": ["5", 0]}},
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "template.safetensors"}},
  "5": {"class_type": "EmptyLatentImage", "inputs": {"width": 1024, "height": 1024, "batch_size": 1}},
  "6": {"class_type": "CLIPTextEncode", "inputs": {"text": "a cat", "clip": ["4", 1]}},
  "7": {"class_type": "CLIPTextEncode", "inputs": {"text": "blurry, EasyNegative", "clip": ["4", 1]}},
  "8": {"class_type": "VAEDecode", "inputs": {"samples": ["3", 0], "vae": ["4", 2]}},
  "9": {"class_type": "SaveImage", "inputs": {"images": ["8", 0]}}
}`

const loraChainGraph = `{
  "3": {"class_type": "KSampler", "inputs": {"model": ["11", 0], "positive": ["6", 0], "negative": ["7", 0]}},
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "template.safetensors"}},
  "6": {"class_type": "CLIPTextEncode", "inputs": {"text": "a cat", "clip": ["11", 1]}},
  "7": {"class_type": "CLIPTextEncode", "inputs": {"text": "", "clip": ["4", 1]}},
  "8": {"class_type": "VAEDecode", "inputs": {"samples": ["3", 0], "vae": ["4", 2]}},
  "10": {"class_type": "LoraLoader", "inputs": {"lora_name": "old-a", "strength_model": 1, "strength_clip": 1, "model": ["4", 0], "clip": ["4", 1]}},
  "11": {"class_type": "LoraLoader", "inputs": {"lora_name": "old-b", "strength_model": 1, "strength_clip": 1, "model": ["10", 0], "clip": ["10", 1]}}
}`

const upscaleGraph = `{
  "1": {"class_type": "LoadImage", "inputs": {"image": "https://example.com/a.png"}},
  "2": {"class_type": "UpscaleModelLoader", "inputs": {"model_name": "default.pth"}},
  "3": {"class_type": "ImageUpscaleWithModel", "inputs": {"upscale_model": ["2", 0], "image": ["1", 0]}}
}`

const (
	checkpointAir = "urn:air:sdxl:checkpoint:civitai:101055@128078"
	loraAirA      = "urn:air:sdxl:lora:civitai:1@11"
	loraAirB      = "urn:air:sdxl:lora:civitai:2@22"
)

func parseTestWorkflow(t *testing.T, raw string) Workflow {
	t.Helper()
	wf, err := Parse([]byte(raw))
	require.NoError(t, err)
	return wf
}

func edgeOf(t *testing.T, wf Workflow, nodeID, input string) (string, string) {
	t.Helper()
	node, ok := wf[nodeID]
	require.True(t, ok, "node %s missing", nodeID)
	id, slot, ok := AsEdge(node.Inputs[input])
	require.True(t, ok, "%s.%s is not an edge", nodeID, input)
	return id, fmt.Sprint(slot)
}

func floatPtr(f float64) *float64 { return &f }

// ==========================
// Node synthesis
// ==========================

func TestApplyResources_CheckpointAndLoras(t *testing.T) {
	wf := parseTestWorkflow(t, txt2imgGraph)
	before := len(wf)

	added := ApplyResources(wf, []Resource{
		{AIR: checkpointAir, Type: air.TypeCheckpoint},
		{AIR: loraAirA, Type: air.TypeLora, Strength: floatPtr(0.5)},
		{AIR: loraAirB, Type: air.TypeLora},
	})

	assert.Equal(t, 3, added)
	assert.Len(t, wf, before-1+3)
	assert.NotContains(t, wf, "4")

	head := wf["resource-stack"]
	require.NotNil(t, head)
	assert.Equal(t, ClassCheckpointLoader, head.ClassType)
	assert.Equal(t, checkpointAir, head.Inputs["ckpt_name"])

	first := wf["resource-stack-1"]
	require.NotNil(t, first)
	assert.Equal(t, ClassLoraLoader, first.ClassType)
	assert.Equal(t, loraAirA, first.Inputs["lora_name"])
	assert.Equal(t, 0.5, first.Inputs["strength_model"])
	assert.Equal(t, 0.5, first.Inputs["strength_clip"])
	id, slot := edgeOf(t, wf, "resource-stack-1", "model")
	assert.Equal(t, []string{"resource-stack", "0"}, []string{id, slot})
	id, slot = edgeOf(t, wf, "resource-stack-1", "clip")
	assert.Equal(t, []string{"resource-stack", "1"}, []string{id, slot})

	second := wf["resource-stack-2"]
	require.NotNil(t, second)
	assert.Equal(t, 1.0, second.Inputs["strength_model"])
	id, _ = edgeOf(t, wf, "resource-stack-2", "model")
	assert.Equal(t, "resource-stack-1", id)
}

func TestApplyResources_VaeBindsToHeadOthersToTail(t *testing.T) {
	wf := parseTestWorkflow(t, txt2imgGraph)

	ApplyResources(wf, []Resource{
		{AIR: checkpointAir, Type: air.TypeCheckpoint},
		{AIR: loraAirA, Type: air.TypeLora},
		{AIR: loraAirB, Type: air.TypeLora},
	})

	id, slot := edgeOf(t, wf, "8", "vae")
	assert.Equal(t, "resource-stack", id)
	assert.Equal(t, "2", slot)

	id, slot = edgeOf(t, wf, "3", "model")
	assert.Equal(t, "resource-stack-2", id)
	assert.Equal(t, "0", slot)

	for _, encoder := range []string{"6", "7"} {
		id, slot = edgeOf(t, wf, encoder, "clip")
		assert.Equal(t, "resource-stack-2", id)
		assert.Equal(t, "1", slot)
	}

	// untouched edges
	id, _ = edgeOf(t, wf, "9", "images")
	assert.Equal(t, "8", id)
	id, _ = edgeOf(t, wf, "3", "latent_image")
	assert.Equal(t, "5", id)
}

func TestApplyResources_ExistingLoraChainIsReplaced(t *testing.T) {
	wf := parseTestWorkflow(t, loraChainGraph)

	added := ApplyResources(wf, []Resource{
		{AIR: checkpointAir, Type: air.TypeCheckpoint},
		{AIR: loraAirA, Type: air.TypeLora},
	})

	assert.Equal(t, 2, added)
	for _, gone := range []string{"4", "10", "11"} {
		assert.NotContains(t, wf, gone)
	}
	assert.Len(t, wf, 6)

	id, slot := edgeOf(t, wf, "3", "model")
	assert.Equal(t, []string{"resource-stack-1", "0"}, []string{id, slot})
	id, slot = edgeOf(t, wf, "6", "clip")
	assert.Equal(t, []string{"resource-stack-1", "1"}, []string{id, slot})
	id, slot = edgeOf(t, wf, "7", "clip")
	assert.Equal(t, []string{"resource-stack-1", "1"}, []string{id, slot})
	id, slot = edgeOf(t, wf, "8", "vae")
	assert.Equal(t, []string{"resource-stack", "2"}, []string{id, slot})
}

func TestApplyResources_LorasWithoutCheckpointKeepTemplateModel(t *testing.T) {
	wf := parseTestWorkflow(t, txt2imgGraph)

	added := ApplyResources(wf, []Resource{{AIR: loraAirA, Type: air.TypeLora}})

	assert.Equal(t, 2, added)
	assert.Equal(t, "template.safetensors", wf["resource-stack"].Inputs["ckpt_name"])
	id, _ := edgeOf(t, wf, "3", "model")
	assert.Equal(t, "resource-stack-1", id)
}

func TestApplyResources_OnlyFirstCheckpointIsHonored(t *testing.T) {
	wf := parseTestWorkflow(t, txt2imgGraph)

	added := ApplyResources(wf, []Resource{
		{AIR: checkpointAir, Type: air.TypeCheckpoint},
		{AIR: "urn:air:sdxl:checkpoint:civitai:9@99", Type: air.TypeCheckpoint},
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, checkpointAir, wf["resource-stack"].Inputs["ckpt_name"])
	assert.NotContains(t, wf, "resource-stack-1")
}

func TestApplyResources_StackIDsAvoidCollisions(t *testing.T) {
	wf := parseTestWorkflow(t, txt2imgGraph)
	wf["resource-stack"] = &Node{ClassType: "Note", Inputs: map[string]interface{}{"text": "reserved"}}

	ApplyResources(wf, []Resource{
		{AIR: checkpointAir, Type: air.TypeCheckpoint},
		{AIR: loraAirA, Type: air.TypeLora},
	})

	assert.Equal(t, "Note", wf["resource-stack"].ClassType)
	assert.Equal(t, ClassCheckpointLoader, wf["resource-stack-1"].ClassType)
	assert.Equal(t, ClassLoraLoader, wf["resource-stack-2"].ClassType)
	id, _ := edgeOf(t, wf, "8", "vae")
	assert.Equal(t, "resource-stack-1", id)
}

// ==========================
// No-op cases
// ==========================

func TestApplyResources_NoCheckpointLoaderSkipsResources(t *testing.T) {
	wf := parseTestWorkflow(t, upscaleGraph)
	before, err := json.Marshal(wf)
	require.NoError(t, err)

	added := ApplyResources(wf, []Resource{
		{AIR: checkpointAir, Type: air.TypeCheckpoint},
		{AIR: loraAirA, Type: air.TypeLora},
	})

	after, err := json.Marshal(wf)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.JSONEq(t, string(before), string(after))
}

func TestApplyResources_EmptyResourcesIsNoop(t *testing.T) {
	for name, graph := range map[string]string{"txt2img": txt2imgGraph, "upscale": upscaleGraph} {
		t.Run(name, func(t *testing.T) {
			wf := parseTestWorkflow(t, graph)

			added := ApplyResources(wf, nil)

			out, err := json.Marshal(wf)
			require.NoError(t, err)
			assert.Equal(t, 0, added)
			assert.JSONEq(t, graph, string(out))
			assert.NotContains(t, string(out), "_children")
		})
	}
}

// ==========================
// Embeddings and upscalers
// ==========================

func TestApplyResources_EmbeddingSubstitution(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		trigger  string
		expected string
	}{
		{
			name:     "case insensitive whole word",
			text:     "blurry, EasyNegative",
			trigger:  "easynegative",
			expected: "blurry, embedding:urn:air:sd1:embedding:civitai:7@8",
		},
		{
			name:     "partial word is left alone",
			text:     "easynegativev2, bad",
			trigger:  "easynegative",
			expected: "easynegativev2, bad",
		},
		{
			name:     "every occurrence",
			text:     "badhands and BadHands",
			trigger:  "badhands",
			expected: "embedding:urn:air:sd1:embedding:civitai:7@8 and embedding:urn:air:sd1:embedding:civitai:7@8",
		},
		{
			name:     "trigger with punctuation",
			text:     "style (neg:1.2) here",
			trigger:  "(neg:1.2)",
			expected: "style embedding:urn:air:sd1:embedding:civitai:7@8 here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := parseTestWorkflow(t, txt2imgGraph)
			wf["7"].Inputs["text"] = tt.text

			added := ApplyResources(wf, []Resource{{
				AIR:         "urn:air:sd1:embedding:civitai:7@8",
				Type:        air.TypeEmbedding,
				TriggerWord: tt.trigger,
			}})

			assert.Equal(t, 0, added)
			assert.Equal(t, tt.expected, wf["7"].Inputs["text"])
			assert.Contains(t, wf, "4", "embeddings do not touch the graph structure")
		})
	}
}

func TestApplyResources_EmbeddingWithoutCheckpointLoader(t *testing.T) {
	wf := parseTestWorkflow(t, `{"1":{"class_type":"CLIPTextEncode","inputs":{"text":"EasyNegative"}}}`)

	ApplyResources(wf, []Resource{{AIR: "urn:air:sd1:embedding:civitai:7@8", Type: air.TypeEmbedding, TriggerWord: "EasyNegative"}})

	assert.True(t, strings.HasPrefix(wf["1"].Inputs["text"].(string), "embedding:"))
}

func TestApplyResources_Upscaler(t *testing.T) {
	wf := parseTestWorkflow(t, upscaleGraph)

	ApplyResources(wf, []Resource{{AIR: "urn:air:other:upscaler:civitai:147759@164821", Type: air.TypeUpscaler}})

	assert.Equal(t, "urn:air:other:upscaler:civitai:147759@164821", wf["2"].Inputs["model_name"])
	id, _ := edgeOf(t, wf, "3", "upscale_model")
	assert.Equal(t, "2", id)
}

// ==========================
// Parse
// ==========================

func TestParse_PreservesLargeNumbers(t *testing.T) {
	wf := parseTestWorkflow(t, txt2imgGraph)

	out, err := json.Marshal(wf)
	require.NoError(t, err)
	assert.Contains(t, string(out), "1125899906842624")
}

func TestParse_RejectsNullNode(t *testing.T) {
	_, err := Parse([]byte(`{"1": null}`))
	assert.Error(t, err)
}

func TestAsEdge(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		ok    bool
	}{
		{"edge with json number", []interface{}{"4", json.Number("1")}, true},
		{"edge with int", []interface{}{"4", 1}, true},
		{"string", "4", false},
		{"wrong arity", []interface{}{"4", 1, 2}, false},
		{"numeric id", []interface{}{4, 1}, false},
		{"string slot", []interface{}{"4", "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := AsEdge(tt.value)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

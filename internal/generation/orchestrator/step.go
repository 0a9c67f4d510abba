// Package orchestrator defines the step payloads submitted to the remote
// orchestrator. Field names and omission rules are part of the wire
// contract: optional fields are omitted, never sent as null.
package orchestrator

import "generation-workers/internal/generation/comfy"

type StepType string

const (
	StepTextToImage        StepType = "textToImage"
	StepImageGen           StepType = "imageGen"
	StepVideoGen           StepType = "videoGen"
	StepComfy              StepType = "comfy"
	StepVideoInterpolation StepType = "videoInterpolation"
	StepVideoUpscaler      StepType = "videoUpscaler"
)

// Step is a compiled, ready to submit step.
type Step struct {
	Type  StepType    `json:"$type"`
	Input interface{} `json:"input"`
}

// Operations shared by engine payloads.
const (
	OperationCreateImage  = "createImage"
	OperationEditImage    = "editImage"
	OperationTextToVideo  = "text-to-video"
	OperationImageToVideo = "image-to-video"
)

// TextToImageInput is the payload of a textToImage step.
type TextToImageInput struct {
	Model              string                       `json:"model"`
	AdditionalNetworks map[string]AdditionalNetwork `json:"additionalNetworks,omitempty"`
	Params             TextToImageParams            `json:"params"`
	Quantity           int                          `json:"quantity"`
	BatchSize          int                          `json:"batchSize"`
}

type AdditionalNetwork struct {
	Type        string   `json:"type"`
	Strength    *float64 `json:"strength,omitempty"`
	TriggerWord string   `json:"triggerWord,omitempty"`
}

type TextToImageParams struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt,omitempty"`
	Scheduler      string  `json:"scheduler,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CfgScale       float64 `json:"cfgScale,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Seed           *int64  `json:"seed,omitempty"`
	ClipSkip       int     `json:"clipSkip,omitempty"`
	FluxMode       string  `json:"fluxMode,omitempty"`
	FluxUltraRaw   bool    `json:"fluxUltraRaw,omitempty"`
}

// ComfyInput is the payload of a comfy step.
type ComfyInput struct {
	Quantity      int            `json:"quantity"`
	ComfyWorkflow comfy.Workflow `json:"comfyWorkflow"`
}

// VideoInterpolationInput is the payload of a videoInterpolation step.
type VideoInterpolationInput struct {
	Video               string `json:"video"`
	InterpolationFactor int    `json:"interpolationFactor"`
	Model               string `json:"model"`
}

// VideoUpscalerInput is the payload of a videoUpscaler step.
type VideoUpscalerInput struct {
	Video       string  `json:"video"`
	ScaleFactor float64 `json:"scaleFactor"`
}

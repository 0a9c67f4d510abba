package compiler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"generation-workers/internal/common/config"
	"generation-workers/internal/common/database"
	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/common/metrics"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/ecosystems"
	"generation-workers/internal/generation/orchestrator"
	"generation-workers/internal/generation/workflows"
)

const removeBackgroundTemplate = `{"1":{"class_type":"LoadImage","inputs":{"image":"{{image}}"}},"2":{"class_type":"BiRefNetRMBG","inputs":{"image":["1",0]}}}`

const flux2Request = `{"ecosystem": "Flux2Klein", "baseModel": "Flux2Klein_9B", "prompt": "a cat",
	"aspectRatio": {"width": 1024, "height": 1024}, "resources": []}`

func createTestCompiler(t *testing.T) (*Compiler, *tracetest.SpanRecorder, *workflows.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.NewTestLogger(t)
	store := workflows.NewStore(database.WrapRedis(rdb), config.WorkflowsConfig{
		KeyPrefix: "workflow:",
		CacheTTL:  60000,
	}, log)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return New(ecosystems.DefaultRegistry(), store, tp.Tracer("test"), log), recorder, store
}

// ==========================
// Decode
// ==========================

func TestCompiler_DecodeSelectsVariant(t *testing.T) {
	c, _, _ := createTestCompiler(t)

	in, err := c.Decode([]byte(`{"ecosystem": "WanVideo", "baseModel": "WanVideo25_T2V", "prompt": "a fox", "duration": 10}`))
	require.NoError(t, err)

	wan, ok := in.(*generation.WanInput)
	require.True(t, ok, "got %T", in)
	assert.Equal(t, 10, wan.Duration)
	assert.Equal(t, "a fox", wan.Common().Prompt)
}

func TestCompiler_DecodeErrors(t *testing.T) {
	c, _, _ := createTestCompiler(t)

	tests := []struct {
		name string
		raw  string
		code apperrors.ErrorCode
	}{
		{name: "not json", raw: `{`, code: apperrors.ErrCodeInvalidGenerationInput},
		{name: "unknown ecosystem", raw: `{"ecosystem": "Midjourney", "prompt": "a cat"}`, code: apperrors.ErrCodeUnsupportedWorkflow},
		{name: "unknown base model", raw: `{"ecosystem": "Flux2Klein", "baseModel": "Flux2Klein_1B"}`, code: apperrors.ErrCodeUnsupportedWorkflow},
		{name: "wrong field type", raw: `{"ecosystem": "Kling", "duration": "long"}`, code: apperrors.ErrCodeInvalidGenerationInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

// ==========================
// CompileStep
// ==========================

func TestCompiler_CompileJSONFlux2Example(t *testing.T) {
	c, recorder, _ := createTestCompiler(t)

	s, err := c.CompileJSON(context.Background(), []byte(flux2Request))
	require.NoError(t, err)

	out, err := json.Marshal(s.Input)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"engine": "flux2", "model": "klein", "modelVersion": "9b", "operation": "createImage",
		"prompt": "a cat", "width": 1024, "height": 1024, "cfgScale": 1, "steps": 12,
		"sampleMethod": "euler", "schedule": "simple", "quantity": 1
	}`, string(out))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "compileStep", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestCompiler_CountsCompiledSteps(t *testing.T) {
	c, _, _ := createTestCompiler(t)
	counter := metrics.StepsCompiled.WithLabelValues(string(orchestrator.StepImageGen), "Flux2Klein/Flux2Klein_9B")
	before := testutil.ToFloat64(counter)

	_, err := c.CompileJSON(context.Background(), []byte(flux2Request))
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestCompiler_FailureIsRecorded(t *testing.T) {
	c, recorder, _ := createTestCompiler(t)
	counter := metrics.StepFailures.WithLabelValues(string(apperrors.ErrCodeMissingRequiredField))
	before := testutil.ToFloat64(counter)

	_, err := c.CompileJSON(context.Background(), []byte(`{"ecosystem": "Flux2Klein", "baseModel": "Flux2Klein_9B", "prompt": "a cat"}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMissingRequiredField, apperrors.CodeOf(err))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestCompiler_CompileStepUnsupportedRoute(t *testing.T) {
	c, _, _ := createTestCompiler(t)

	_, err := c.CompileStep(context.Background(), &generation.KlingInput{
		Base: generation.Base{Ecosystem: "Midjourney", Prompt: "a cat"},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnsupportedWorkflow, apperrors.CodeOf(err))
}

func TestCompiler_RejectsResourcesWithoutCatalogueData(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{
			name: "lora without model type",
			document: `{"ecosystem": "Flux2Klein", "baseModel": "Flux2Klein_9B", "prompt": "a cat",
				"aspectRatio": {"width": 1024, "height": 1024},
				"resources": [{"id": 11, "model": {"id": 0, "type": ""}}]}`,
		},
		{
			name: "lora without base model",
			document: `{"ecosystem": "WanVideo", "baseModel": "WanVideo25_T2V", "prompt": "a fox",
				"resources": [{"id": 11, "model": {"id": 5, "type": "LORA"}}]}`,
		},
		{
			name: "id-only checkpoint",
			document: `{"ecosystem": "SDXL", "baseModel": "SDXL 1.0", "prompt": "a cat",
				"aspectRatio": {"width": 1024, "height": 1024}, "model": {"id": 128078}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := createTestCompiler(t)

			step, err := c.CompileJSON(context.Background(), []byte(tt.document))
			require.Error(t, err)
			assert.Nil(t, step)
			assert.Equal(t, apperrors.ErrCodeResourceNotResolved, apperrors.CodeOf(err))
		})
	}
}

func TestCompiler_ComfyWorkflowFromStore(t *testing.T) {
	c, _, store := createTestCompiler(t)
	require.NoError(t, store.Set(context.Background(), ecosystems.RemoveBackgroundTemplateKey, &workflows.Definition{
		Key:      ecosystems.RemoveBackgroundTemplateKey,
		Type:     workflows.TypeImg2Img,
		Name:     "Remove background",
		Template: removeBackgroundTemplate,
	}))

	s, err := c.CompileJSON(context.Background(), []byte(`{"workflow": "img2img:remove-background", "prompt": "",
		"images": [{"url": "https://example.com/a.png?x=1&y=2"}]}`))
	require.NoError(t, err)
	require.Equal(t, orchestrator.StepComfy, s.Type)

	wf := s.Input.(orchestrator.ComfyInput).ComfyWorkflow
	assert.Equal(t, "https://example.com/a.png?x=1&y=2", wf["1"].Inputs["image"])
}

func TestCompiler_MissingTemplateIsConfigurationError(t *testing.T) {
	c, _, _ := createTestCompiler(t)

	_, err := c.CompileJSON(context.Background(), []byte(`{"workflow": "img2img:upscale", "prompt": "",
		"upscaleWidth": 2048, "upscaleHeight": 2048, "images": [{"url": "https://example.com/a.png"}]}`))
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeWorkflowNotFound, stdErr.Code)
	assert.Equal(t, apperrors.CategoryConfiguration, apperrors.GetErrorCategory(stdErr.Code))
}

func TestCompiler_NilTracer(t *testing.T) {
	c := New(ecosystems.DefaultRegistry(), nil, nil, logger.NewNoOpLogger())

	s, err := c.CompileJSON(context.Background(), []byte(flux2Request))
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepImageGen, s.Type)
}

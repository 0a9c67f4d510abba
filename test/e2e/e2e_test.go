//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"generation-workers/internal/common/config"
	"generation-workers/internal/common/database"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/compiler"
	"generation-workers/internal/generation/ecosystems"
	"generation-workers/internal/generation/orchestrator"
	"generation-workers/internal/generation/resources"
	"generation-workers/internal/generation/workflows"
	compilestep "generation-workers/internal/workers/generation/compile-step"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

const defaultResourceIndex = "model-versions"

// catalogue is the resource data seeded into both data sources.
var catalogue = []generation.ResourceData{
	{ID: 128078, BaseModel: "SDXL 1.0", Model: generation.ModelRef{ID: 101055, Type: generation.ModelTypeCheckpoint}},
	{ID: 11, BaseModel: "SDXL 1.0", Model: generation.ModelRef{ID: 1, Type: generation.ModelTypeLora}, TrainedWords: []string{"catstyle"}},
	{ID: 4201, BaseModel: "SDXL 1.0", Model: generation.ModelRef{ID: 4200, Type: generation.ModelTypeUpscaler}},
}

var definitions = []workflows.Definition{
	{
		Key:  ecosystems.UpscaleTemplateKey,
		Type: workflows.TypeImg2Img,
		Name: "Upscale",
		Template: `{
  "1": {"class_type": "LoadImage", "inputs": {"image": "{{image}}"}},
  "2": {"class_type": "UpscaleModelLoader", "inputs": {"model_name": "4x-UltraSharp.pth"}},
  "3": {"class_type": "ImageUpscaleWithModel", "inputs": {"upscale_model": ["2", 0], "image": ["1", 0]}},
  "4": {"class_type": "ImageScale", "inputs": {"width": "{{{upscaleWidth}}}", "height": "{{{upscaleHeight}}}", "image": ["3", 0]}}
}`,
	},
	{
		Key:  ecosystems.RemoveBackgroundTemplateKey,
		Type: workflows.TypeImg2Img,
		Name: "Remove background",
		Template: `{
  "1": {"class_type": "LoadImage", "inputs": {"image": "{{image}}"}},
  "2": {"class_type": "BiRefNetRMBG", "inputs": {"image": ["1", 0]}}
}`,
	},
}

func TestMain(m *testing.M) {
	var err error

	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Seed the resource catalogue in both data sources
	seedPostgresCatalogue(t, cfg)
	seedElasticsearchCatalogue(t, cfg)

	// 3. Publish workflow templates
	store := publishWorkflows(ctx, t, cfg)

	// 4. Compile requests through the worker against each data source
	testCompileStep(ctx, t, cfg, store)

	t.Log("✅ ALL TESTS PASSED: full E2E compile pipeline successful!")
}

// ==========================
// 1. Connectivity
// ==========================

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	if cfg.Resources.Index == "" {
		cfg.Resources.Index = defaultResourceIndex
	}

	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "❌ Elasticsearch client creation failed")
	assert.NoError(t, es.Ping(context.Background()), "❌ Elasticsearch ping failed")
	t.Log("✅ Elasticsearch connected")

	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Catalogue Setup
// ==========================

func seedPostgresCatalogue(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating catalogue tables and inserting test data...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS "Model" (
			id INTEGER PRIMARY KEY,
			type VARCHAR(50) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS "ModelVersion" (
			id INTEGER PRIMARY KEY,
			"modelId" INTEGER REFERENCES "Model"(id),
			"baseModel" VARCHAR(100) NOT NULL,
			"trainedWords" TEXT[] NOT NULL DEFAULT '{}'
		)`,
	}
	for _, q := range queries {
		_, err := dbClient.DB.Exec(q)
		require.NoError(t, err)
	}

	for _, r := range catalogue {
		_, err := dbClient.DB.Exec(`INSERT INTO "Model" (id, type) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			r.Model.ID, r.Model.Type)
		require.NoError(t, err)

		words := "{}"
		if len(r.TrainedWords) > 0 {
			words = "{" + r.TrainedWords[0] + "}"
		}
		_, err = dbClient.DB.Exec(`INSERT INTO "ModelVersion" (id, "modelId", "baseModel", "trainedWords")
			VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`, r.ID, r.Model.ID, r.BaseModel, words)
		require.NoError(t, err)
	}
	t.Log("✅ PostgreSQL catalogue seeded")
}

func seedElasticsearchCatalogue(t *testing.T, cfg *config.Config) {
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)

	for _, r := range catalogue {
		require.NoError(t, es.Put(context.Background(), cfg.Resources.Index, strconv.Itoa(r.ID), r))
	}
	t.Log("✅ Elasticsearch catalogue seeded")
}

// ==========================
// 3. Workflow Publishing
// ==========================

func publishWorkflows(ctx context.Context, t *testing.T, cfg *config.Config) *workflows.Store {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	store := workflows.NewStore(rdb, cfg.Workflows, logger.NewZapAdapter(zapLog))
	for i := range definitions {
		def := definitions[i]
		require.NoError(t, def.Validate())
		require.NoError(t, store.Set(ctx, def.Key, &def))
	}
	t.Logf("✅ Published %d workflow templates", len(definitions))
	return store
}

// ==========================
// 4. Compile Step
// ==========================

func testCompileStep(ctx context.Context, t *testing.T, cfg *config.Config, store *workflows.Store) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	log := logger.NewZapAdapter(zapLog)
	sources := map[string]resources.DataResolver{
		config.ResourceSourcePostgres:      resources.NewPostgresResolver(pg.DB),
		config.ResourceSourceElasticsearch: resources.NewElasticsearchResolver(es, cfg.Resources.Index),
	}

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			handler := createHandler(t, store, resources.NewCachedResolver(source, rdb, time.Minute, log))
			testSDXLTextToImage(ctx, t, handler)
			testUpscaleWithResources(ctx, t, handler)
			testRemoveBackground(ctx, t, handler)
		})
	}
}

func createHandler(t *testing.T, store *workflows.Store, resolver resources.DataResolver) *compilestep.Handler {
	log := logger.NewZapAdapter(zapLog)
	handler, err := compilestep.NewHandler(compilestep.HandlerOptions{
		CustomConfig: &compilestep.Config{Enabled: true, MaxJobsActive: 1, Timeout: 10 * time.Second},
		Compiler:     compiler.New(ecosystems.DefaultRegistry(), store, nil, log),
		Resolver:     resolver,
		Logger:       log,
	})
	require.NoError(t, err)
	return handler
}

func testSDXLTextToImage(ctx context.Context, t *testing.T, handler *compilestep.Handler) {
	output, err := handler.Execute(ctx, []byte(`{"requestId": "e2e-sdxl", "ecosystem": "SDXL", "baseModel": "SDXL 1.0",
		"prompt": "a cat", "aspectRatio": {"width": 1024, "height": 1024},
		"model": {"id": 128078}, "resources": [{"id": 11, "strength": 0.8}]}`))
	require.NoError(t, err)

	assert.Equal(t, string(orchestrator.StepTextToImage), output.StepType)
	input := output.Step.Input.(orchestrator.TextToImageInput)
	assert.Equal(t, "urn:air:sdxl:checkpoint:civitai:101055@128078", input.Model)
	assert.Contains(t, input.AdditionalNetworks, "urn:air:sdxl:lora:civitai:1@11")
	t.Log("✅ SDXL textToImage compiled")
}

func testUpscaleWithResources(ctx context.Context, t *testing.T, handler *compilestep.Handler) {
	output, err := handler.Execute(ctx, []byte(`{"requestId": "e2e-upscale", "workflow": "img2img:upscale", "prompt": "",
		"upscaleWidth": 2048, "upscaleHeight": 2048,
		"images": [{"url": "https://example.com/a.png"}],
		"resources": [{"id": 4201}]}`))
	require.NoError(t, err)

	assert.Equal(t, string(orchestrator.StepComfy), output.StepType)
	input := output.Step.Input.(orchestrator.ComfyInput)
	require.Contains(t, input.ComfyWorkflow, "4")
	assert.Equal(t, "ImageScale", input.ComfyWorkflow["4"].ClassType)
	assert.Equal(t, json.Number("2048"), input.ComfyWorkflow["4"].Inputs["width"])
	assert.Equal(t, "urn:air:sdxl:upscaler:civitai:4200@4201", input.ComfyWorkflow["2"].Inputs["model_name"])
	t.Log("✅ Upscale comfy workflow compiled")
}

func testRemoveBackground(ctx context.Context, t *testing.T, handler *compilestep.Handler) {
	output, err := handler.Execute(ctx, []byte(`{"requestId": "e2e-rmbg", "workflow": "img2img:remove-background", "prompt": "",
		"images": [{"url": "https://example.com/a.png"}]}`))
	require.NoError(t, err)

	input := output.Step.Input.(orchestrator.ComfyInput)
	assert.Equal(t, "https://example.com/a.png", input.ComfyWorkflow["1"].Inputs["image"])
	t.Log("✅ Background removal comfy workflow compiled")
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_CompileStep(b *testing.B) {
	cfg, _ := config.Load()
	dbClient, _ := database.NewPostgres(cfg.Database.Postgres)
	defer dbClient.Close()

	rdbClient, _ := database.NewRedis(cfg.Database.Redis)
	defer rdbClient.Close()

	log := logger.NewStructured("info", "json")
	handler, _ := compilestep.NewHandler(compilestep.HandlerOptions{
		CustomConfig: &compilestep.Config{Enabled: true, MaxJobsActive: 1, Timeout: 10 * time.Second},
		Compiler:     compiler.New(ecosystems.DefaultRegistry(), workflows.NewStore(rdbClient, cfg.Workflows, log), nil, log),
		Resolver:     resources.NewCachedResolver(resources.NewPostgresResolver(dbClient.DB), rdbClient, time.Minute, log),
		Logger:       log,
	})

	document := []byte(`{"ecosystem": "SDXL", "baseModel": "SDXL 1.0", "prompt": "a cat",
		"aspectRatio": {"width": 1024, "height": 1024}, "model": {"id": 128078}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), document)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: civitai
  redis:
    address: localhost:6379
workers:
  compile-generation-step:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "generation-workers", cfg.App.Name)
	assert.Equal(t, ResourceSourcePostgres, cfg.Resources.Source)
	assert.Equal(t, "model-versions", cfg.Resources.Index)
	assert.Equal(t, "workflow:", cfg.Workflows.KeyPrefix)
	assert.Equal(t, time.Minute, GetDuration(cfg.Workflows.CacheTTL))
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, ":8080", cfg.Metrics.Address)

	worker := GetWorkerConfig(cfg, "compile-generation-step")
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDRESS", "redis:6380")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    addresses: ["http://es:9200"]
  redis:
    address: ${TEST_REDIS_ADDRESS}
resources:
  source: elasticsearch
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", cfg.Database.Redis.Address)
	assert.Equal(t, ResourceSourceElasticsearch, cfg.Resources.Source)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing broker",
			content: "database:\n  redis:\n    address: localhost:6379\n",
			errMsg:  "camunda.broker_address is required",
		},
		{
			name:    "missing redis",
			content: "camunda:\n  broker_address: localhost:26500\n",
			errMsg:  "database.redis.address is required",
		},
		{
			name: "postgres source without host",
			content: "camunda:\n  broker_address: localhost:26500\ndatabase:\n  redis:\n    address: localhost:6379\n" +
				"  postgres:\n    database: civitai\n",
			errMsg: "database.postgres.host is required",
		},
		{
			name: "elasticsearch source without addresses",
			content: "camunda:\n  broker_address: localhost:26500\ndatabase:\n  redis:\n    address: localhost:6379\n" +
				"resources:\n  source: elasticsearch\n",
			errMsg: "database.elasticsearch.addresses is required",
		},
		{
			name: "unknown source",
			content: "camunda:\n  broker_address: localhost:26500\ndatabase:\n  redis:\n    address: localhost:6379\n" +
				"resources:\n  source: mongo\n",
			errMsg: "resources.source must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"disabled": {Enabled: false}}}

	assert.False(t, IsWorkerEnabled(cfg, "disabled"))
	assert.True(t, IsWorkerEnabled(cfg, "unconfigured"))
}

// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"generation-workers/internal/common/camunda"
	"generation-workers/internal/common/config"
	"generation-workers/internal/common/database"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/common/observability"
	"generation-workers/internal/generation/compiler"
	"generation-workers/internal/generation/ecosystems"
	"generation-workers/internal/generation/resources"
	"generation-workers/internal/generation/workflows"

	cs "generation-workers/internal/workers/generation/compile-step"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("resourceSource", cfg.Resources.Source),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init resource catalogue ---
	catalogue, closeCatalogue := openCatalogue(ctx, cfg, zapLog)
	defer closeCatalogue()

	resolver := resources.NewCachedResolver(catalogue, rdb, config.GetDuration(cfg.Resources.CacheTTL), log)
	store := workflows.NewStore(rdb, cfg.Workflows, log)
	stepCompiler := compiler.New(ecosystems.DefaultRegistry(), store, obs.Tracer(), log)

	// --- Register workers ---
	var started []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, cs.TaskType) {
		handler, err := cs.NewHandler(cs.HandlerOptions{
			AppConfig:     cfg,
			Compiler:      stepCompiler,
			Resolver:      resolver,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			zapLog.Fatal("failed to create compile-step handler", zap.Error(err))
		}
		started = append(started, camunda.StartWorker(
			zeebe.GetClient(), cs.TaskType, config.GetWorkerConfig(cfg, cs.TaskType), handler.Handle, log,
		))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", cs.TaskType))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(started)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status, code := "ready", http.StatusOK
			if err := readiness(r.Context(), zeebe, rdb); err != nil {
				status, code = err.Error(), http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range started {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// openCatalogue connects the resource data source selected by
// resources.source.
func openCatalogue(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (resources.DataResolver, func()) {
	switch cfg.Resources.Source {
	case config.ResourceSourceElasticsearch:
		var esClient *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Resources.Index))
		return resources.NewElasticsearchResolver(esClient, cfg.Resources.Index), func() {}

	default:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
		return resources.NewPostgresResolver(pg.DB), func() { _ = pg.Close() }
	}
}

func readiness(ctx context.Context, zeebe *camunda.Client, rdb *database.RedisClient) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("redis unavailable")
	}
	if err := zeebe.HealthCheck(ctx); err != nil {
		return fmt.Errorf("zeebe unavailable")
	}
	return nil
}

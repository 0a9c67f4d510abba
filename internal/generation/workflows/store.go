package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"generation-workers/internal/common/config"
	"generation-workers/internal/common/database"
	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/common/metrics"
)

type cacheEntry struct {
	definition *Definition
	loadedAt   time.Time
}

// Store is the shared workflow definition cache. Definitions live in Redis
// under <prefix><key>; a short lived process-local layer sits in front.
type Store struct {
	redis  *database.RedisClient
	prefix string
	ttl    time.Duration
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

func NewStore(rdb *database.RedisClient, cfg config.WorkflowsConfig, log logger.Logger) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "workflow:"
	}
	return &Store{
		redis:  rdb,
		prefix: prefix,
		ttl:    config.GetDuration(cfg.CacheTTL),
		logger: log.WithFields(logger.Fields{"component": "workflow-store"}),
		cache:  make(map[string]*cacheEntry),
		now:    time.Now,
	}
}

// Get returns the definition stored under key.
func (s *Store) Get(ctx context.Context, key string) (*Definition, error) {
	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && s.now().Sub(entry.loadedAt) < s.ttl {
		s.mu.RUnlock()
		metrics.WorkflowTemplateLookups.WithLabelValues("local").Inc()
		return entry.definition, nil
	}
	s.mu.RUnlock()

	var def Definition
	if err := s.redis.GetJSON(ctx, s.prefix+key, &def); err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.WorkflowTemplateLookups.WithLabelValues("miss").Inc()
			return nil, apperrors.NewWorkflowNotFoundError(key)
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, apperrors.NewInvalidWorkflowDefinitionError(key, err.Error())
		}
		s.logger.Warn("workflow cache read failed", logger.Fields{"key": key, "error": err})
		return nil, apperrors.NewWorkflowCacheUnavailableError(key, err)
	}
	metrics.WorkflowTemplateLookups.WithLabelValues("redis").Inc()

	s.remember(key, &def)
	return &def, nil
}

// Set validates def and publishes it under key, replacing any previous
// template with the same key.
func (s *Store) Set(ctx context.Context, key string, def *Definition) error {
	if def.Key == "" {
		def.Key = key
	}
	if def.Key != key {
		return apperrors.NewInvalidWorkflowDefinitionError(key, "definition key "+def.Key+" does not match")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	if err := s.redis.SetJSON(ctx, s.prefix+key, def, 0); err != nil {
		return apperrors.NewWorkflowCacheUnavailableError(key, err)
	}
	s.remember(key, def)

	s.logger.Info("workflow published", logger.Fields{"key": key, "type": def.Type})
	return nil
}

// Compile loads the definition under key and substitutes params into it.
func (s *Store) Compile(ctx context.Context, key string, params map[string]interface{}) (json.RawMessage, error) {
	def, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	out, err := Compile(def.Template, params)
	if err != nil {
		return nil, apperrors.NewWorkflowCompilationError(key, err)
	}
	return out, nil
}

// Invalidate drops key from the process-local layer.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

func (s *Store) remember(key string, def *Definition) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[key] = &cacheEntry{definition: def, loadedAt: s.now()}
	s.mu.Unlock()
}

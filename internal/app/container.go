package app

import (
	"context"
	"fmt"

	"github.com/kapu/anirec-backend-go/internal/config"
	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/server"
	"github.com/kapu/anirec-backend-go/internal/service"
	"github.com/kapu/anirec-backend-go/internal/service/ai"
	"github.com/kapu/anirec-backend-go/internal/service/cache"
	"github.com/kapu/anirec-backend-go/internal/service/recommend"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing the HTTP server.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	cacheSvc  *cache.CacheService
	engine    *recommend.Engine
	assistant *ai.Assistant
}

// NewServer wires the HTTP surface against the pre-built dependency graph.
func (c *Container) NewServer() (*server.Server, error) {
	if c == nil || c.engine == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return server.New(c.engine, c.assistant, c.cacheSvc, server.Options{
		Port:           c.Config.Server.Port,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
	}, c.Logger), nil
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.cacheSvc != nil {
		_ = c.cacheSvc.Close()
	}
}

// Build assembles all infrastructure services. Heavy-weight initialization
// (Redis, AI clients) happens here so the server stays focused on routing.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	if err := cacheSvc.WaitUntilReady(ctx, constants.RedisConfig.ReadyTimeout); err != nil {
		return nil, fmt.Errorf("redis not reachable: %w", err)
	}

	malSvc := service.NewMALService(cfg.MAL.BaseURL, cacheSvc, logger)
	engine := recommend.NewEngine(malSvc, nil, logger)

	// The Gemini key is optional: without it the chat endpoint answers with
	// a canned message instead of failing.
	var generator ai.TextGenerator
	if cfg.Gemini.APIKey != "" {
		modelManager, mmErr := ai.NewModelManager(ctx, ai.ModelManagerConfig{
			GeminiAPIKey:   cfg.Gemini.APIKey,
			OpenAIAPIKey:   cfg.OpenAI.APIKey,
			EnableFallback: cfg.OpenAI.EnableFallback,
		}, logger)
		if mmErr != nil {
			return nil, fmt.Errorf("failed to create model manager: %w", mmErr)
		}
		generator = modelManager
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI chat disabled")
	}
	assistant := ai.NewAssistant(generator, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		cacheSvc:  cacheSvc,
		engine:    engine,
		assistant: assistant,
	}, nil
}

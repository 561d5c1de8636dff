package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/domain"
	"go.uber.org/zap"
)

// Recommender generates a recommendation bundle for a MAL access token.
type Recommender interface {
	Generate(ctx context.Context, token string) (*domain.RecommendationBundle, error)
}

// ChatAssistant answers a user message about the current recommendations.
type ChatAssistant interface {
	Chat(ctx context.Context, message string, contextTitles, suggestions []string) string
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	IsConnected(ctx context.Context) bool
}

type Server struct {
	engine    Recommender
	assistant ChatAssistant
	cache     HealthChecker
	logger    *zap.Logger
	httpSrv   *http.Server
}

type Options struct {
	Port           int
	AllowedOrigins []string
}

func New(engine Recommender, assistant ChatAssistant, cache HealthChecker, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		engine:    engine,
		assistant: assistant,
		cache:     cache,
		logger:    logger,
	}

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.buildRouter(opts.AllowedOrigins),
		ReadTimeout:  constants.ServerConfig.ReadTimeout,
		WriteTimeout: constants.ServerConfig.WriteTimeout,
	}

	return s
}

func (s *Server) buildRouter(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/recommendations", s.handleRecommendations)
		api.POST("/ai-chat", s.handleAIChat)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

package server

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/kapu/anirec-backend-go/pkg/errors"
	"go.uber.org/zap"
)

type chatRequest struct {
	Message     string   `json:"message" binding:"required"`
	Context     []string `json:"context"`
	Suggestions []string `json:"suggestions"`
}

type chatResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *gin.Context) {
	redisOK := s.cache.IsConnected(c.Request.Context())
	status := http.StatusOK
	if !redisOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ok", false: "degraded"}[redisOK],
		"redis":  redisOK,
	})
}

func (s *Server) handleRecommendations(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	bundle, err := s.engine.Generate(c.Request.Context(), token)
	if err != nil {
		var authErr *apperrors.AuthError
		if stderrors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired access token"})
			return
		}
		s.logger.Error("recommendation generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate recommendations"})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

func (s *Server) handleAIChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply := s.assistant.Chat(c.Request.Context(), req.Message, req.Context, req.Suggestions)
	c.JSON(http.StatusOK, chatResponse{Message: reply})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	// Some clients send the raw token without the scheme.
	return strings.TrimSpace(header)
}

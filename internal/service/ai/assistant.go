package ai

import (
	"context"
	stderrors "errors"

	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/prompt"
	"go.uber.org/zap"
)

// Fixed replies for each failure class. The chat endpoint always answers
// 200 with a message, never a provider error.
const (
	replyNotConfigured = "The AI assistant isn't set up on this server yet, but your recommendations above are ready to explore!"
	replyUnavailable   = "I'm having trouble reaching my brain right now. Please try again in a little while!"
	replyRateLimited   = "I've been chatting a bit too much and need a short break. Please try again later!"
	replyTimeout       = "That took longer than expected and I lost my train of thought. Mind asking again?"
	replySafetyBlock   = "I can't help with that one, but I'd love to talk about your anime recommendations!"
	replyEmptyMessage  = "I didn't catch that. What would you like to know about your recommendations?"
)

// TextGenerator is what the assistant needs from the model layer.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

// Assistant turns chat requests into prompts and degrades gracefully when
// generation fails. A nil generator means no API key was configured.
type Assistant struct {
	generator TextGenerator
	logger    *zap.Logger
}

func NewAssistant(generator TextGenerator, logger *zap.Logger) *Assistant {
	return &Assistant{
		generator: generator,
		logger:    logger,
	}
}

// Chat answers a user message about their recommendations. The returned
// string is always safe to show the user.
func (a *Assistant) Chat(ctx context.Context, message string, contextTitles, suggestions []string) string {
	message = truncate(message, constants.AIInputLimits.MaxQueryLength)
	if message == "" {
		return replyEmptyMessage
	}
	if a.generator == nil {
		return replyNotConfigured
	}

	contextTitles = capTitles(contextTitles, constants.AIInputLimits.MaxContextTitles)
	suggestions = capTitles(suggestions, constants.AIInputLimits.MaxContextTitles)

	text, meta, err := a.generator.GenerateText(ctx, prompt.BuildChat(message, contextTitles, suggestions), PresetCreative, nil)
	if err != nil {
		a.logger.Warn("chat generation failed", zap.Error(err))
		return replyForError(err)
	}

	if meta != nil && meta.UsedFallback {
		a.logger.Info("chat answered via fallback provider", zap.String("model", meta.Model))
	}
	return text
}

func replyForError(err error) string {
	switch {
	case stderrors.Is(err, ErrRateLimited):
		return replyRateLimited
	case stderrors.Is(err, ErrTimeout):
		return replyTimeout
	case stderrors.Is(err, ErrSafetyBlocked):
		return replySafetyBlock
	default:
		return replyUnavailable
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func capTitles(titles []string, limit int) []string {
	if len(titles) > limit {
		return titles[:limit]
	}
	return titles
}

package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinephile/internal/logging"
	"cinephile/internal/metrics"
	"cinephile/internal/services"
	"cinephile/internal/services/llm"
)

// TriviaSystemDirective frames every trivia request.
const TriviaSystemDirective = "You are a concise, factual movie trivia assistant. Only provide facts you are reasonably certain about. " +
	"If you are unsure, say 'I might be mistaken' and avoid fabricating details. " +
	"When possible, add a short provenance like 'source: IMDB'."

var errNoGenerator = errors.New("trivia generator not configured")

// TriviaPrompt builds the user prompt for a title.
func TriviaPrompt(title string) string {
	return fmt.Sprintf("Provide one surprising, factual, and verifiable piece of trivia about the movie '%s'. "+
		"Make it sound playful but accurate. Include a short source reference if possible.", title)
}

// Trivia asks the text generator for one piece of trivia about title. Any
// generator failure, including missing credentials, is returned as text.
func (s *Service) Trivia(ctx context.Context, title string) string {
	started := time.Now()
	title = strings.TrimSpace(title)
	ctx = services.WithOperation(ctx, "trivia")
	logger := logging.WithContext(ctx, s.logger)

	answer, err := s.triviaAnswer(ctx, title)
	if err != nil {
		s.observe("trivia", metrics.OutcomeError, started)
		logging.WarnWithContext(logger, "trivia generation failed", "trivia_failed",
			logging.String(logging.FieldTitle, title),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check llm.api_key and network access"),
		)
		answer = "❌ Error calling trivia service: " + err.Error()
	} else {
		s.observe("trivia", metrics.OutcomeHit, started)
	}
	return fmt.Sprintf("🎬 Here's a juicy secret about '%s': %s", title, answer)
}

func (s *Service) triviaAnswer(ctx context.Context, title string) (string, error) {
	model := s.trivia.Model
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, title, model)
		switch {
		case err != nil:
			s.logger.Warn("trivia cache read failed", logging.Error(err))
		case ok:
			metrics.RecordTriviaCache(true)
			return cached, nil
		default:
			metrics.RecordTriviaCache(false)
		}
	}

	if s.generator == nil {
		return "", errNoGenerator
	}
	if s.trivia.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.trivia.Timeout)
		defer cancel()
	}
	answer, err := s.generator.Generate(ctx, llm.Request{
		System:      TriviaSystemDirective,
		Prompt:      TriviaPrompt(title),
		Model:       model,
		MaxTokens:   s.trivia.MaxTokens,
		Temperature: s.trivia.Temperature,
	})
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)

	if s.cache != nil {
		if err := s.cache.Put(ctx, title, model, answer); err != nil {
			s.logger.Warn("trivia cache write failed", logging.Error(err))
		}
	}
	return answer, nil
}

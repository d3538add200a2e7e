package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// Translation sampling is pinned low for stable, repeatable output.
const (
	translationTemperature = 0.2
	translationTopP        = 0.75
)

const translationSystemPrompt = "You are a professional translator. Translate the given Chinese text to English accurately and naturally."

// Service normalizes query language before downstream search and question
// generation. Queries containing CJK ideographs are translated to English
// through the translation model; anything else passes through untouched.
//
// Translation is best-effort: every failure mode (API error, malformed
// JSON, missing field) returns the original query so the pipeline keeps
// moving with degraded rather than broken input.
type Service struct {
	chatService interfaces.ChatService
	config      *common.LLMConfig
	logger      arbor.ILogger
}

var _ interfaces.TranslationService = (*Service)(nil)

// NewTranslateService creates a new translation service
func NewTranslateService(chatService interfaces.ChatService, config *common.LLMConfig, logger arbor.ILogger) *Service {
	return &Service{
		chatService: chatService,
		config:      config,
		logger:      logger,
	}
}

// NeedsTranslation reports whether the query contains CJK unified
// ideographs (U+4E00 through U+9FFF). Pure function, no I/O.
func NeedsTranslation(query string) bool {
	for _, r := range query {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

// TranslateToEnglish returns the English form of the query. Queries without
// CJK characters are returned unchanged without any model call.
func (s *Service) TranslateToEnglish(ctx context.Context, query string) string {
	if !NeedsTranslation(query) {
		return query
	}

	messages := []interfaces.Message{
		{Role: "system", Content: translationSystemPrompt},
		{
			Role: "user",
			Content: fmt.Sprintf("Translate the following query to English: %s"+
				"Return the response as a JSON object with a 'translation' field.", query),
		},
	}

	response, err := s.chatService.Chat(ctx, messages, interfaces.ChatOptions{
		Model:        s.config.TranslationModel,
		Temperature:  translationTemperature,
		TopP:         translationTopP,
		JSONResponse: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Translation call failed, using original query")
		return query
	}

	var result struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		s.logger.Error().Err(err).Str("raw_response", response).Msg("Failed to parse translation response, using original query")
		return query
	}
	if result.Translation == "" {
		s.logger.Warn().Str("raw_response", response).Msg("Translation response missing translation field, using original query")
		return query
	}

	s.logger.Info().
		Str("original", query).
		Str("translated", result.Translation).
		Msg("Query translated to English")

	return result.Translation
}

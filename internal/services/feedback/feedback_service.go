package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// Service generates clarifying follow-up questions for a research topic.
// The pipeline is linear: normalize language, gather search context, issue
// one reasoning-model call, decode the question list. Every stage degrades
// on failure rather than aborting, so the worst outcome is an empty list.
type Service struct {
	chatService   interfaces.ChatService
	translator    interfaces.TranslationService
	searchService interfaces.WebSearchService
	llmConfig     *common.LLMConfig
	searchConfig  *common.SearchConfig
	logger        arbor.ILogger
}

// Compile-time assertion: Service implements FeedbackService
var _ interfaces.FeedbackService = (*Service)(nil)

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	chatService interfaces.ChatService,
	translator interfaces.TranslationService,
	searchService interfaces.WebSearchService,
	llmConfig *common.LLMConfig,
	searchConfig *common.SearchConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		chatService:   chatService,
		translator:    translator,
		searchService: searchService,
		llmConfig:     llmConfig,
		searchConfig:  searchConfig,
		logger:        logger,
	}
}

// systemPrompt frames the model as a research assistant. The timestamp
// keeps recency-sensitive topics anchored to the present.
func systemPrompt() string {
	return fmt.Sprintf(`You are an expert research assistant. Today is %s. You help users sharpen their research direction by asking precise clarifying questions. Treat the user as a highly experienced analyst: be specific, avoid generic questions, and surface the dimensions of the topic the user may not have considered.`,
		time.Now().Format("Mon, 02 Jan 2006"))
}

// GenerateFeedback produces 3-5 follow-up questions for the query.
//
// With search enhancement enabled the query is first translated to English
// when needed, then searched, and the results are embedded as context in
// the prompt. The translated query replaces the original for both the
// search and the prompt. All failures degrade: a failed search yields an
// empty context, a failed or unparseable model response yields an empty
// question list.
func (s *Service) GenerateFeedback(ctx context.Context, query string, useSearchEnhancement bool) []string {
	searchContext := ""
	if useSearchEnhancement {
		query = s.translator.TranslateToEnglish(ctx, query)

		result := s.searchService.Search(ctx, query, s.searchConfig.Limit)
		searchContext = BuildContext(result)

		s.logger.Debug().
			Str("query", query).
			Int("hits", len(result.Hits)).
			Int("context_length", len(searchContext)).
			Msg("Search context assembled for question generation")
	}

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt()},
		{
			Role: "user",
			Content: fmt.Sprintf("Given this research topic: %s%s, "+
				"generate 3-5 follow-up questions to better understand the user's research needs. "+
				"Return the response as a JSON object with a 'questions' array field.", query, searchContext),
		},
	}

	response, err := s.chatService.Chat(ctx, messages, interfaces.ChatOptions{
		Model:        s.llmConfig.ReasoningModel,
		JSONResponse: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Question generation call failed")
		return []string{}
	}

	var result struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		s.logger.Error().
			Err(err).
			Str("raw_response", response).
			Msg("Failed to parse question generation response")
		return []string{}
	}
	if result.Questions == nil {
		s.logger.Warn().Str("raw_response", response).Msg("Question generation response missing questions field")
		return []string{}
	}

	s.logger.Info().
		Str("query", query).
		Int("question_count", len(result.Questions)).
		Bool("search_enhanced", useSearchEnhancement).
		Msg("Follow-up questions generated")

	return result.Questions
}

package feedback

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
)

type mockChatService struct {
	chatFunc func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error)
	calls    int
}

func (m *mockChatService) Chat(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	m.calls++
	if m.chatFunc != nil {
		return m.chatFunc(ctx, messages, opts)
	}
	return `{"questions": []}`, nil
}

func (m *mockChatService) Close() error { return nil }

type mockTranslator struct {
	translateFunc func(ctx context.Context, query string) string
	calls         int
}

func (m *mockTranslator) TranslateToEnglish(ctx context.Context, query string) string {
	m.calls++
	if m.translateFunc != nil {
		return m.translateFunc(ctx, query)
	}
	return query
}

type mockSearchService struct {
	searchFunc func(ctx context.Context, query string, limit int) *models.WebSearchResult
	calls      int
}

func (m *mockSearchService) Search(ctx context.Context, query string, limit int) *models.WebSearchResult {
	m.calls++
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit)
	}
	return &models.WebSearchResult{Hits: []models.WebSearchHit{}}
}

func (m *mockSearchService) Engine() string { return "mock" }

func newTestFeedbackService(chat *mockChatService, translator *mockTranslator, search *mockSearchService) *Service {
	return NewFeedbackService(
		chat,
		translator,
		search,
		&common.LLMConfig{ReasoningModel: "o3-mini"},
		&common.SearchConfig{Limit: 5},
		arbor.NewLogger(),
	)
}

func TestGenerateFeedback_EnhancementOff(t *testing.T) {
	chat := &mockChatService{
		chatFunc: func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
			assert.Equal(t, "o3-mini", opts.Model)
			assert.True(t, opts.JSONResponse)
			assert.Len(t, messages, 2)
			assert.Contains(t, messages[1].Content, "What is quantum computing?")
			// No search context appended
			assert.NotContains(t, messages[1].Content, "background information")
			return `{"questions": ["Q1?", "Q2?", "Q3?"]}`, nil
		},
	}
	translator := &mockTranslator{}
	search := &mockSearchService{}
	svc := newTestFeedbackService(chat, translator, search)

	questions := svc.GenerateFeedback(context.Background(), "What is quantum computing?", false)
	assert.Equal(t, []string{"Q1?", "Q2?", "Q3?"}, questions)
	assert.Equal(t, 1, chat.calls)
	assert.Zero(t, translator.calls)
	assert.Zero(t, search.calls)
}

func TestGenerateFeedback_EnhancementOn(t *testing.T) {
	var promptedQuery string
	chat := &mockChatService{
		chatFunc: func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
			promptedQuery = messages[1].Content
			return `{"questions": ["Q1?"]}`, nil
		},
	}
	translator := &mockTranslator{
		translateFunc: func(ctx context.Context, query string) string {
			return "translated query"
		},
	}
	search := &mockSearchService{
		searchFunc: func(ctx context.Context, query string, limit int) *models.WebSearchResult {
			// Search receives the translated query, not the original
			assert.Equal(t, "translated query", query)
			assert.Equal(t, 5, limit)
			return &models.WebSearchResult{
				Hits:   []models.WebSearchHit{{Markdown: "background facts"}},
				Answer: "short answer",
			}
		},
	}
	svc := newTestFeedbackService(chat, translator, search)

	questions := svc.GenerateFeedback(context.Background(), "original query", true)
	assert.Equal(t, []string{"Q1?"}, questions)
	assert.Equal(t, 1, translator.calls)
	assert.Equal(t, 1, search.calls)

	// The prompt carries the translated query and the assembled context
	assert.Contains(t, promptedQuery, "translated query")
	assert.NotContains(t, promptedQuery, "original query")
	assert.Contains(t, promptedQuery, "<content>\nbackground facts\n</content>")
	assert.Contains(t, promptedQuery, "short answer")
}

func TestGenerateFeedback_MalformedResponse(t *testing.T) {
	chat := &mockChatService{
		chatFunc: func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
			return "this is not json", nil
		},
	}
	svc := newTestFeedbackService(chat, &mockTranslator{}, &mockSearchService{})

	questions := svc.GenerateFeedback(context.Background(), "topic", false)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
}

func TestGenerateFeedback_ChatError(t *testing.T) {
	chat := &mockChatService{
		chatFunc: func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
			return "", fmt.Errorf("model unavailable")
		},
	}
	svc := newTestFeedbackService(chat, &mockTranslator{}, &mockSearchService{})

	questions := svc.GenerateFeedback(context.Background(), "topic", false)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
}

func TestGenerateFeedback_MissingQuestionsField(t *testing.T) {
	chat := &mockChatService{
		chatFunc: func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
			return `{"unrelated": true}`, nil
		},
	}
	svc := newTestFeedbackService(chat, &mockTranslator{}, &mockSearchService{})

	questions := svc.GenerateFeedback(context.Background(), "topic", false)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
}

func TestGenerateFeedback_EmptySearchStillPrompts(t *testing.T) {
	var prompted string
	chat := &mockChatService{
		chatFunc: func(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
			prompted = messages[1].Content
			return `{"questions": ["Q1?"]}`, nil
		},
	}
	svc := newTestFeedbackService(chat, &mockTranslator{}, &mockSearchService{})

	questions := svc.GenerateFeedback(context.Background(), "topic", true)
	assert.Equal(t, []string{"Q1?"}, questions)
	// A failed or empty search still yields the context preamble
	assert.True(t, strings.Contains(prompted, "Here is some background information about the topic:"))
	assert.NotContains(t, prompted, "<content>")
}

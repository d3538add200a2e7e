package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

func newTestRouter(defaultProvider string) *Router {
	return &Router{
		config: &common.LLMConfig{
			DefaultProvider: defaultProvider,
		},
	}
}

func TestDetectProvider(t *testing.T) {
	r := newTestRouter("openai")

	tests := []struct {
		name     string
		model    string
		expected ProviderType
	}{
		{"empty model uses default", "", ProviderOpenAI},
		{"claude model name", "claude-sonnet-4-20250514", ProviderClaude},
		{"claude prefix", "claude/claude-sonnet-4-20250514", ProviderClaude},
		{"anthropic prefix", "anthropic/claude-3-5-haiku", ProviderClaude},
		{"gpt model name", "gpt-4o-mini", ProviderOpenAI},
		{"o3 reasoning model", "o3-mini", ProviderOpenAI},
		{"o1 reasoning model", "o1-preview", ProviderOpenAI},
		{"openai prefix", "openai/gpt-4o", ProviderOpenAI},
		{"unknown model uses default", "mystery-model-v2", ProviderOpenAI},
		{"mixed case", "Claude-Sonnet-4", ProviderClaude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.DetectProvider(tt.model))
		})
	}
}

func TestDetectProvider_ClaudeDefault(t *testing.T) {
	r := newTestRouter("claude")

	assert.Equal(t, ProviderClaude, r.DetectProvider(""))
	assert.Equal(t, ProviderClaude, r.DetectProvider("mystery-model-v2"))
	assert.Equal(t, ProviderOpenAI, r.DetectProvider("gpt-4o-mini"))
}

func TestNormalizeModel(t *testing.T) {
	assert.Equal(t, "gpt-4o", NormalizeModel("openai/gpt-4o"))
	assert.Equal(t, "claude-sonnet-4-20250514", NormalizeModel("claude/claude-sonnet-4-20250514"))
	assert.Equal(t, "claude-3-5-haiku", NormalizeModel("anthropic/claude-3-5-haiku"))
	assert.Equal(t, "o3-mini", NormalizeModel("o3-mini"))
}

func TestConvertMessagesToOpenAI(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are helpful"},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
		{Role: "user", Content: "How are you?"},
	}

	converted, err := convertMessagesToOpenAI(messages)
	require.NoError(t, err)
	assert.Len(t, converted, 4)
}

func TestConvertMessagesToOpenAI_Empty(t *testing.T) {
	_, err := convertMessagesToOpenAI(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are helpful"},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
	}

	converted, systemText, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Equal(t, "You are helpful", systemText)
	// System messages are extracted, not included in the message array
	assert.Len(t, converted, 2)
}

func TestConvertMessagesToClaude_RequiresUserMessage(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are helpful"},
	}

	_, _, err := convertMessagesToClaude(messages)
	assert.Error(t, err)
}

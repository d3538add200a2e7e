package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderOpenAI uses the OpenAI chat completions API
	ProviderOpenAI ProviderType = "openai"
	// ProviderClaude uses the Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// Router implements interfaces.ChatService by dispatching each call to the
// provider inferred from the requested model name. Providers are constructed
// once at startup; a call routed to an unconfigured provider returns an
// error, which callers degrade per their own failure policy.
type Router struct {
	config *common.LLMConfig
	logger arbor.ILogger
	openai *OpenAIService
	claude *ClaudeService
}

// Compile-time assertion: Router implements ChatService
var _ interfaces.ChatService = (*Router)(nil)

// NewChatService creates the provider router. The default provider must be
// configured with an API key; the alternate provider is optional and only
// constructed when its key is present.
func NewChatService(config *common.LLMConfig, logger arbor.ILogger) (*Router, error) {
	r := &Router{
		config: config,
		logger: logger,
	}

	if config.OpenAIAPIKey != "" {
		svc, err := NewOpenAIService(config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI provider: %w", err)
		}
		r.openai = svc
	}

	if config.AnthropicAPIKey != "" {
		svc, err := NewClaudeService(config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Claude provider: %w", err)
		}
		r.claude = svc
	}

	if r.openai == nil && r.claude == nil {
		return nil, fmt.Errorf("no LLM provider configured (set OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	}

	logger.Info().
		Bool("openai", r.openai != nil).
		Bool("claude", r.claude != nil).
		Str("default_provider", config.DefaultProvider).
		Str("reasoning_model", config.ReasoningModel).
		Str("translation_model", config.TranslationModel).
		Msg("Chat service initialized")

	return r, nil
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
//   - "claude-sonnet-4-20250514" -> Claude
//   - "claude/claude-sonnet-4-20250514" -> Claude (with prefix)
//   - "gpt-4o-mini", "o3-mini" -> OpenAI
//   - Empty string -> uses default provider from config
func (r *Router) DetectProvider(model string) ProviderType {
	if model == "" {
		return ProviderType(r.config.DefaultProvider)
	}

	model = strings.ToLower(model)

	// Check for explicit provider prefix
	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "openai/") {
		return ProviderOpenAI
	}

	// Check for model name patterns
	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") {
		return ProviderOpenAI
	}

	// Default to configured provider
	return ProviderType(r.config.DefaultProvider)
}

// NormalizeModel removes the provider prefix from a model name if present
func NormalizeModel(model string) string {
	for _, prefix := range []string{"claude/", "anthropic/", "openai/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// Chat dispatches the completion to the provider inferred from opts.Model
func (r *Router) Chat(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	provider := r.DetectProvider(opts.Model)
	opts.Model = NormalizeModel(opts.Model)

	switch provider {
	case ProviderClaude:
		if r.claude == nil {
			return "", fmt.Errorf("claude provider requested for model %q but not configured", opts.Model)
		}
		return r.claude.Chat(ctx, messages, opts)
	case ProviderOpenAI:
		if r.openai == nil {
			return "", fmt.Errorf("openai provider requested for model %q but not configured", opts.Model)
		}
		return r.openai.Chat(ctx, messages, opts)
	default:
		return "", fmt.Errorf("unknown LLM provider %q", provider)
	}
}

// Close releases all provider resources
func (r *Router) Close() error {
	if r.openai != nil {
		if err := r.openai.Close(); err != nil {
			return err
		}
	}
	if r.claude != nil {
		if err := r.claude.Close(); err != nil {
			return err
		}
	}
	return nil
}

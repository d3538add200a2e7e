package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"golang.org/x/time/rate"
)

const claudeDefaultMaxTokens = 8192

// ClaudeService implements chat completions using the Anthropic Claude API.
type ClaudeService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  anthropic.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// convertMessagesToClaude converts []interfaces.Message to Claude MessageParam
// format. System messages are extracted separately for the System parameter;
// the remaining messages keep their chronological ordering.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		switch msg.Role {
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			// Default to user for unknown roles
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a new Claude chat service instance
func NewClaudeService(config *common.LLMConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set via ANTHROPIC_API_KEY or llm.anthropic_api_key in config)")
	}

	service := &ClaudeService{
		config:  config,
		logger:  logger,
		client:  anthropic.NewClient(option.WithAPIKey(config.AnthropicAPIKey)),
		limiter: rate.NewLimiter(rate.Every(config.CallSpacing()), 1),
		timeout: config.CallTimeout(),
	}

	logger.Debug().
		Dur("timeout", service.timeout).
		Msg("Claude chat service initialized")

	return service, nil
}

// Chat generates a completion using the Claude messages API.
// Claude has no native JSON response mode, so JSONResponse is enforced
// through an appended system instruction.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	if opts.JSONResponse {
		instruction := "Respond with a single valid JSON object only, with no surrounding prose or markdown fences."
		if systemText == "" {
			systemText = instruction
		} else {
			systemText = systemText + "\n\n" + instruction
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := opts.Model
	if model == "" {
		model = s.config.ReasoningModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = claudeDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = anthropic.Float(opts.TopP)
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	startTime := time.Now()
	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	s.logger.Debug().
		Str("model", model).
		Int("message_count", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed")

	return response.String(), nil
}

// Close releases resources held by the service
func (s *ClaudeService) Close() error {
	// The Claude client doesn't require explicit cleanup
	return nil
}

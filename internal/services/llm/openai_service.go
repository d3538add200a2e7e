package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"golang.org/x/time/rate"
)

// OpenAIService implements chat completions using the OpenAI API.
// Reasoning models (o3-mini and friends) reject sampling parameters, so
// temperature and top_p are only forwarded when the caller sets them.
type OpenAIService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  openai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// convertMessagesToOpenAI converts []interfaces.Message to the OpenAI
// message union format, preserving chronological ordering.
func convertMessagesToOpenAI(messages []interfaces.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			converted = append(converted, openai.SystemMessage(msg.Content))
		case "assistant":
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			// Unknown roles default to user
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}

	return converted, nil
}

// NewOpenAIService creates a new OpenAI chat service instance
func NewOpenAIService(config *common.LLMConfig, logger arbor.ILogger) (*OpenAIService, error) {
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set via OPENAI_API_KEY or llm.openai_api_key in config)")
	}

	service := &OpenAIService{
		config:  config,
		logger:  logger,
		client:  openai.NewClient(option.WithAPIKey(config.OpenAIAPIKey)),
		limiter: rate.NewLimiter(rate.Every(config.CallSpacing()), 1),
		timeout: config.CallTimeout(),
	}

	logger.Debug().
		Str("reasoning_model", config.ReasoningModel).
		Str("translation_model", config.TranslationModel).
		Dur("timeout", service.timeout).
		Msg("OpenAI chat service initialized")

	return service, nil
}

// Chat generates a completion using the OpenAI chat completions API
func (s *OpenAIService) Chat(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	converted, err := convertMessagesToOpenAI(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to OpenAI format: %w", err)
	}

	// Pace outbound calls
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := opts.Model
	if model == "" {
		model = s.config.ReasoningModel
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: converted,
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSONResponse {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		}
	}

	startTime := time.Now()
	completion, err := s.client.Chat.Completions.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned from OpenAI API")
	}

	content := completion.Choices[0].Message.Content

	s.logger.Debug().
		Str("model", model).
		Int("message_count", len(messages)).
		Int("response_length", len(content)).
		Int64("total_tokens", completion.Usage.TotalTokens).
		Dur("duration", time.Since(startTime)).
		Msg("OpenAI chat completion completed")

	return content, nil
}

// Close releases resources held by the service
func (s *OpenAIService) Close() error {
	// The OpenAI client doesn't require explicit cleanup
	return nil
}

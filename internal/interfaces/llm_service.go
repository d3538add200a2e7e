package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// ChatOptions carries per-call settings for a chat completion request.
// Zero values mean "use the provider default" for that setting.
type ChatOptions struct {
	// Model selects the model for this call (e.g. "o3-mini", "gpt-4o-mini",
	// "claude-sonnet-4-20250514"). Empty uses the provider's configured default.
	Model string

	// Temperature controls sampling randomness. Only applied when > 0.
	Temperature float64

	// TopP controls nucleus sampling. Only applied when > 0.
	TopP float64

	// MaxTokens caps the response length. Only applied when > 0.
	MaxTokens int

	// JSONResponse constrains the model output to a single parseable JSON
	// object (structured JSON response mode).
	JSONResponse bool
}

// ChatService defines the interface for chat completion operations.
// Implementations wrap a single provider or route between providers by
// model name. Callers own the failure policy: the service returns errors
// and never degrades silently.
type ChatService interface {
	// Chat generates a completion for the given conversation. The messages
	// slice should contain the full context including system prompts in
	// chronological order. Returns the raw assistant response text.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// Close releases resources held by the service.
	Close() error
}

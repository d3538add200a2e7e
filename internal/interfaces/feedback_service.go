package interfaces

import "context"

// FeedbackService generates clarifying follow-up questions for a research
// topic. GenerateFeedback never returns an error: every failure mode
// degrades to an empty question list so callers can always proceed.
type FeedbackService interface {
	// GenerateFeedback produces follow-up questions for the query. When
	// useSearchEnhancement is set, the prompt is grounded in fresh web
	// search results and the query is language-normalized first.
	GenerateFeedback(ctx context.Context, query string, useSearchEnhancement bool) []string
}

package interfaces

import (
	"context"

	"github.com/ternarybob/rogare/internal/models"
)

// WebSearchService defines the interface for web search backends.
// Both engine variants (firecrawl, tavily) satisfy this interface and are
// selected at construction time by the configured engine discriminant.
//
// Search never returns an error: transport failures, provider errors, and
// malformed payloads are caught at the gateway boundary, logged, and
// degraded to an empty result. The returned result is never nil.
type WebSearchService interface {
	// Search issues a query to the backing provider. limit bounds the number
	// of hits requested from the provider, not a local truncation.
	Search(ctx context.Context, query string, limit int) *models.WebSearchResult

	// Engine returns the backend discriminant ("firecrawl" or "tavily").
	Engine() string
}

package search

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// NewWebSearchService creates a web search service based on configuration.
// Supported engines:
//   - "tavily": Tavily search API (default)
//   - "firecrawl": Firecrawl search API, optionally self-hosted
//
// Both variants satisfy the same contract: Search never returns an error
// and never returns nil; failures degrade to an empty result.
func NewWebSearchService(config *common.SearchConfig, logger arbor.ILogger) (interfaces.WebSearchService, error) {
	engine := strings.ToLower(strings.TrimSpace(config.Engine))

	switch engine {
	case "firecrawl":
		logger.Info().
			Str("engine", "firecrawl").
			Str("base_url", config.FirecrawlBaseURL).
			Msg("Initializing Firecrawl search service")
		return NewFirecrawlService(config, logger), nil

	case "tavily", "": // Default to tavily if empty
		logger.Info().
			Str("engine", "tavily").
			Msg("Initializing Tavily search service")
		return NewTavilyService(config, logger), nil

	default:
		return nil, fmt.Errorf("unknown search engine %q (expected firecrawl or tavily)", config.Engine)
	}
}

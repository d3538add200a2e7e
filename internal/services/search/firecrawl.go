package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
)

const firecrawlDefaultBaseURL = "https://api.firecrawl.dev"

// FirecrawlService implements web search using the Firecrawl search API.
// The API is reachable both as a hosted service and self-hosted, and the
// two deployments have drifted on response shape over versions, so the
// decoder tolerates every shape seen in the wild. Like the Tavily variant,
// Search never propagates a failure.
type FirecrawlService struct {
	config  *common.SearchConfig
	logger  arbor.ILogger
	client  *http.Client
	baseURL string
}

// Compile-time assertion: FirecrawlService implements WebSearchService
var _ interfaces.WebSearchService = (*FirecrawlService)(nil)

// NewFirecrawlService creates a new Firecrawl search service
func NewFirecrawlService(config *common.SearchConfig, logger arbor.ILogger) *FirecrawlService {
	baseURL := strings.TrimRight(config.FirecrawlBaseURL, "/")
	if baseURL == "" {
		baseURL = firecrawlDefaultBaseURL
	}

	return &FirecrawlService{
		config:  config,
		logger:  logger,
		client:  &http.Client{Timeout: config.SearchTimeout()},
		baseURL: baseURL,
	}
}

// Engine returns the search engine identifier
func (s *FirecrawlService) Engine() string {
	return "firecrawl"
}

// firecrawlItem is a single search hit. Older deployments return content
// instead of markdown and bury the title in metadata.
type firecrawlItem struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
	Content  string `json:"content"`
	Title    string `json:"title"`
	Metadata struct {
		Title string `json:"title"`
	} `json:"metadata"`
}

// Search executes a web search. It always returns a non-nil result; on any
// failure the result is empty and the error is logged.
func (s *FirecrawlService) Search(ctx context.Context, query string, limit int) *models.WebSearchResult {
	result := &models.WebSearchResult{Hits: []models.WebSearchHit{}}

	items, err := s.doSearch(ctx, query, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Firecrawl search failed")
		return result
	}

	for _, item := range items {
		markdown := item.Markdown
		if markdown == "" {
			markdown = item.Content
		}
		title := item.Title
		if title == "" {
			title = item.Metadata.Title
		}
		result.Hits = append(result.Hits, models.WebSearchHit{
			Title:    title,
			URL:      item.URL,
			Markdown: normalizeContent(markdown, item.URL, s.logger),
		})
	}

	s.logger.Debug().
		Str("query", query).
		Int("hits", len(result.Hits)).
		Msg("Firecrawl search completed")

	return result
}

func (s *FirecrawlService) doSearch(ctx context.Context, query string, limit int) ([]firecrawlItem, error) {
	if limit <= 0 {
		limit = s.config.Limit
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal firecrawl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.FirecrawlKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.FirecrawlKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firecrawl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firecrawl returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read firecrawl response: %w", err)
	}

	return s.decodeResponse(body)
}

// decodeResponse handles the response shapes Firecrawl deployments emit:
// an object with a data array (with or without a success flag), or a bare
// array of hits. Anything else is treated as a failed search.
func (s *FirecrawlService) decodeResponse(body []byte) ([]firecrawlItem, error) {
	trimmed := bytes.TrimSpace(body)

	if bytes.HasPrefix(trimmed, []byte("[")) {
		var items []firecrawlItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode firecrawl list response: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    []firecrawlItem `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected firecrawl response format: %w", err)
	}
	if envelope.Data == nil && envelope.Success == nil {
		return nil, fmt.Errorf("unexpected firecrawl response format: no data field")
	}

	return envelope.Data, nil
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyService implements web search using the Tavily search API.
// Search failures never propagate: the service degrades to an empty
// result and logs the cause, so a broken or missing key weakens the
// pipeline's context instead of breaking it.
type TavilyService struct {
	config   *common.SearchConfig
	logger   arbor.ILogger
	client   *http.Client
	endpoint string
}

// Compile-time assertion: TavilyService implements WebSearchService
var _ interfaces.WebSearchService = (*TavilyService)(nil)

// NewTavilyService creates a new Tavily search service
func NewTavilyService(config *common.SearchConfig, logger arbor.ILogger) *TavilyService {
	return &TavilyService{
		config:   config,
		logger:   logger,
		client:   &http.Client{Timeout: config.SearchTimeout()},
		endpoint: tavilyEndpoint,
	}
}

// Engine returns the search engine identifier
func (s *TavilyService) Engine() string {
	return "tavily"
}

// tavilyRequest is the Tavily search API request body
type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	Topic             string `json:"topic"`
	Days              int    `json:"days"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		RawContent    string `json:"raw_content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

// Search executes a web search. It always returns a non-nil result; on any
// failure the result is empty and the error is logged.
func (s *TavilyService) Search(ctx context.Context, query string, limit int) *models.WebSearchResult {
	result := &models.WebSearchResult{Hits: []models.WebSearchHit{}}

	resp, err := s.doSearch(ctx, query, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Tavily search failed")
		return result
	}

	if len(resp.Results) == 0 {
		s.logger.Error().Str("query", query).Msg("Tavily returned no results")
		return result
	}

	for _, item := range resp.Results {
		// Prefer the full raw_content (requested via include_raw_content)
		// over the short content snippet. The published date is prepended so
		// downstream prompts see recency without a separate field.
		content := item.Content
		if item.RawContent != "" {
			content = item.RawContent
		}
		markdown := item.PublishedDate + "\n" + normalizeContent(content, item.URL, s.logger)
		result.Hits = append(result.Hits, models.WebSearchHit{
			Title:    item.Title,
			URL:      item.URL,
			Markdown: markdown,
		})
	}
	result.Answer = resp.Answer

	s.logger.Debug().
		Str("query", query).
		Int("hits", len(result.Hits)).
		Bool("has_answer", result.Answer != "").
		Msg("Tavily search completed")

	return result
}

func (s *TavilyService) doSearch(ctx context.Context, query string, limit int) (*tavilyResponse, error) {
	if s.config.TavilyKey == "" {
		return nil, fmt.Errorf("tavily API key is missing (set TAVILY_KEY or search.tavily_key in config)")
	}
	if limit <= 0 {
		limit = s.config.Limit
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:            s.config.TavilyKey,
		Query:             query,
		SearchDepth:       "advanced",
		Topic:             "general",
		Days:              5,
		MaxResults:        limit,
		IncludeAnswer:     true,
		IncludeRawContent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned HTTP %d", resp.StatusCode)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}

	return &decoded, nil
}

package research

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
	"google.golang.org/genai"
)

const geminiSearchTimeout = 5 * time.Minute

// GeminiEngine runs the iterative deep-research loop using the Gemini SDK
// with GoogleSearch grounding. Breadth bounds follow-up queries per level,
// depth bounds the number of follow-up levels. Individual follow-up
// failures are logged and skipped; only a failed initial search aborts
// the run.
type GeminiEngine struct {
	config *common.ResearchConfig
	logger arbor.ILogger
	client *genai.Client
}

// Compile-time assertion: GeminiEngine implements ResearchEngine
var _ interfaces.ResearchEngine = (*GeminiEngine)(nil)

// NewGeminiEngine creates a new Gemini-backed research engine
func NewGeminiEngine(ctx context.Context, config *common.ResearchConfig, logger arbor.ILogger) (*GeminiEngine, error) {
	if config.GoogleAPIKey == "" {
		return nil, fmt.Errorf("Google API key is required (set GEMINI_API_KEY or research.google_api_key in config)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Msg("Gemini research engine initialized")

	return &GeminiEngine{
		config: config,
		logger: logger,
		client: client,
	}, nil
}

// Research executes the deep-research loop for the request
func (e *GeminiEngine) Research(ctx context.Context, req interfaces.ResearchRequest) (*models.ResearchResults, error) {
	breadth := req.Breadth
	if breadth <= 0 {
		breadth = e.config.Breadth
	}
	depth := req.Depth
	if depth <= 0 {
		depth = e.config.Depth
	}

	results := &models.ResearchResults{
		Query:        req.Query,
		ResearchDate: time.Now(),
	}

	searchTool := &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{searchTool},
	}

	prompt := fmt.Sprintf(`You are a research assistant. Search the web to answer the following query comprehensively.
Provide detailed information with specific facts, data, and sources.
Include all relevant URLs from your search.
If there are related topics worth exploring, suggest %d follow-up questions.

Query: %s`, breadth, req.Query)

	searchCtx, cancel := context.WithTimeout(ctx, geminiSearchTimeout)
	defer cancel()

	e.logger.Debug().
		Str("query", req.Query).
		Int("breadth", breadth).
		Int("depth", depth).
		Msg("Executing Gemini research")

	resp, err := e.client.Models.GenerateContent(
		searchCtx,
		e.config.Model,
		[]*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		},
		config,
	)
	if err != nil {
		return results, fmt.Errorf("initial research search failed: %w", err)
	}

	followUps := e.collectResponse(resp, results, "")

	if depth > 1 && len(followUps) > 0 {
		e.runFollowUps(searchCtx, config, results, followUps, depth-1, breadth)
	}

	e.logger.Info().
		Str("query", req.Query).
		Int("learnings", len(results.Learnings)).
		Int("visited_urls", len(results.VisitedURLs)).
		Int("search_queries", len(results.SearchQueries)).
		Msg("Research completed")

	return results, nil
}

// collectResponse extracts learnings, sources, and search queries from a
// grounded response. Returns the follow-up queries for the next level.
func (e *GeminiEngine) collectResponse(resp *genai.GenerateContentResponse, results *models.ResearchResults, topic string) []string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	candidate := resp.Candidates[0]

	for _, part := range candidate.Content.Parts {
		if part.Text == "" {
			continue
		}
		learning := part.Text
		if topic != "" {
			learning = fmt.Sprintf("## %s\n\n%s", topic, part.Text)
		}
		results.Learnings = append(results.Learnings, learning)
	}

	var followUps []string
	if candidate.GroundingMetadata != nil {
		gm := candidate.GroundingMetadata
		if gm.WebSearchQueries != nil {
			results.SearchQueries = append(results.SearchQueries, gm.WebSearchQueries...)
			followUps = gm.WebSearchQueries
		}
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				results.VisitedURLs = appendUnique(results.VisitedURLs, chunk.Web.URI)
			}
		}
	}

	return followUps
}

// runFollowUps explores follow-up queries level by level until the depth
// budget is spent. Failures skip the query rather than aborting the run.
func (e *GeminiEngine) runFollowUps(ctx context.Context, config *genai.GenerateContentConfig, results *models.ResearchResults, queries []string, remainingDepth, breadth int) {
	if remainingDepth <= 0 {
		return
	}

	if len(queries) > breadth {
		queries = queries[:breadth]
	}

	var nextLevel []string
	for _, query := range queries {
		e.logger.Debug().
			Str("follow_up_query", query).
			Int("remaining_depth", remainingDepth).
			Msg("Executing follow-up research search")

		resp, err := e.client.Models.GenerateContent(
			ctx,
			e.config.Model,
			[]*genai.Content{
				genai.NewContentFromText(fmt.Sprintf("Provide additional details on: %s", query), genai.RoleUser),
			},
			config,
		)
		if err != nil {
			e.logger.Warn().Err(err).Str("follow_up_query", query).Msg("Follow-up search failed, skipping")
			continue
		}

		nextLevel = append(nextLevel, e.collectResponse(resp, results, query)...)
	}

	if remainingDepth > 1 && len(nextLevel) > 0 {
		e.runFollowUps(ctx, config, results, nextLevel, remainingDepth-1, breadth)
	}
}

func appendUnique(urls []string, url string) []string {
	for _, existing := range urls {
		if existing == url {
			return urls
		}
	}
	return append(urls, url)
}

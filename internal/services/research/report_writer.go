package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
)

// Writer synthesizes a final markdown report from collected research
// learnings via one reasoning-model call. A response that is not the
// requested JSON shape falls back to treating the raw text as the report
// body rather than failing the session.
type Writer struct {
	chatService interfaces.ChatService
	config      *common.LLMConfig
	logger      arbor.ILogger
}

// Compile-time assertion: Writer implements ReportWriter
var _ interfaces.ReportWriter = (*Writer)(nil)

// NewReportWriter creates a new report writer
func NewReportWriter(chatService interfaces.ChatService, config *common.LLMConfig, logger arbor.ILogger) *Writer {
	return &Writer{
		chatService: chatService,
		config:      config,
		logger:      logger,
	}
}

// WriteFinalReport produces the final report for the research results
func (w *Writer) WriteFinalReport(ctx context.Context, prompt string, results *models.ResearchResults, language string) (*models.ResearchReport, error) {
	if results == nil || len(results.Learnings) == 0 {
		return nil, fmt.Errorf("no research learnings to report on")
	}
	if language == "" {
		language = "English"
	}

	var learnings strings.Builder
	for _, learning := range results.Learnings {
		learnings.WriteString("<learning>\n")
		learnings.WriteString(learning)
		learnings.WriteString("\n</learning>\n")
	}

	messages := []interfaces.Message{
		{
			Role: "system",
			Content: fmt.Sprintf("You are an expert research analyst. Today is %s. Write thorough, well-structured markdown reports grounded strictly in the provided learnings.",
				time.Now().Format("Mon, 02 Jan 2006")),
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Given the following prompt, write a final report on the topic using the learnings from research. "+
				"Write the report in %s. Aim for a detailed report of at least three pages, including every relevant learning.\n\n"+
				"<prompt>\n%s\n</prompt>\n\nHere are all the learnings from the research:\n\n%s\n"+
				"Return the response as a JSON object with 'title' and 'report' string fields, where 'report' contains the full markdown report.",
				language, prompt, learnings.String()),
		},
	}

	response, err := w.chatService.Chat(ctx, messages, interfaces.ChatOptions{
		Model:        w.config.ReasoningModel,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("report generation call failed: %w", err)
	}

	report := &models.ResearchReport{
		Language:    language,
		GeneratedAt: time.Now(),
	}

	var decoded struct {
		Title  string `json:"title"`
		Report string `json:"report"`
	}
	if err := json.Unmarshal([]byte(response), &decoded); err != nil || decoded.Report == "" {
		w.logger.Warn().
			Str("raw_response_prefix", firstN(response, 200)).
			Msg("Report response was not the expected JSON shape, using raw text")
		report.Title = fallbackTitle(results.Query)
		report.FinalReport = response
	} else {
		report.Title = decoded.Title
		report.FinalReport = decoded.Report
	}

	// Append the sources the research actually visited
	if len(results.VisitedURLs) > 0 {
		var sources strings.Builder
		sources.WriteString("\n\n## Sources\n\n")
		for _, url := range results.VisitedURLs {
			sources.WriteString(fmt.Sprintf("- <%s>\n", url))
		}
		report.FinalReport += sources.String()
	}

	w.logger.Info().
		Str("title", report.Title).
		Str("language", language).
		Int("report_length", len(report.FinalReport)).
		Msg("Final report generated")

	return report, nil
}

// fallbackTitle derives a report title from the research query when the
// model response carried none. The query may be the combined-query framing,
// so only its first line matters.
func fallbackTitle(query string) string {
	line := query
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "Initial Query:"))
	if line == "" {
		return "Research Report"
	}
	return "Research Report: " + firstN(line, 80)
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package feedback

import (
	"strings"

	"github.com/ternarybob/rogare/internal/models"
)

// maxContentLength is the hard per-hit budget for search content embedded
// into the question-generation prompt. Applied per hit, never globally.
const maxContentLength = 15000

const contextPrefix = "\n\nHere is some background information about the topic:\n"

// TrimPrompt bounds content to the given rune budget, preserving the
// prefix. Truncation is deterministic: identical input always yields
// identical output.
func TrimPrompt(content string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	runes := []rune(content)
	if len(runes) <= maxLength {
		return content
	}
	return string(runes[:maxLength])
}

// BuildContext assembles the search-grounded context block appended to the
// question-generation prompt. Each hit with non-empty markdown contributes
// a trimmed <content> section; the engine's direct answer, when present,
// trails the sections. Hits without markdown are skipped entirely.
func BuildContext(result *models.WebSearchResult) string {
	if result == nil {
		return contextPrefix
	}

	var sb strings.Builder
	sb.WriteString(contextPrefix)
	for _, hit := range result.Hits {
		if hit.Markdown == "" {
			continue
		}
		sb.WriteString("<content>\n")
		sb.WriteString(TrimPrompt(hit.Markdown, maxContentLength))
		sb.WriteString("\n</content>")
	}
	sb.WriteString(result.Answer)

	return sb.String()
}

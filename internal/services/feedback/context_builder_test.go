package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/rogare/internal/models"
)

func TestTrimPrompt(t *testing.T) {
	assert.Equal(t, "short", TrimPrompt("short", 100))
	assert.Equal(t, "", TrimPrompt("anything", 0))
	assert.Equal(t, "abc", TrimPrompt("abcdef", 3))

	// Budget applies to runes, not bytes
	cjk := strings.Repeat("研", 10)
	trimmed := TrimPrompt(cjk, 4)
	assert.Equal(t, 4, len([]rune(trimmed)))
}

func TestTrimPrompt_Deterministic(t *testing.T) {
	input := strings.Repeat("x", 20000)
	first := TrimPrompt(input, maxContentLength)
	second := TrimPrompt(input, maxContentLength)
	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len([]rune(first)), maxContentLength)
}

func TestBuildContext(t *testing.T) {
	result := &models.WebSearchResult{
		Hits: []models.WebSearchHit{
			{Title: "A", URL: "https://a.example", Markdown: "alpha content"},
			{Title: "B", URL: "https://b.example", Markdown: "beta content"},
		},
		Answer: "direct answer",
	}

	built := BuildContext(result)
	assert.True(t, strings.HasPrefix(built, "\n\nHere is some background information about the topic:\n"))
	assert.Contains(t, built, "<content>\nalpha content\n</content>")
	assert.Contains(t, built, "<content>\nbeta content\n</content>")
	assert.True(t, strings.HasSuffix(built, "direct answer"))
}

func TestBuildContext_TruncatesLongHits(t *testing.T) {
	long := strings.Repeat("z", maxContentLength+5000)
	result := &models.WebSearchResult{
		Hits: []models.WebSearchHit{{Markdown: long}},
	}

	built := BuildContext(result)
	assert.NotContains(t, built, long)
	assert.Contains(t, built, strings.Repeat("z", maxContentLength))
	assert.NotContains(t, built, strings.Repeat("z", maxContentLength+1))
}

func TestBuildContext_SkipsEmptyMarkdown(t *testing.T) {
	withEmpty := BuildContext(&models.WebSearchResult{
		Hits: []models.WebSearchHit{{Title: "Empty", URL: "https://e.example", Markdown: ""}},
	})
	withNone := BuildContext(&models.WebSearchResult{Hits: []models.WebSearchHit{}})

	assert.Equal(t, withNone, withEmpty)
	assert.NotContains(t, withEmpty, "<content>")
}

func TestBuildContext_EmptyResult(t *testing.T) {
	built := BuildContext(&models.WebSearchResult{})
	assert.Equal(t, "\n\nHere is some background information about the topic:\n", built)

	assert.Equal(t, built, BuildContext(nil))
}

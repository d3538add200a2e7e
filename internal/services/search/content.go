package search

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
)

var (
	htmlTagPattern    = regexp.MustCompile(`(?i)<(html|head|body|div|p|a|span|table|ul|ol|li|h[1-6])[\s>]`)
	stripTagsPattern  = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// looksLikeHTML reports whether content appears to be an HTML document
// rather than plain text or markdown.
func looksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<!doctype") {
		return true
	}
	return htmlTagPattern.MatchString(trimmed)
}

// normalizeContent converts HTML page content to markdown. Plain text and
// markdown pass through unchanged. Conversion failures fall back to tag
// stripping rather than dropping the hit.
func normalizeContent(content, baseURL string, logger arbor.ILogger) string {
	if !looksLikeHTML(content) {
		return content
	}

	converter := md.NewConverter(baseURL, true, nil)
	converted, err := converter.ConvertString(content)
	if err != nil {
		logger.Warn().Err(err).Str("url", baseURL).Msg("HTML to markdown conversion failed, stripping tags")
		return stripHTMLTags(content)
	}

	if strings.TrimSpace(converted) == "" && content != "" {
		return stripHTMLTags(content)
	}

	return converted
}

// stripHTMLTags removes HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	stripped := stripTagsPattern.ReplaceAllString(htmlStr, " ")
	stripped = whitespacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

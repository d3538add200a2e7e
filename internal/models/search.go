package models

// WebSearchHit is a single normalized result from a web search backend.
// Markdown may be empty when the provider returned no content body.
type WebSearchHit struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// WebSearchResult is the common result shape produced by both search
// backends. Hits preserve provider ranking order. Answer is a
// provider-synthesized summary and may be empty.
type WebSearchResult struct {
	Hits   []WebSearchHit `json:"hits"`
	Answer string         `json:"answer,omitempty"`
}

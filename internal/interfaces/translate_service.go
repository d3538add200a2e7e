package interfaces

import "context"

// TranslationService normalizes query language ahead of search and
// question generation. Implementations are best-effort: on any failure
// the original query is returned unchanged.
type TranslationService interface {
	// TranslateToEnglish returns the English form of the query, or the
	// query itself when no translation is needed or possible.
	TranslateToEnglish(ctx context.Context, query string) string
}

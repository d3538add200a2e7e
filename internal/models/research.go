package models

import "time"

// ResearchResults is the output of a deep-research run: the facts learned
// while searching and the URLs the engine visited to learn them.
type ResearchResults struct {
	Query         string    `json:"query"`
	Learnings     []string  `json:"learnings"`
	VisitedURLs   []string  `json:"visited_urls"`
	SearchQueries []string  `json:"search_queries,omitempty"`
	ResearchDate  time.Time `json:"research_date"`
}

// ResearchReport is the final synthesized report for a session.
type ResearchReport struct {
	Title       string    `json:"title"`
	FinalReport string    `json:"final_report"`
	Language    string    `json:"language"`
	GeneratedAt time.Time `json:"generated_at"`
}

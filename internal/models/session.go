package models

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus tracks a session through the research lifecycle
type SessionStatus string

const (
	// SessionStatusPending - session created, research not yet started
	SessionStatusPending SessionStatus = "pending"
	// SessionStatusRunning - a research run is in progress
	SessionStatusRunning SessionStatus = "running"
	// SessionStatusCompleted - research finished and a report is available
	SessionStatusCompleted SessionStatus = "completed"
	// SessionStatusFailed - the research run errored out
	SessionStatusFailed SessionStatus = "failed"
)

// ResearchSession holds the per-request state of one research conversation:
// the topic, the generated follow-up questions, the user's answers, and the
// eventual research output. Sessions are persisted so multiple users can
// run independent sessions concurrently.
type ResearchSession struct {
	ID             string          `json:"id" badgerhold:"key"`
	Query          string          `json:"query"`
	Questions      []string        `json:"questions"`
	Answers        []string        `json:"answers"`
	ReportLanguage string          `json:"report_language"`
	Breadth        int             `json:"breadth"`
	Depth          int             `json:"depth"`
	Status         SessionStatus   `json:"status"`
	Learnings      []string        `json:"learnings,omitempty"`
	VisitedURLs    []string        `json:"visited_urls,omitempty"`
	Report         *ResearchReport `json:"report,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CombinedQuery builds the combined-query string passed to the research
// engine. The exact textual framing is part of the downstream boundary
// contract and must not change:
//
//	Initial Query: {q}
//	Follow-up Questions and Answers:
//	Q: {question}
//	A: {answer}
//	...
//
// Question/answer pairs are zipped to the shorter of the two lists, and
// pairs with a blank answer are skipped.
func (s *ResearchSession) CombinedQuery() string {
	n := len(s.Questions)
	if len(s.Answers) < n {
		n = len(s.Answers)
	}

	pairs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if strings.TrimSpace(s.Answers[i]) == "" {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", s.Questions[i], s.Answers[i]))
	}

	return fmt.Sprintf("Initial Query: %s\nFollow-up Questions and Answers:\n%s",
		s.Query, strings.Join(pairs, "\n"))
}

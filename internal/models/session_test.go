package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedQuery(t *testing.T) {
	tests := []struct {
		name      string
		questions []string
		answers   []string
		want      string
	}{
		{
			name:      "two pairs",
			questions: []string{"Q1", "Q2"},
			answers:   []string{"A1", "A2"},
			want:      "Initial Query: Topic\nFollow-up Questions and Answers:\nQ: Q1\nA: A1\nQ: Q2\nA: A2",
		},
		{
			name:      "no questions",
			questions: nil,
			answers:   nil,
			want:      "Initial Query: Topic\nFollow-up Questions and Answers:\n",
		},
		{
			name:      "more answers than questions",
			questions: []string{"Q1"},
			answers:   []string{"A1", "A2", "A3"},
			want:      "Initial Query: Topic\nFollow-up Questions and Answers:\nQ: Q1\nA: A1",
		},
		{
			name:      "more questions than answers",
			questions: []string{"Q1", "Q2", "Q3"},
			answers:   []string{"A1"},
			want:      "Initial Query: Topic\nFollow-up Questions and Answers:\nQ: Q1\nA: A1",
		},
		{
			name:      "blank answer skipped",
			questions: []string{"Q1", "Q2", "Q3"},
			answers:   []string{"A1", "   ", "A3"},
			want:      "Initial Query: Topic\nFollow-up Questions and Answers:\nQ: Q1\nA: A1\nQ: Q3\nA: A3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ResearchSession{
				Query:     "Topic",
				Questions: tt.questions,
				Answers:   tt.answers,
			}
			assert.Equal(t, tt.want, s.CombinedQuery())
		})
	}
}

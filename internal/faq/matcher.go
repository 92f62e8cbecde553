package faq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/passabola/chatbot/internal/models"
)

// Match is the outcome of a lookup. Question, Index and Score always
// describe the closest stored question; Answer is the fallback unless
// Matched is true.
type Match struct {
	Question string
	Answer   string
	Score    float64
	Index    int
	Matched  bool
}

// Matcher answers free text with the stored answer of the most similar
// stored question. It is read-only after NewMatcher and safe for
// concurrent use.
type Matcher struct {
	entries    []models.FAQEntry
	vectorizer *Vectorizer
	vectors    []Vector
	threshold  float64
	fallback   string
}

func NewMatcher(entries []models.FAQEntry, threshold float64, fallback string) (*Matcher, error) {
	if len(entries) == 0 {
		return nil, errors.New("faq: knowledge base is empty")
	}
	if strings.TrimSpace(fallback) == "" {
		return nil, errors.New("faq: fallback answer is required")
	}

	questions := make([]string, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Question) == "" || strings.TrimSpace(entry.Answer) == "" {
			return nil, fmt.Errorf("faq: entry %d has an empty question or answer", i)
		}
		questions[i] = entry.Question
	}

	vectorizer, vectors := Fit(questions)
	if vectorizer.VocabularySize() == 0 {
		return nil, errors.New("faq: no question produced a searchable term")
	}

	return &Matcher{
		entries:    append([]models.FAQEntry(nil), entries...),
		vectorizer: vectorizer,
		vectors:    vectors,
		threshold:  threshold,
		fallback:   fallback,
	}, nil
}

func (m *Matcher) Match(message string) Match {
	query := m.vectorizer.Transform(message)

	best, bestScore := 0, Cosine(query, m.vectors[0])
	for i := 1; i < len(m.vectors); i++ {
		if score := Cosine(query, m.vectors[i]); score > bestScore {
			best, bestScore = i, score
		}
	}

	out := Match{
		Question: m.entries[best].Question,
		Answer:   m.fallback,
		Score:    bestScore,
		Index:    best,
	}
	if bestScore > m.threshold {
		out.Answer = m.entries[best].Answer
		out.Matched = true
	}
	return out
}

func (m *Matcher) Threshold() float64 { return m.threshold }

func (m *Matcher) Size() int { return len(m.entries) }

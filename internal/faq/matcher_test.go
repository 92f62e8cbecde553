package faq

import (
	"math"
	"sync"
	"testing"

	"github.com/passabola/chatbot/internal/models"
)

const testFallback = "Desculpe, não entendi sua pergunta. Poderia tentar reformulá-la?"

func newDefaultMatcher(t *testing.T, threshold float64) *Matcher {
	t.Helper()
	entries, err := DefaultEntries()
	if err != nil {
		t.Fatalf("DefaultEntries error: %v", err)
	}
	m, err := NewMatcher(entries, threshold, testFallback)
	if err != nil {
		t.Fatalf("NewMatcher error: %v", err)
	}
	return m
}

func TestDefaultEntries(t *testing.T) {
	entries, err := DefaultEntries()
	if err != nil {
		t.Fatalf("DefaultEntries error: %v", err)
	}
	if len(entries) != 27 {
		t.Fatalf("expected 27 entries, got %d", len(entries))
	}
	if entries[0].Question != "oi" || entries[0].Position != 0 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[26].Position != 26 {
		t.Fatalf("positions not assigned in order: %+v", entries[26])
	}
}

func TestMatchEveryStoredQuestion(t *testing.T) {
	m := newDefaultMatcher(t, 0.3)
	entries, _ := DefaultEntries()

	for i, entry := range entries {
		got := m.Match(entry.Question)
		if !got.Matched {
			t.Fatalf("question %q did not match (score %v)", entry.Question, got.Score)
		}
		if got.Index != i || got.Answer != entry.Answer {
			t.Fatalf("question %q matched %q instead", entry.Question, got.Question)
		}
		if math.Abs(got.Score-1) > 1e-9 {
			t.Fatalf("question %q scored %v, want 1", entry.Question, got.Score)
		}
	}
}

func TestMatchGibberishReturnsFallback(t *testing.T) {
	m := newDefaultMatcher(t, 0.3)

	for _, msg := range []string{"xyzzy qwerty asdfgh", "", "???", "zzzz 12345"} {
		got := m.Match(msg)
		if got.Matched {
			t.Fatalf("%q should not match, matched %q", msg, got.Question)
		}
		if got.Answer != testFallback {
			t.Fatalf("%q should return fallback, got %q", msg, got.Answer)
		}
		if got.Score != 0 {
			t.Fatalf("%q should score 0, got %v", msg, got.Score)
		}
	}
}

func TestMatchNearDuplicates(t *testing.T) {
	m := newDefaultMatcher(t, 0.3)

	cases := []struct {
		msg      string
		question string
	}{
		{msg: "COMO POSSO ME CADASTRAR", question: "Como posso me cadastrar?"},
		{msg: "posso me cadastrar?", question: "Como posso me cadastrar?"},
		{msg: "os jogos aparecem no mapa", question: "Os jogos aparecem em um mapa?"},
		{msg: "como faço logout", question: "Como faço logout?"},
		{msg: "Obrigado!!", question: "obrigado"},
		{msg: "o que é o mvp", question: "O que é o MVP?"},
		{msg: "quais são as próximas funcionalidades", question: "Quais as próximas funcionalidades?"},
	}

	for _, tc := range cases {
		got := m.Match(tc.msg)
		if !got.Matched || got.Question != tc.question {
			t.Fatalf("%q: expected %q, got %q (score %v)", tc.msg, tc.question, got.Question, got.Score)
		}
		if got.Score <= 0.3 {
			t.Fatalf("%q: expected score above threshold, got %v", tc.msg, got.Score)
		}
	}
}

func TestMatchThresholdIsStrictAndConfigurable(t *testing.T) {
	loose := newDefaultMatcher(t, 0.3)
	near := loose.Match("posso me cadastrar?")

	strict := newDefaultMatcher(t, near.Score)
	got := strict.Match("posso me cadastrar?")
	if got.Matched {
		t.Fatalf("score equal to threshold must not match")
	}
	if got.Answer != testFallback {
		t.Fatalf("expected fallback, got %q", got.Answer)
	}
	if got.Question != near.Question {
		t.Fatalf("closest question should still be reported")
	}
}

func TestMatchTiesPickFirstEntry(t *testing.T) {
	m, err := NewMatcher([]models.FAQEntry{
		{Question: "horário do jogo", Answer: "first"},
		{Question: "horário do jogo", Answer: "second"},
	}, 0.3, testFallback)
	if err != nil {
		t.Fatalf("NewMatcher error: %v", err)
	}

	if got := m.Match("horário do jogo"); got.Answer != "first" || got.Index != 0 {
		t.Fatalf("expected first entry, got %+v", got)
	}
}

func TestNewMatcherRejectsBadInput(t *testing.T) {
	if _, err := NewMatcher(nil, 0.3, testFallback); err == nil {
		t.Fatalf("expected error for empty corpus")
	}
	if _, err := NewMatcher([]models.FAQEntry{{Question: "oi", Answer: ""}}, 0.3, testFallback); err == nil {
		t.Fatalf("expected error for empty answer")
	}
	if _, err := NewMatcher([]models.FAQEntry{{Question: "a e o", Answer: "x"}}, 0.3, testFallback); err == nil {
		t.Fatalf("expected error when no terms are produced")
	}
	if _, err := NewMatcher([]models.FAQEntry{{Question: "oi", Answer: "x"}}, 0.3, " "); err == nil {
		t.Fatalf("expected error for blank fallback")
	}
}

func TestMatchConcurrentUse(t *testing.T) {
	m := newDefaultMatcher(t, 0.3)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := m.Match("Como faço logout?"); !got.Matched {
				t.Errorf("concurrent match failed: %+v", got)
			}
		}()
	}
	wg.Wait()
}

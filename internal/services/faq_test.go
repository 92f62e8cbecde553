package services

import (
	"testing"

	"github.com/passabola/chatbot/internal/faq"
	"github.com/passabola/chatbot/pkg/helpers"
)

func newTestFAQService(t *testing.T) *faqService {
	t.Helper()
	entries, err := faq.DefaultEntries()
	if err != nil {
		t.Fatalf("DefaultEntries error: %v", err)
	}
	matcher, err := faq.NewMatcher(entries, 0.3, "fallback")
	if err != nil {
		t.Fatalf("NewMatcher error: %v", err)
	}
	return NewFAQService(matcher)
}

func TestFAQReplyMatchesStoredQuestion(t *testing.T) {
	svc := newTestFAQService(t)
	entries, err := faq.DefaultEntries()
	if err != nil {
		t.Fatalf("DefaultEntries error: %v", err)
	}

	resp, err := svc.Reply(helpers.TestCtx(), entries[3].Question)
	if err != nil {
		t.Fatalf("Reply error: %v", err)
	}
	if resp.Response != entries[3].Answer {
		t.Fatalf("expected stored answer %q, got %q", entries[3].Answer, resp.Response)
	}
}

func TestFAQReplyFallback(t *testing.T) {
	svc := newTestFAQService(t)

	resp, err := svc.Reply(helpers.TestCtx(), "xyzzy plugh")
	if err != nil {
		t.Fatalf("Reply error: %v", err)
	}
	if resp.Response != "fallback" {
		t.Fatalf("expected fallback, got %q", resp.Response)
	}
}

type stubMatcher struct {
	got   string
	match faq.Match
}

func (s *stubMatcher) Match(message string) faq.Match {
	s.got = message
	return s.match
}

func TestFAQReplyUsesMatcherAnswer(t *testing.T) {
	stub := &stubMatcher{match: faq.Match{Answer: "resposta", Score: 0.9, Matched: true}}
	svc := NewFAQService(stub)

	resp, err := svc.Reply(helpers.TestCtx(), "pergunta")
	if err != nil {
		t.Fatalf("Reply error: %v", err)
	}
	if stub.got != "pergunta" || resp.Response != "resposta" {
		t.Fatalf("unexpected stub call %q / response %q", stub.got, resp.Response)
	}
}

package services

import (
	"context"

	"github.com/passabola/chatbot/internal/dto"
	"github.com/passabola/chatbot/internal/faq"
	"github.com/passabola/chatbot/pkg/logger"
)

type faqMatcher interface {
	Match(message string) faq.Match
}

type faqService struct {
	matcher faqMatcher
}

func NewFAQService(matcher faqMatcher) *faqService {
	return &faqService{matcher: matcher}
}

func (s *faqService) Reply(ctx context.Context, message string) (dto.ChatResponse, error) {
	log := logger.FromContext(ctx)

	match := s.matcher.Match(message)
	log.Info("faq match",
		"matched", match.Matched,
		"score", match.Score,
		"index", match.Index,
	)
	log.Debug("faq match details", "question", match.Question)

	return dto.ChatResponse{Response: match.Answer}, nil
}

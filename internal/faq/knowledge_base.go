package faq

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/passabola/chatbot/internal/models"
)

//go:embed knowledge_base.json
var defaultKnowledgeBase []byte

// DefaultEntries returns the built-in Passa-Bola knowledge base.
func DefaultEntries() ([]models.FAQEntry, error) {
	return parseEntries(defaultKnowledgeBase)
}

// LoadFile reads a knowledge base from a JSON array of
// {"question": ..., "answer": ...} objects. Array order is kept.
func LoadFile(path string) ([]models.FAQEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("faq: read %s: %w", path, err)
	}
	entries, err := parseEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("faq: parse %s: %w", path, err)
	}
	return entries, nil
}

func parseEntries(raw []byte) ([]models.FAQEntry, error) {
	var entries []models.FAQEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Position = i
	}
	return entries, nil
}

package bootstrap

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/passabola/chatbot/internal/config"
	"github.com/passabola/chatbot/internal/faq"
	"github.com/passabola/chatbot/internal/models"
	"github.com/passabola/chatbot/internal/store"
)

const (
	sourceEmbedded  = "embedded"
	sourceFile      = "file"
	sourceFirestore = "firestore"
)

// loadEntries picks the knowledge base source: a Firestore collection, a
// JSON file, or the embedded default, in that order.
func loadEntries(ctx context.Context, cfg *config.Config, client *firestore.Client) ([]models.FAQEntry, string, error) {
	switch {
	case cfg.FAQCollection != "":
		entries, err := store.NewFAQStore(client, cfg.FAQCollection).ListEntries(ctx)
		return entries, sourceFirestore, err
	case cfg.FAQFile != "":
		entries, err := faq.LoadFile(cfg.FAQFile)
		return entries, sourceFile, err
	default:
		entries, err := faq.DefaultEntries()
		return entries, sourceEmbedded, err
	}
}

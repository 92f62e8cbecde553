package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/passabola/chatbot/internal/errs"
	"github.com/passabola/chatbot/internal/models"
)

type faqStore struct {
	client     *firestore.Client
	collection string
}

func NewFAQStore(client *firestore.Client, collection string) *faqStore {
	return &faqStore{client: client, collection: collection}
}

// ListEntries reads the whole knowledge base ordered by position. It runs
// once at startup; the matcher never writes back.
func (s *faqStore) ListEntries(ctx context.Context) ([]models.FAQEntry, error) {
	iter := s.client.Collection(s.collection).OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []models.FAQEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list faq entries", err)
		}
		var entry models.FAQEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse faq entry "+doc.Ref.ID, err)
		}
		out = append(out, entry)
	}

	if len(out) == 0 {
		return nil, errs.NewDatabaseError("read", "faq collection "+s.collection+" is empty", nil)
	}
	return out, nil
}

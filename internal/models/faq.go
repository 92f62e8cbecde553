package models

// FAQEntry is one canonical question with its answer. Position orders the
// knowledge base; the first of several equally similar questions wins.
type FAQEntry struct {
	Question string `firestore:"question" json:"question"`
	Answer   string `firestore:"answer" json:"answer"`
	Position int    `firestore:"position" json:"position"`
}

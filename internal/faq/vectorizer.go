package faq

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokens are runs of two or more word characters; one-letter words such as
// "o", "é" or "a" carry no signal in Portuguese questions.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a sparse, L2-normalised TF-IDF vector sorted by term index.
// Sorted entries keep similarity sums in a fixed order, so scores are
// reproducible bit for bit.
type Vector []Weight

type Weight struct {
	Term   int
	Weight float64
}

// Vectorizer holds a vocabulary of unigrams and bigrams with smoothed
// inverse document frequencies. It is immutable after Fit.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// Fit learns the vocabulary from docs and returns the vectorizer together
// with the vector of every doc, in order.
func Fit(docs []string) (*Vectorizer, []Vector) {
	df := make(map[string]int)
	analyzed := make([][]string, len(docs))
	for i, doc := range docs {
		terms := analyze(doc)
		analyzed[i] = terms

		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	// sorted so term indexes do not depend on map iteration order
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, terms := range analyzed {
		vectors[i] = v.weigh(terms)
	}
	return v, vectors
}

// Transform vectorises text with the fitted vocabulary. Terms never seen
// during Fit are ignored, so the result may be empty.
func (v *Vectorizer) Transform(text string) Vector {
	return v.weigh(analyze(text))
}

// VocabularySize is the number of distinct terms learned by Fit.
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocab)
}

func (v *Vectorizer) weigh(terms []string) Vector {
	counts := make(map[int]float64)
	for _, term := range terms {
		if idx, ok := v.vocab[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	vec := make(Vector, 0, len(counts))
	for idx, tf := range counts {
		vec = append(vec, Weight{Term: idx, Weight: tf * v.idf[idx]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Term < vec[j].Term })

	var sum float64
	for _, w := range vec {
		sum += w.Weight * w.Weight
	}
	l2 := math.Sqrt(sum)
	for i := range vec {
		vec[i].Weight /= l2
	}
	return vec
}

// Cosine returns the cosine similarity of a and b, or 0 when either is empty.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].Term == b[j].Term:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Term < b[j].Term:
			i++
		default:
			j++
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (magnitude(a) * magnitude(b))
}

func magnitude(v Vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w.Weight * w.Weight
	}
	return math.Sqrt(sum)
}

// analyze lower-cases text and returns its unigrams followed by its bigrams.
func analyze(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	tokens := tokenPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

package index

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"rageval/internal/domain"
)

// ErrEmptyCorpus is returned when Build is called with no documents.
var ErrEmptyCorpus = errors.New("empty corpus")

// Index is a read-only TF-IDF vector space fitted over a document corpus.
// It is built once per invocation and never mutated afterward; queries are
// vectorized against the same fitted vocabulary (unknown terms contribute
// zero weight).
type Index struct {
	docs    []domain.Document
	byID    map[string]int
	vectors [][]float64

	vocabulary   map[string]int
	idf          []float64
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// Build fits the vocabulary and IDF values from the documents (title and
// body concatenated) and vectorizes every document once.
func Build(docs []domain.Document) (*Index, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	idx := &Index{
		docs:         docs,
		byID:         make(map[string]int, len(docs)),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
	for i, d := range docs {
		idx.byID[d.DocID] = i
	}

	// Document frequencies over the corpus
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]struct{})
		for _, tok := range idx.tokenize(docText(d)) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable vocabulary ordering
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	idx.vocabulary = make(map[string]int, len(terms))
	idx.idf = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		idx.vocabulary[term] = i
		// Smoothed IDF
		idx.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	idx.vectors = make([][]float64, len(docs))
	for i, d := range docs {
		idx.vectors[i] = idx.vectorize(docText(d))
	}
	return idx, nil
}

// Size returns the number of documents in the corpus.
func (x *Index) Size() int { return len(x.docs) }

// Doc looks up a corpus document by id.
func (x *Index) Doc(docID string) (domain.Document, bool) {
	i, ok := x.byID[docID]
	if !ok {
		return domain.Document{}, false
	}
	return x.docs[i], true
}

// Retrieve scores the query against every document vector and returns the
// top K hits, at most min(topK, corpus size). Scores are non-increasing by
// rank; ties keep corpus insertion order. A query with no terms in the
// fitted vocabulary yields zero scores in corpus order, not an error.
func (x *Index) Retrieve(query string, topK int) []domain.RetrievedItem {
	if topK < 1 {
		topK = 1
	}
	qv := x.vectorize(query)

	order := make([]int, len(x.docs))
	scores := make([]float64, len(x.docs))
	for i := range x.docs {
		order[i] = i
		scores[i] = clamp01(dot(qv, x.vectors[i]))
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topK > len(order) {
		topK = len(order)
	}
	out := make([]domain.RetrievedItem, topK)
	for r := 0; r < topK; r++ {
		i := order[r]
		out[r] = domain.RetrievedItem{DocID: x.docs[i].DocID, Score: scores[i], Rank: r + 1}
	}
	return out
}

// vectorize computes an L2-normalized TF-IDF vector over the fitted
// vocabulary. Both document and query vectors pass through here, so dot
// products are cosine similarities.
func (x *Index) vectorize(text string) []float64 {
	vec := make([]float64, len(x.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range x.tokenize(text) {
		if i, ok := x.vocabulary[tok]; ok {
			tf[i]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for i, count := range tf {
		vec[i] = float64(count) / float64(total) * x.idf[i]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func (x *Index) tokenize(text string) []string {
	raw := x.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := x.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func docText(d domain.Document) string {
	if d.Title == "" {
		return d.Text
	}
	return d.Title + "\n" + d.Text
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

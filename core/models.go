package core

// QAPair is a question paired with its canonical answer.
// Pairs are immutable once they are part of a Corpus.
type QAPair struct {
	Question string
	Answer   string
}

// Key returns the identity key of the pair: its normalized question.
// Two pairs with the same key are duplicates.
func (p QAPair) Key() string {
	return Normalize(p.Question)
}

// Text returns the text indexed for the pair. Question and answer are
// indexed together so that answer vocabulary also attracts queries.
func (p QAPair) Text() string {
	return Normalize(p.Question + " " + p.Answer)
}

// SearchResult is a single ranked candidate produced by retrieval.
// It is transient and never persisted.
type SearchResult struct {
	Rank       int     // 1-based position in the result list
	Row        int     // Row id of the matching pair in the corpus
	Similarity float64 // 1 / (1 + Distance), in (0, 1]
	Distance   float64 // Squared Euclidean distance to the query vector
	Question   string
	Answer     string
}

package textutil

// CosineSimilarity returns 0 if either fingerprint is nil or empty.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// BestMatch scores query against each candidate with IDF weights computed
// over the candidates. It returns the index of the highest score at or
// above minScore, or -1. Ties keep the earlier candidate.
func BestMatch(query string, candidates []string, minScore float64) (int, float64) {
	q := NewFingerprint(query)
	if q == nil || len(candidates) == 0 {
		return -1, 0
	}
	corpus := NewCorpus()
	prints := make([]*Fingerprint, len(candidates))
	for i, c := range candidates {
		prints[i] = NewFingerprint(c)
		corpus.Add(prints[i])
	}
	idf := corpus.IDF()
	q = q.WithIDF(idf)

	best, bestScore := -1, 0.0
	for i, fp := range prints {
		score := CosineSimilarity(q, fp.WithIDF(idf))
		if score >= minScore && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

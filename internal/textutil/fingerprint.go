package textutil

import (
	"math"
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint is a term-frequency vector used to compare short phrases such
// as practice titles.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint returns nil when text yields no tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return newWeighted(counts)
}

// Tokenize lowercases text, splits on non-alphanumerics, and drops tokens
// shorter than three characters.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of unique tokens.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// WithIDF reweights f by idf. Terms absent from idf keep their count; a
// fingerprint whose every term weighs zero becomes nil.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.tokens))
	for token, count := range f.tokens {
		w := count
		if v, ok := idf[token]; ok {
			w *= v
		}
		if w != 0 {
			weighted[token] = w
		}
	}
	if len(weighted) == 0 {
		return nil
	}
	return newWeighted(weighted)
}

func newWeighted(tokens map[string]float64) *Fingerprint {
	var norm float64
	for _, w := range tokens {
		norm += w * w
	}
	return &Fingerprint{tokens: tokens, norm: math.Sqrt(norm)}
}

// Corpus collects document frequencies so words shared by every candidate
// ("prompt", "child") count for less than distinguishing ones.
type Corpus struct {
	docCount int
	docFreq  map[string]int
}

func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int)}
}

// Add registers fp's unique terms.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docCount++
	for token := range fp.tokens {
		c.docFreq[token]++
	}
}

// IDF returns log((N+1)/(1+df)) per term.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docCount == 0 {
		return nil
	}
	idf := make(map[string]float64, len(c.docFreq))
	n := float64(c.docCount)
	for term, df := range c.docFreq {
		idf[term] = math.Log((n + 1) / (1 + float64(df)))
	}
	return idf
}

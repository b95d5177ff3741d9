package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
	}{
		{"both nil", nil, nil},
		{"a nil", nil, NewFingerprint("clear cue")},
		{"b nil", NewFingerprint("clear cue"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); got != 0 {
				t.Errorf("CosineSimilarity() = %v, want 0", got)
			}
		})
	}
}

func TestCosineSimilarityIdenticalAndDisjoint(t *testing.T) {
	a := NewFingerprint("Prompting from Behind")
	if got := CosineSimilarity(a, NewFingerprint("prompting FROM behind")); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := CosineSimilarity(a, NewFingerprint("Turn Taking")); got != 0 {
		t.Errorf("disjoint similarity = %v, want 0", got)
	}
	partial := CosineSimilarity(a, NewFingerprint("Prompting from Front"))
	if partial <= 0 || partial >= 1 {
		t.Errorf("partial similarity = %v, want between 0 and 1", partial)
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	got := Tokenize("Low Energy/Affect, re-stating a cue")
	want := []string{"low", "energy", "affect", "stating", "cue"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
	if NewFingerprint("a b") != nil {
		t.Fatal("expected nil fingerprint when no token survives")
	}
}

func TestFingerprintTokenCount(t *testing.T) {
	if (*Fingerprint)(nil).TokenCount() != 0 {
		t.Fatal("nil fingerprint should have zero tokens")
	}
	if got := NewFingerprint("cue cue cue usage").TokenCount(); got != 2 {
		t.Fatalf("TokenCount = %d, want 2", got)
	}
}

func TestWithIDFDropsUbiquitousTerms(t *testing.T) {
	corpus := NewCorpus()
	corpus.Add(NewFingerprint("routine structure"))
	corpus.Add(NewFingerprint("routine chaining"))
	idf := corpus.IDF()
	if idf["routine"] >= idf["structure"] {
		t.Fatalf("expected shared term to weigh less: %v", idf)
	}

	only := map[string]float64{"routine": 0}
	if NewFingerprint("routine").WithIDF(only) != nil {
		t.Fatal("expected nil when every term weighs zero")
	}
	if NewCorpus().IDF() != nil {
		t.Fatal("expected nil IDF for empty corpus")
	}
}

func TestBestMatchPrefersDistinguishingTerms(t *testing.T) {
	titles := []string{
		"Consistent Cue Usage",
		"Inconsistent Cue",
		"Clear Expressive Cue",
		"Consistent Routine Structure",
	}
	idx, score := BestMatch("consistent cue", titles, 0.4)
	if idx != 0 {
		t.Fatalf("BestMatch = %d (%.2f), want 0", idx, score)
	}
	if idx, _ := BestMatch("turn taking", titles, 0.4); idx != -1 {
		t.Fatalf("expected no match, got %d", idx)
	}
	if idx, _ := BestMatch("", titles, 0); idx != -1 {
		t.Fatalf("expected no match for empty query, got %d", idx)
	}
}

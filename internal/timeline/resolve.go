// Package timeline places unordered observations on the video timeline.
//
// Everything here is a pure function of its inputs so results are
// reproducible run to run.
package timeline

import (
	"math"
	"strings"
)

// QuotePrefixRunes is how much of a quote is used for matching.
const QuotePrefixRunes = 100

var fillerQuotes = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"na":   {},
	"none": {},
}

// Segment is the subset of a transcript segment the resolver reads.
type Segment struct {
	Text  string
	Start float64
}

// IsFiller reports whether a quote carries no matchable text.
func IsFiller(quote string) bool {
	_, ok := fillerQuotes[strings.ToLower(strings.TrimSpace(quote))]
	return ok
}

// MatchQuote returns the start of the first segment whose text contains the
// first QuotePrefixRunes runes of quote, ignoring case.
func MatchQuote(quote string, segments []Segment) (float64, bool) {
	quote = strings.TrimSpace(quote)
	if IsFiller(quote) || len(segments) == 0 {
		return 0, false
	}
	if runes := []rune(quote); len(runes) > QuotePrefixRunes {
		quote = string(runes[:QuotePrefixRunes])
	}
	needle := strings.ToLower(quote)
	for _, seg := range segments {
		if strings.Contains(strings.ToLower(strings.TrimSpace(seg.Text)), needle) {
			return seg.Start, true
		}
	}
	return 0, false
}

// Distribute spreads position index of total evenly over duration. A single
// observation or an unknown duration lands at 0.
func Distribute(index, total int, duration float64) float64 {
	if total <= 1 || duration <= 0 {
		return 0
	}
	return float64(index) / float64(max(1, total-1)) * duration
}

// Resolve picks a quote match when one exists and falls back to
// distribution. The result is clamped to [0, duration] when the duration is
// known and rounded to one decimal place.
func Resolve(quote string, segments []Segment, duration float64, index, total int) float64 {
	at, ok := MatchQuote(quote, segments)
	if !ok {
		at = Distribute(index, total, duration)
	}
	if at < 0 {
		at = 0
	}
	if duration > 0 && at > duration {
		at = duration
	}
	return Round(at)
}

// Round rounds to one decimal place.
func Round(seconds float64) float64 {
	return math.Round(seconds*10) / 10
}

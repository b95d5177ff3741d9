package pipeline

import (
	"strings"

	"starreview/internal/analysis"
	"starreview/internal/practice"
	"starreview/internal/timeline"
	"starreview/internal/transcription"
)

const (
	strengthPrefix    = "✅ STRENGTH: "
	improvementPrefix = "⚠️ IMPROVEMENT NEEDED: "
)

// ComposeComment builds the reviewer-facing text for an observation: a
// polarity prefix, the description, then the quote and frame reference when
// present.
func ComposeComment(obs analysis.Observation) string {
	var b strings.Builder
	if obs.Positive {
		b.WriteString(strengthPrefix)
	} else {
		b.WriteString(improvementPrefix)
	}
	b.WriteString(obs.Description)
	if quote := strings.TrimSpace(obs.Quote); quote != "" {
		b.WriteString("\n\nQuote: \"")
		b.WriteString(quote)
		b.WriteString("\"")
	}
	if frames := strings.TrimSpace(obs.Frames); frames != "" {
		b.WriteString("\n\nObserved in: ")
		b.WriteString(frames)
	}
	return b.String()
}

// Merge orders transcript observations before visual ones.
func Merge(fromTranscript, fromVisual []analysis.Observation) []analysis.Observation {
	merged := make([]analysis.Observation, 0, len(fromTranscript)+len(fromVisual))
	merged = append(merged, fromTranscript...)
	return append(merged, fromVisual...)
}

// Annotate resolves a start time for every observation and links it to a
// criterion when the title matches one. Titles are looked up in the
// category's criteria first, then in the whole catalog.
func Annotate(observations []analysis.Observation, segments []transcription.Segment, duration float64, catalog practice.Catalog, category practice.Category) []Annotation {
	spans := make([]timeline.Segment, 0, len(segments))
	for _, seg := range segments {
		spans = append(spans, timeline.Segment{Text: seg.Text, Start: seg.Start})
	}
	scoped := catalog.ForCategory(category)

	out := make([]Annotation, 0, len(observations))
	total := len(observations)
	for i, obs := range observations {
		ann := Annotation{
			Observation: obs,
			StartTime:   timeline.Resolve(obs.Quote, spans, duration, i, total),
			Comment:     ComposeComment(obs),
			Status:      AnnotationNeedsReview,
		}
		if obs.Positive {
			ann.Status = AnnotationDraft
		}
		ann.PracticeID = linkPractice(obs, scoped, catalog)
		out = append(out, ann)
	}
	return out
}

// linkPractice prefers an exact title in the video's category, then anywhere
// in the catalog, then the closest same-polarity title in the same order.
// Zero means unmatched.
func linkPractice(obs analysis.Observation, scoped, catalog practice.Catalog) int64 {
	if item, ok := scoped.FindTitle(obs.PracticeTitle); ok {
		return item.ID
	}
	if item, ok := catalog.FindTitle(obs.PracticeTitle); ok {
		return item.ID
	}
	polarity := practice.PolarityOf(obs.Positive)
	if item, ok := scoped.ClosestTitle(obs.PracticeTitle, polarity); ok {
		return item.ID
	}
	if item, ok := catalog.ClosestTitle(obs.PracticeTitle, polarity); ok {
		return item.ID
	}
	return 0
}

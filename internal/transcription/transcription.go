package transcription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"starreview/internal/services"
)

// Method tags which strategy produced a transcript.
type Method string

const (
	MethodLocal  Method = "local_whisper"
	MethodRemote Method = "openai_api"
)

// Mode is the caller's explicit strategy selector.
type Mode string

const (
	ModeEnhanced Mode = "enhanced"
	ModeLocal    Mode = "local"
)

// ParseMode validates a user supplied mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeEnhanced:
		return ModeEnhanced, nil
	case ModeLocal:
		return ModeLocal, nil
	default:
		return "", services.Wrap(services.ErrValidation, "transcription", "parse mode",
			fmt.Sprintf("unknown mode %q (want enhanced or local)", value), nil)
	}
}

// Segment is one timed span of speech.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Result is a completed transcript.
type Result struct {
	Text     string        `json:"text"`
	Language string        `json:"language"`
	Segments []Segment     `json:"segments"`
	Method   Method        `json:"method"`
	Duration time.Duration `json:"processing_duration"`
}

// SegmentStarts returns segment start times in transcript order.
func (r Result) SegmentStarts() []float64 {
	starts := make([]float64, 0, len(r.Segments))
	for _, seg := range r.Segments {
		starts = append(starts, seg.Start)
	}
	return starts
}

// Engine transcribes one audio file.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// Select returns the engine for mode. There is no fallback: a missing engine
// for the requested mode is a configuration error.
func Select(mode Mode, local, remote Engine) (Engine, error) {
	switch mode {
	case ModeEnhanced:
		if remote == nil {
			return nil, services.Wrap(services.ErrConfiguration, "transcription", "select",
				"enhanced mode requires an OpenAI API key", nil)
		}
		return remote, nil
	case ModeLocal:
		if local == nil {
			return nil, services.Wrap(services.ErrConfiguration, "transcription", "select",
				"local transcription engine not configured", nil)
		}
		return local, nil
	default:
		_, err := ParseMode(string(mode))
		return nil, err
	}
}

// normalizeSegments trims text, drops empty spans and keeps start <= end.
func normalizeSegments(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		if seg.Start < 0 {
			seg.Start = 0
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		out = append(out, seg)
	}
	return out
}

func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

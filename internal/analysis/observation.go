package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source names the modality an observation came from.
type Source string

const (
	SourceTranscript Source = "transcript"
	SourceVisual     Source = "visual"
)

// Observation is a candidate finding that has not been placed on the
// timeline yet. PracticeTitle usually matches a catalog title but is not
// required to.
type Observation struct {
	PracticeTitle string  `json:"practice_title"`
	Description   string  `json:"description"`
	Positive      bool    `json:"is_positive"`
	Confidence    float64 `json:"confidence"`
	Quote         string  `json:"quote,omitempty"`
	Frames        string  `json:"frame_numbers,omitempty"`
	Source        Source  `json:"source"`
}

// frameRef accepts the frame reference as a string ("frames 1-3"), a single
// number, or a list of numbers.
type frameRef string

func (f *frameRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = frameRef(strings.TrimSpace(s))
		return nil
	case '[':
		var items []json.Number
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("frame_numbers: %w", err)
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, item.String())
		}
		if len(parts) == 0 {
			*f = ""
			return nil
		}
		*f = frameRef("frames " + strings.Join(parts, ", "))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("frame_numbers: %w", err)
		}
		*f = frameRef("frame " + n.String())
		return nil
	}
}

// confidence accepts numbers or numeric strings.
type confidence float64

func (c *confidence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("confidence: %w", err)
		}
		*c = confidence(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("confidence: %w", err)
	}
	*c = confidence(v)
	return nil
}

// clampConfidence bounds v to [0, 1]. NaN is treated as no confidence.
func clampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// finalize trims fields and drops observations without a practice title.
func finalize(items []Observation) []Observation {
	out := make([]Observation, 0, len(items))
	for _, item := range items {
		item.PracticeTitle = strings.TrimSpace(item.PracticeTitle)
		if item.PracticeTitle == "" {
			continue
		}
		item.Description = strings.TrimSpace(item.Description)
		item.Quote = strings.TrimSpace(item.Quote)
		item.Frames = strings.TrimSpace(item.Frames)
		item.Confidence = clampConfidence(item.Confidence)
		out = append(out, item)
	}
	return out
}

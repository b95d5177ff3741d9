package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"starreview/internal/logging"
	"starreview/internal/media/frames"
	"starreview/internal/practice"
	"starreview/internal/services"
	"starreview/internal/services/llm"
	"starreview/internal/services/vision"
)

// VisualSystemPrompt frames the multimodal model as an observer.
const VisualSystemPrompt = "You are an expert educational analyst specializing in observing teaching techniques through video."

const (
	DefaultMaxVisualPractices = 15
	DefaultMaxVisualFrames    = 15
)

const visualPromptTemplate = `You are reviewing still frames from a teaching session for visible evidence of teaching practices.

Teaching category: %s

Visual practices to look for:
%s

Look at the frames that follow and note:
1. Teacher positioning (eye level, facing the student, proximity)
2. Whether materials are ready and organized
3. Signs of student engagement
4. Physical prompts or gestures
5. The environment and setup

For each observation, report:
- practice_title: the practice name exactly as listed above
- description: what you see in the frames
- is_positive: true when done correctly, false when it needs improvement
- frame_numbers: the frames that show it, e.g. "frames 1-3"
- confidence: a number between 0.0 and 1.0

Respond with a single JSON object in exactly this shape:
{
  "visual_observations": [
    {
      "practice_title": "string",
      "description": "string",
      "is_positive": true,
      "frame_numbers": "string",
      "confidence": 0.0
    }
  ]
}

The top-level key must be "visual_observations".`

// VisionCompleter sends a JSON-only prompt with attached frames.
type VisionCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, prompt string, images []vision.Image) (string, error)
}

// Visual finds practice observations in sampled frames.
type Visual struct {
	client       VisionCompleter
	maxPractices int
	maxFrames    int
	logger       *slog.Logger
}

// VisualOption customizes the visual analysis service.
type VisualOption func(*Visual)

// WithVisualLimits overrides the practice and frame caps.
func WithVisualLimits(maxPractices, maxFrames int) VisualOption {
	return func(v *Visual) {
		if maxPractices > 0 {
			v.maxPractices = maxPractices
		}
		if maxFrames > 0 {
			v.maxFrames = maxFrames
		}
	}
}

// NewVisual builds the visual analysis service.
func NewVisual(client VisionCompleter, logger *slog.Logger, opts ...VisualOption) *Visual {
	v := &Visual{
		client:       client,
		maxPractices: DefaultMaxVisualPractices,
		maxFrames:    DefaultMaxVisualFrames,
		logger:       logging.NewComponentLogger(logger, "analysis.visual"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type visualItem struct {
	PracticeTitle string     `json:"practice_title"`
	Description   string     `json:"description"`
	IsPositive    bool       `json:"is_positive"`
	FrameNumbers  frameRef   `json:"frame_numbers"`
	Confidence    confidence `json:"confidence"`
}

type visualResponse struct {
	Observations *[]visualItem `json:"visual_observations"`
}

// SubsampleFrames keeps every stride-th frame, stride = max(1, len/limit),
// and at most limit frames.
func SubsampleFrames(all []frames.Frame, limit int) []frames.Frame {
	if limit <= 0 || len(all) <= limit {
		return all
	}
	stride := max(1, len(all)/limit)
	out := make([]frames.Frame, 0, limit)
	for i := 0; i < len(all) && len(out) < limit; i += stride {
		out = append(out, all[i])
	}
	return out
}

// VisualPrompt renders the text part of the multimodal request.
func VisualPrompt(category practice.Category, catalog practice.Catalog) string {
	return fmt.Sprintf(visualPromptTemplate, categoryLabel(category), practiceLines(catalog))
}

// Analyze submits up to maxFrames frames with the visually observable
// criteria of the category. No frames or no visual criteria yields no
// observations without a remote call.
func (v *Visual) Analyze(ctx context.Context, sampled []frames.Frame, catalog practice.Catalog, category practice.Category) ([]Observation, error) {
	criteria := VisualCatalog(FilterCatalog(catalog, category), v.maxPractices)
	if len(sampled) == 0 || len(criteria) == 0 {
		v.logger.Info("visual analysis skipped",
			logging.Int("frames", len(sampled)),
			logging.Int("criteria", len(criteria)),
		)
		return nil, nil
	}

	selected := SubsampleFrames(sampled, v.maxFrames)
	images := make([]vision.Image, 0, len(selected))
	for _, frame := range selected {
		images = append(images, vision.Image{Number: frame.Number, Timestamp: frame.Timestamp, JPEG: frame.JPEG})
	}

	content, err := v.client.CompleteJSON(ctx, VisualSystemPrompt, VisualPrompt(category, criteria), images)
	if err != nil {
		if services.KindOf(err) != nil {
			return nil, err
		}
		return nil, services.Wrap(services.ErrRemoteService, "analysis", "visual", "vision request failed", err)
	}
	observations, err := DecodeVisual(content)
	if err != nil {
		return nil, err
	}
	v.logger.Info("visual analysis complete",
		logging.Int("frames_sent", len(images)),
		logging.Int("criteria", len(criteria)),
		logging.Int("observations", len(observations)),
	)
	return observations, nil
}

// DecodeVisual parses the "visual_observations" reply.
func DecodeVisual(content string) ([]Observation, error) {
	var resp visualResponse
	if err := llm.DecodeLLMJSON(content, &resp); err != nil {
		return nil, services.Wrap(services.ErrAnalysisService, "analysis", "visual", "unparseable response", err)
	}
	if resp.Observations == nil {
		return nil, services.Wrap(services.ErrAnalysisService, "analysis", "visual", `response missing "visual_observations"`, nil)
	}
	items := make([]Observation, 0, len(*resp.Observations))
	for _, item := range *resp.Observations {
		items = append(items, Observation{
			PracticeTitle: item.PracticeTitle,
			Description:   item.Description,
			Positive:      item.IsPositive,
			Confidence:    float64(item.Confidence),
			Frames:        string(item.FrameNumbers),
			Source:        SourceVisual,
		})
	}
	return finalize(items), nil
}

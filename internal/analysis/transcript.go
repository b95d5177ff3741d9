package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"starreview/internal/logging"
	"starreview/internal/practice"
	"starreview/internal/services"
	"starreview/internal/services/llm"
)

// TranscriptSystemPrompt frames the language model as a domain reviewer.
const TranscriptSystemPrompt = "You are an expert educational analyst specializing in autism intervention techniques."

const transcriptPromptTemplate = `You are an expert in evidence-based teaching practices for children with autism.
Review the session transcript below and find moments that show the following practices:

%s

For every moment you find, report:
1. practice_title: the practice name exactly as listed above
2. quote: the words from the transcript that show it
3. is_positive: true when the practice is done correctly, false when it needs improvement
4. comment: one or two sentences explaining your judgement
5. confidence: a number between 0.0 and 1.0

Transcript:
%s

Respond with a single JSON object in exactly this shape:
{
  "annotations": [
    {
      "practice_title": "string",
      "quote": "string",
      "is_positive": true,
      "comment": "string",
      "confidence": 0.0
    }
  ]
}

The top-level key must be "annotations".`

// TextCompleter sends a JSON-only text prompt.
type TextCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Transcript finds practice observations in a session transcript.
type Transcript struct {
	llm    TextCompleter
	logger *slog.Logger
}

// NewTranscript builds the transcript analysis service.
func NewTranscript(client TextCompleter, logger *slog.Logger) *Transcript {
	return &Transcript{llm: client, logger: logging.NewComponentLogger(logger, "analysis.transcript")}
}

type transcriptItem struct {
	PracticeTitle string     `json:"practice_title"`
	Quote         string     `json:"quote"`
	IsPositive    bool       `json:"is_positive"`
	Comment       string     `json:"comment"`
	Description   string     `json:"description"`
	Confidence    confidence `json:"confidence"`
}

type transcriptResponse struct {
	Annotations *[]transcriptItem `json:"annotations"`
}

// TranscriptPrompt renders the user prompt for text and catalog.
func TranscriptPrompt(text string, catalog practice.Catalog) string {
	return fmt.Sprintf(transcriptPromptTemplate, practiceLines(catalog), text)
}

// Analyze submits the transcript with the category's criteria. An empty
// transcript or an empty filtered catalog yields no observations without a
// remote call.
func (t *Transcript) Analyze(ctx context.Context, text string, catalog practice.Catalog, category practice.Category) ([]Observation, error) {
	criteria := FilterCatalog(catalog, category)
	text = strings.TrimSpace(text)
	if len(criteria) == 0 || text == "" {
		t.logger.Info("transcript analysis skipped",
			logging.Int("criteria", len(criteria)),
			logging.Int("transcript_chars", len(text)),
		)
		return nil, nil
	}

	content, err := t.llm.CompleteJSON(ctx, TranscriptSystemPrompt, TranscriptPrompt(text, criteria))
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteService, "analysis", "transcript", "language model request failed", err)
	}
	observations, err := DecodeTranscript(content)
	if err != nil {
		return nil, err
	}
	t.logger.Info("transcript analysis complete",
		logging.Int("criteria", len(criteria)),
		logging.Int("observations", len(observations)),
	)
	return observations, nil
}

// DecodeTranscript parses the "annotations" reply.
func DecodeTranscript(content string) ([]Observation, error) {
	var resp transcriptResponse
	if err := llm.DecodeLLMJSON(content, &resp); err != nil {
		return nil, services.Wrap(services.ErrAnalysisService, "analysis", "transcript", "unparseable response", err)
	}
	if resp.Annotations == nil {
		return nil, services.Wrap(services.ErrAnalysisService, "analysis", "transcript", `response missing "annotations"`, nil)
	}
	items := make([]Observation, 0, len(*resp.Annotations))
	for _, item := range *resp.Annotations {
		description := item.Comment
		if strings.TrimSpace(description) == "" {
			description = item.Description
		}
		items = append(items, Observation{
			PracticeTitle: item.PracticeTitle,
			Description:   description,
			Positive:      item.IsPositive,
			Confidence:    float64(item.Confidence),
			Quote:         item.Quote,
			Source:        SourceTranscript,
		})
	}
	return finalize(items), nil
}

// Package vision sends sampled video frames to a multimodal chat model and
// returns its JSON reply.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"starreview/internal/services"
	"starreview/internal/services/openaiapi"
)

const (
	// DefaultModel is the multimodal model used for frame analysis.
	DefaultModel = "gpt-4o-mini"
	// DetailLow keeps per-image token cost bounded.
	DetailLow = "low"
)

// Config captures request settings for vision calls.
type Config struct {
	Model       string
	Temperature float64
	Detail      string
}

// Image is one encoded frame with its position in the video.
type Image struct {
	Number    int
	Timestamp float64
	JPEG      []byte
}

// Client issues multimodal chat completions.
type Client struct {
	api openai.Client
	cfg Config
}

// NewClient wraps a configured openai-go client.
func NewClient(api openai.Client, cfg Config) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Detail) == "" {
		cfg.Detail = DetailLow
	}
	return &Client{api: api, cfg: cfg}
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CompleteJSON sends the prompt followed by each labelled frame and returns
// the model's JSON object reply.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, prompt string, images []Image) (string, error) {
	if len(images) == 0 {
		return "", services.Wrap(services.ErrValidation, "vision", "complete", "at least one frame required", nil)
	}
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 1+2*len(images))
	parts = append(parts, openai.TextContentPart(prompt))
	for _, img := range images {
		parts = append(parts,
			openai.TextContentPart(fmt.Sprintf("Frame %d (%.1fs):", img.Number, img.Timestamp)),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    DataURL(img.JPEG),
				Detail: c.cfg.Detail,
			}),
		)
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(parts),
		},
		Model:       c.cfg.Model,
		Temperature: openai.Float(c.cfg.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		msg := "vision request failed"
		if status, ok := openaiapi.StatusCode(err); ok {
			msg = fmt.Sprintf("vision request returned http %d", status)
		}
		return "", services.Wrap(services.ErrRemoteService, "vision", "chat completion", msg, err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrAnalysisService, "vision", "chat completion", "empty choices", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrAnalysisService, "vision", "chat completion",
			fmt.Sprintf("empty content (finish_reason=%q)", resp.Choices[0].FinishReason), nil)
	}
	return content, nil
}

// DataURL encodes JPEG bytes as an inline image URL.
func DataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

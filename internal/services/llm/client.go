package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"starreview/internal/services"
	"starreview/internal/services/openaiapi"
)

// DefaultModel is used when the config leaves [llm].model blank.
const DefaultModel = "gpt-4o-mini"

// Config describes one chat-completions endpoint. BaseURL is the API root
// (".../v1"); a trailing "/chat/completions" is tolerated for older configs.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	Temperature    float64
	TimeoutSeconds int
	// MaxRetries bounds openai-go's retry loop for 408/429/5xx and
	// connection errors. Zero disables retries.
	MaxRetries int
}

// Client sends JSON-mode prompts to an OpenAI-compatible endpoint such as
// OpenAI itself or OpenRouter.
type Client struct {
	api openai.Client
	cfg Config
}

// NewClient builds a client on openai-go. The key is required.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	cfg.BaseURL = APIRoot(cfg.BaseURL)
	api, err := openaiapi.NewClient(openaiapi.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Referer:    cfg.Referer,
		Title:      cfg.Title,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	return &Client{api: api, cfg: cfg}, nil
}

// APIRoot strips a trailing slash and "/chat/completions" from url.
func APIRoot(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	return strings.TrimSuffix(url, "/chat/completions")
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CompleteJSON sends a system and user prompt in json_object mode and
// returns the raw reply content. Callers decode it with DecodeLLMJSON.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "user prompt required", nil)
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       c.cfg.Model,
		Temperature: openai.Float(c.cfg.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		msg := "chat completion failed"
		if status, ok := openaiapi.StatusCode(err); ok {
			msg = fmt.Sprintf("chat completion returned http %d", status)
		}
		return "", services.Wrap(services.ErrRemoteService, "llm", "chat completion", msg, err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrAnalysisService, "llm", "chat completion", "empty choices", nil)
	}
	choice := resp.Choices[0]
	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return "", services.Wrap(services.ErrAnalysisService, "llm", "chat completion", "model refused: "+refusal, nil)
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrAnalysisService, "llm", "chat completion",
			fmt.Sprintf("empty content (finish_reason=%q)", choice.FinishReason), nil)
	}
	return content, nil
}

// HealthCheck looks up the configured model, which verifies the key and
// that the endpoint serves the model.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.Models.Get(ctx, c.cfg.Model); err != nil {
		if status, ok := openaiapi.StatusCode(err); ok {
			switch status {
			case 401, 403:
				return fmt.Errorf("auth failed (invalid api key): http %d", status)
			case 404:
				return fmt.Errorf("model %q not available", c.cfg.Model)
			}
			return fmt.Errorf("model lookup failed: http %d", status)
		}
		return err
	}
	return nil
}

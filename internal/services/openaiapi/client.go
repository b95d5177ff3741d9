// Package openaiapi builds configured openai-go clients for the remote
// transcription and vision services.
package openaiapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"starreview/internal/services"
)

// DefaultBaseURL is the hosted OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config captures connection settings shared by every openai-go caller.
type Config struct {
	APIKey     string
	BaseURL    string
	Referer    string
	Title      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// NewClient returns an openai-go client configured from cfg.
func NewClient(cfg Config) (openai.Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return openai.Client{}, services.Wrap(services.ErrConfiguration, "openai", "new client", "api key required", nil)
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(base),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if referer := strings.TrimSpace(cfg.Referer); referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", referer))
	}
	if title := strings.TrimSpace(cfg.Title); title != "" {
		opts = append(opts, option.WithHeader("X-Title", title))
	}
	return openai.NewClient(opts...), nil
}

// StatusCode reports the HTTP status carried by an API error.
func StatusCode(err error) (int, bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.StatusCode, true
	}
	return 0, false
}

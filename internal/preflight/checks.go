package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"starreview/internal/config"
	"starreview/internal/deps"
	"starreview/internal/services/llm"
	"starreview/internal/services/openaiapi"
	"starreview/internal/transcription"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// One attempt, 30 second budget.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: 30,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckOpenAI verifies the hosted API key by looking up the configured
// vision model.
func CheckOpenAI(ctx context.Context, cfg *config.Config) Result {
	const name = "OpenAI API"

	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := openaiapi.NewClient(openaiapi.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: 15 * time.Second,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := client.Models.Get(checkCtx, cfg.OpenAI.VisionModel); err != nil {
		if code, ok := openaiapi.StatusCode(err); ok {
			switch code {
			case 401, 403:
				return Result{Name: name, Detail: "auth failed (invalid api key)"}
			case 404:
				return Result{Name: name, Detail: fmt.Sprintf("model %q not available", cfg.OpenAI.VisionModel)}
			}
			return Result{Name: name, Detail: fmt.Sprintf("model lookup failed (%d)", code)}
		}
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the media and transcription tools for cfg.
// uvx is optional when enhanced mode has an API key to fall back on.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	uvxOptional := cfg.Transcription.Mode == string(transcription.ModeEnhanced) && cfg.OpenAI.APIKey != ""
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction and frame sampling",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
		{
			Name:        "uvx",
			Command:     cfg.Transcription.UVXBinary,
			Description: "Required for local WhisperX transcription",
			Optional:    uvxOptional,
		},
	}
	return deps.CheckBinaries(requirements)
}

// summarizeAPIError produces a human-readable summary for health check failures.
func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}

func sameAPIRoot(a, b string) bool {
	return llm.APIRoot(a) == llm.APIRoot(b)
}

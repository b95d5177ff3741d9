package preflight

import (
	"context"
	"strings"

	"starreview/internal/config"
)

// CheckOpenAIFromConfig evaluates hosted API status for status displays.
// A missing key is reported as disabled rather than failed because local
// mode works without it.
func CheckOpenAIFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "OpenAI API"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled (no API key; enhanced mode unavailable)"}
	}
	return CheckOpenAI(ctx, cfg)
}

// CheckLLMFromConfig evaluates transcript LLM status for status displays.
func CheckLLMFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Transcript LLM"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	llmCfg := cfg.GetLLM()
	if strings.TrimSpace(llmCfg.APIKey) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled (no API key; transcript analysis skipped)"}
	}
	if !llmUsesDistinctEndpoint(cfg) {
		return Result{Name: name, Passed: true, Detail: "Shares the OpenAI API settings"}
	}
	return CheckLLM(ctx, name, llmCfg)
}

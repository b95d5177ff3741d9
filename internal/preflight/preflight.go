package preflight

import (
	"context"

	"starreview/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the directory and hosted-service checks for cfg.
// Hosted checks only run when their API key is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
	}

	if cfg.OpenAI.APIKey != "" {
		results = append(results, CheckOpenAI(ctx, cfg))
	}

	// The transcript LLM only needs its own check when it resolves to a
	// different endpoint or key than the OpenAI settings.
	if llmCfg := cfg.GetLLM(); llmCfg.APIKey != "" && llmUsesDistinctEndpoint(cfg) {
		results = append(results, CheckLLM(ctx, "Transcript LLM", llmCfg))
	}

	return results
}

func llmUsesDistinctEndpoint(cfg *config.Config) bool {
	llmCfg := cfg.GetLLM()
	if cfg.OpenAI.APIKey == "" {
		return true
	}
	return llmCfg.APIKey != cfg.OpenAI.APIKey || !sameAPIRoot(llmCfg.BaseURL, cfg.OpenAI.BaseURL)
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

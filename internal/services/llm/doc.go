// Package llm sends JSON-only prompts to a chat-completions endpoint for
// transcript analysis.
//
// The client sits on openai-go, so any OpenAI-compatible gateway works by
// pointing base_url at its API root. Referer and title travel as the
// HTTP-Referer and X-Title headers OpenRouter reads. Retries for 408, 429
// and 5xx responses come from openai-go and honor Retry-After.
//
// DecodeLLMJSON tolerates the usual reply quirks: code fences and prose
// around the JSON object.
package llm

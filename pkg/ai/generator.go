package ai

import "context"

// TextGenerator generates text from a system prompt and user prompt.
// GenerateJSON requests a raw JSON document via the provider's
// response-format hint instead of free-form prose.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

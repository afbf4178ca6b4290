package llm

import (
	"context"
)

// LLMClient is the completion backend contract: one synchronous call per
// prompt, transport/auth failures surface as errors.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Package llm provides clients for external large-language-model APIs.
package llm

import "context"

// Client generates a chat completion from a system instruction and a single
// user prompt. Implementations are safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

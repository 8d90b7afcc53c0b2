// Package llm defines the narrow language-model client contract consumed
// by the summarization core, plus implementations for OpenAI and AWS
// Bedrock. The core never talks to a provider SDK directly; it hands a
// system/user prompt pair and a token budget to a Client and gets text
// back.
package llm

import "context"

// Request is a single-turn generation request.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Response carries the generated text and the provider-reported token
// usage. Empty Text signals a failed or empty generation; callers treat it
// the same as an error.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client is implemented by language-model backends.
type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

package llm

import (
	"context"
	"encoding/json"
)

// Provider is implemented by every language-model backend and decorator.
type Provider interface {
	// Generate sends req and returns the model's reply. When req.Schema is
	// set the reply Content is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model or deployment this provider sends requests to.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for structured JSON output.
	// When nil, Content is the raw text reply.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON shape expected from the model.
type Schema struct {
	// Name is kebab-case, e.g. "clinical-question". It also keys the
	// compiled-schema cache.
	Name        string
	Description string
	Definition  map[string]any

	// Strict requests the provider's strict structured-output mode. Strict
	// mode on OpenAI requires every property to be listed as required.
	Strict bool
}

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

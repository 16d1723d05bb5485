package nl2sql

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// Completer issues one non-streaming chat completion and returns the content
// of the first choice.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

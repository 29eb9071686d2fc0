package completion

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("completion provider not configured")

type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Completer genera texto (OpenAI chat completions en prod).
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

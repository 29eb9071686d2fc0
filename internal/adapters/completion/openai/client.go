// Package openai implementa completion.Completer con la API de chat completions.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kennel-exchange/internal/platform/httpclient"
	"kennel-exchange/internal/ports/completion"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	http  *httpclient.Client
	key   string
	model string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, completion.ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, key: cfg.APIKey, model: cfg.Model}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, req completion.Request) (string, error) {
	body := chatRequest{Model: c.model, MaxTokens: req.MaxTokens}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	var out chatResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.key}, body, &out)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %v", completion.ErrNotConfigured, err)
		}
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

package chatd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Completer produces an assistant reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, history []Message) (string, error)
}

// apologyReply is served when no upstream model can answer. The chat
// endpoint deliberately never fails on upstream exhaustion.
const apologyReply = "I apologize, but I'm currently experiencing high demand. Please try again in a few moments."

const defaultAttemptTimeout = 30 * time.Second

// LLMClient posts OpenAI-style chat completions, walking the configured
// model list until one answers.
type LLMClient struct {
	cfg  LLMConfig
	http *http.Client
	log  glog.Logger
}

func NewLLMClient(cfg LLMConfig, log glog.Logger) *LLMClient {
	if log == nil {
		log = quietLogger()
	}
	return &LLMClient{cfg: cfg, http: &http.Client{}, log: log}
}

func (c *LLMClient) Complete(ctx context.Context, history []Message) (string, error) {
	if c.cfg.APIKey == "" {
		c.log.Debug("no api key configured, returning canned reply")
		return apologyReply, nil
	}
	for _, model := range c.cfg.Models {
		reply, err := c.complete(ctx, model, history)
		if err == nil {
			return reply, nil
		}
		c.log.Warn("model attempt failed", "model", model, "error", err)
		if ctx.Err() != nil {
			return "", fmt.Errorf("llm: %w", ctx.Err())
		}
	}
	c.log.Warn("all models exhausted, returning canned reply")
	return apologyReply, nil
}

func (c *LLMClient) complete(ctx context.Context, model string, history []Message) (string, error) {
	timeout := time.Duration(c.cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msgs := make([]completionMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, completionMessage{Role: m.Role, Content: m.Content})
	}
	body, err := json.Marshal(completionRequest{Model: model, Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}
	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	reply := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("empty completion")
	}
	return reply, nil
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

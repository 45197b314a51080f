package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a2a402/gateway/internal/parser"
)

// AIAnalysis calls an AI provider to summarise/analyse text. When no
// provider key is configured it degrades gracefully per spec.md §7: the
// task still completes successfully with a placeholder result carrying a
// status: api_key_required marker, rather than failing.
type AIAnalysis struct {
	ProviderURL string
	APIKey      string
	Client      *http.Client
}

// NewAIAnalysis creates an AIAnalysis executor. providerURL defaults to a
// generic chat-completion-shaped endpoint if empty.
func NewAIAnalysis(providerURL, apiKey string) *AIAnalysis {
	if providerURL == "" {
		providerURL = "https://api.openai.com/v1/chat/completions"
	}
	return &AIAnalysis{ProviderURL: providerURL, APIKey: apiKey, Client: &http.Client{}}
}

// Execute implements Executor.
func (a *AIAnalysis) Execute(ctx context.Context, req parser.Request) (Result, error) {
	if a.APIKey == "" {
		placeholder, _ := json.Marshal(map[string]string{
			"status":  "api_key_required",
			"message": "AI provider not configured; returning placeholder analysis.",
			"input":   req.Content,
		})
		return Result{ContentType: "application/json", Data: placeholder, Degraded: true}, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"model": "gpt-4o-mini",
		"messages": []map[string]string{
			{"role": "user", "content": "Analyze and summarize: " + req.Content},
		},
	})
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.ProviderURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("ai provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading ai provider response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("ai provider returned %d", resp.StatusCode)
	}

	return Result{ContentType: "application/json", Data: data}, nil
}

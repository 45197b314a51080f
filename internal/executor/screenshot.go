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

// Screenshot calls out to a backend screenshot service. Shaped after the
// teacher's proxy.RPC: an outbound HTTP call that strips identifying
// headers and maps upstream failures to a generic error rather than
// leaking the upstream URL.
type Screenshot struct {
	BackendURL string
	APIKey     string
	Client     *http.Client
}

// NewScreenshot creates a Screenshot executor targeting backendURL.
func NewScreenshot(backendURL, apiKey string) *Screenshot {
	return &Screenshot{BackendURL: backendURL, APIKey: apiKey, Client: &http.Client{}}
}

// Execute implements Executor.
func (s *Screenshot) Execute(ctx context.Context, req parser.Request) (Result, error) {
	if s.BackendURL == "" {
		return Result{}, fmt.Errorf("screenshot backend not configured")
	}
	if req.URL == "" {
		return Result{}, fmt.Errorf("screenshot request missing target url")
	}

	body, err := json.Marshal(map[string]string{"url": req.URL})
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BackendURL+"/screenshot", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("screenshot backend unavailable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading screenshot response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("screenshot backend returned %d", resp.StatusCode)
	}

	return Result{ContentType: "image/png", Data: data}, nil
}

// Package assistant is the boundary to the external tax-question service.
//
// The core never depends on this package: calculation and classification
// results are always computed before (and independently of) any assistant
// call, so an assistant failure degrades the answer, never the report.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rumor-ml/taxease/internal/domain"
)

// Assistant answers free-form tax questions. The response is opaque text;
// callers must not parse structure out of it.
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// DefaultTimeout bounds one assistant request.
const DefaultTimeout = 60 * time.Second

// Client talks to an Ollama-compatible generate endpoint.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// GenerateRequest is the wire request for the generate endpoint.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse is the wire response from the generate endpoint.
type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewClient creates an assistant client for the given endpoint and model.
func NewClient(endpoint, model string) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Ask sends a tax question and returns the model's answer text.
// Every failure mode (network, timeout, bad status, malformed body) is
// wrapped in domain.ErrExternalService so callers can isolate it.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(QuestionPromptTemplate, question)

	reqBody := GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", domain.ErrExternalService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", domain.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: assistant call failed: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: assistant error (status %d): %s",
			domain.ErrExternalService, resp.StatusCode, string(body))
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode assistant response: %v", domain.ErrExternalService, err)
	}

	return genResp.Response, nil
}

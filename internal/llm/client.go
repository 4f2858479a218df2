package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Request is a single chat completion call.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	// Schema, when set, requests structured JSON output matching it.
	// SchemaName labels the schema in the provider request.
	Schema     map[string]interface{}
	SchemaName string
}

// Response is the model output plus token accounting.
type Response struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider abstracts the chat completion backend so generation code can run
// against fakes in tests.
type Provider interface {
	// Generate performs a plain text completion.
	Generate(ctx context.Context, req Request) (*Response, error)
	// GenerateStructured performs a completion with JSON schema output and
	// unmarshals the content into out.
	GenerateStructured(ctx context.Context, req Request, out interface{}) (*Response, error)
}

// RequestRecorder receives per-request observations. Implemented by the
// metrics service; nil disables recording.
type RequestRecorder interface {
	RecordLLMRequest(model, status string, duration time.Duration)
}

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	recorder   RequestRecorder
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RateLimit in requests per second. Zero disables client-side limiting.
	RateLimit  float64
	RateBurst  int
	MaxRetries int
	Recorder   RequestRecorder
}

// NewClient creates an LLM client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		maxRetries: opts.MaxRetries,
		recorder:   opts.Recorder,
	}
}

// Generate performs a plain text completion
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	return c.complete(ctx, req, false)
}

// GenerateStructured performs a completion with structured JSON output and
// unmarshals the content into out
func (c *Client) GenerateStructured(ctx context.Context, req Request, out interface{}) (*Response, error) {
	if req.Schema == nil {
		return nil, fmt.Errorf("structured generation requires a schema")
	}
	resp, err := c.complete(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Content)), out); err != nil {
		return nil, fmt.Errorf("failed to parse structured LLM output: %w", err)
	}
	return resp, nil
}

func (c *Client) complete(ctx context.Context, req Request, structured bool) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 2 * time.Second
			log.Printf("🔄 [LLM] Retrying request (attempt %d/%d) after %v: %v",
				attempt+1, c.maxRetries+1, backoff, lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doRequest(ctx, req, structured)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, req Request, structured bool) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.send(ctx, req, structured)
	if c.recorder != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.recorder.RecordLLMRequest(req.Model, status, time.Since(start))
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request, structured bool) (*Response, error) {
	messages := []map[string]string{
		{"role": "user", "content": req.UserPrompt},
	}
	if req.SystemPrompt != "" {
		messages = append([]map[string]string{{"role": "system", "content": req.SystemPrompt}}, messages...)
	}

	requestBody := map[string]interface{}{
		"model":       req.Model,
		"messages":    messages,
		"temperature": req.Temperature,
		"stream":      false,
	}

	if structured {
		name := req.SchemaName
		if name == "" {
			name = "structured_output"
		}
		requestBody["response_format"] = map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   name,
				"strict": true,
				"schema": req.Schema,
			},
		}
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("LLM request failed with status %d: %s", httpResp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(httpResp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	content := ""
	if choices, ok := result["choices"].([]interface{}); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]interface{}); ok {
			if message, ok := choice["message"].(map[string]interface{}); ok {
				if c, ok := message["content"].(string); ok {
					content = c
				}
			}
		}
	}
	if content == "" {
		return nil, fmt.Errorf("LLM response contained no content")
	}

	out := &Response{Content: content, Model: req.Model}
	if usage, ok := result["usage"].(map[string]interface{}); ok {
		if pt, ok := usage["prompt_tokens"].(float64); ok {
			out.InputTokens = int(pt)
		}
		if ct, ok := usage["completion_tokens"].(float64); ok {
			out.OutputTokens = int(ct)
		}
	}
	return out, nil
}

// stripCodeFences removes a markdown code fence wrapper some models add
// around JSON output despite structured mode.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

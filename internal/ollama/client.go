// Package ollama is the HTTP client for a local Ollama-compatible inference
// endpoint. It owns the wire contract (/api/generate, /api/tags), the
// response parsing, and the retry policy for unreachable endpoints.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/xoho/code-reviewer/internal/core"
)

// Client talks to one inference endpoint, one request at a time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	attempts   int
	backoff    time.Duration
}

// NewClient returns a client for the endpoint at baseURL. attempts bounds
// the retries for unreachable-endpoint failures; backoff is the initial
// delay, doubled at every attempt boundary.
func NewClient(baseURL string, attempts int, backoff time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
		logger:     logger,
		attempts:   attempts,
		backoff:    backoff,
	}
}

// newHTTPClient creates an HTTP client with longer timeouts for inference
// requests. A local model can take minutes to produce a completion.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   15 * time.Minute,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate submits the prompt and awaits a single textual completion.
// Unreachable-endpoint failures are retried up to the configured bound;
// unknown-model and malformed-response failures surface immediately.
func (c *Client) Generate(ctx context.Context, model, prompt string) (*core.Completion, error) {
	start := time.Now()
	bo := newBackoff(c.attempts, c.backoff)

	for {
		text, err := c.generateOnce(ctx, model, prompt)
		if err == nil {
			return &core.Completion{Text: text, Duration: time.Since(start)}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		if bo.exhausted() {
			return nil, fmt.Errorf("%w: %s gave no answer after %d attempts (%v); check that the endpoint is running and reachable",
				core.ErrEndpointUnreachable, c.baseURL, bo.attempt, err)
		}

		c.logger.WarnContext(ctx, "inference request failed, retrying",
			"endpoint", c.baseURL,
			"attempt", bo.attempt+1,
			"max_attempts", bo.max,
			"delay", bo.delay,
			"error", err,
		)
		if err := bo.wait(ctx); err != nil {
			return nil, err
		}
	}
}

// generateOnce performs a single HTTP round trip and classifies failures.
func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transportError{err: err}
	}

	c.logger.DebugContext(ctx, "inference response received",
		"status", resp.StatusCode, "bytes", len(body))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %q (endpoint %s answered 404: %s)",
			core.ErrModelNotFound, model, c.baseURL, strings.TrimSpace(string(body)))
	case resp.StatusCode >= 500:
		return "", &transportError{err: fmt.Errorf("endpoint returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: unexpected status %d: %s",
			core.ErrMalformedResponse, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseCompletion(body)
}

// parseCompletion reads a completion body. Each line is a {response, done}
// JSON object; a non-streaming endpoint sends exactly one. A body with no
// parseable line is malformed.
func parseCompletion(body []byte) (string, error) {
	var (
		text   strings.Builder
		parsed bool
	)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		parsed = true
		text.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if !parsed {
		return "", fmt.Errorf("%w: body %q", core.ErrMalformedResponse, truncateForError(string(body)))
	}
	return text.String(), nil
}

func truncateForError(s string) string {
	const max = 512
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// transportError marks a failure worth retrying: the endpoint could not be
// reached or answered with a server-side error.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

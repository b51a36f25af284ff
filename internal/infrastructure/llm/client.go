package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"newsradar/internal/config"
	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

const (
	// Input is truncated before submission to bound oracle cost and latency.
	maxScoreInput = 3000

	scorePrompt = `Rate the following article on a scale from 1 to 100 based on its relevance to AI, machine learning, and native development. Provide the score followed by a brief explanation, separated by a pipe character (|). Example format: "85|High relevance due to focus on ML algorithms": `

	summaryPrompt = `Please go over the following article and summarize it. Please keep the response to a maximum of 30 words: `
)

// ErrMissingAPIKey marks the scoring stage as unconfigured. It is fatal
// to scoring only; the rest of the pipeline does not depend on it.
var ErrMissingAPIKey = errors.New("openai api key is not configured")

// Client talks to an OpenAI-compatible chat completions API for
// relevance scoring and summarization. All scoring calls across a run
// share one bounded semaphore so in-flight oracle calls never exceed
// the configured cap.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	timeout    time.Duration
	sem        *semaphore.Weighted
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.RelevanceScorer = (*Client)(nil)
var _ ports.Summarizer = (*Client)(nil)

// NewClient builds a client from configuration. The semaphore is
// injected so tests can swap capacity.
func NewClient(cfg config.OpenAIConfig, timeout time.Duration, sem *semaphore.Weighted, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if sem == nil {
		sem = semaphore.NewWeighted(3)
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		timeout:  timeout,
		sem:      sem,
		// No client-level timeout; each call carries its own deadline.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Score submits the text to the oracle and parses a "score|explanation"
// answer. Timeouts and malformed answers degrade to fallback results
// instead of failing the batch; other transport errors propagate.
func (c *Client) Score(ctx context.Context, text string) (domain.Relevance, error) {
	if c.apiKey == "" {
		return domain.Relevance{}, ErrMissingAPIKey
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return domain.Relevance{}, fmt.Errorf("acquire scoring slot: %w", err)
	}
	defer c.sem.Release(1)

	text = truncateInput(text, maxScoreInput)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.complete(callCtx, scorePrompt+text, 150)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			c.debug("oracle call timed out", "timeout", c.timeout)
			return domain.Relevance{
				Score:       50,
				Explanation: "Scoring timed out - using default moderate relevance score",
			}, nil
		}
		return domain.Relevance{}, fmt.Errorf("score text: %w", err)
	}

	return parseRelevance(output), nil
}

// Summarize asks the oracle for a short digest of the article text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.complete(callCtx, summaryPrompt+text, 50)
	if err != nil {
		return "", fmt.Errorf("summarize text: %w", err)
	}

	return strings.TrimSpace(output), nil
}

// parseRelevance splits the oracle answer on the first pipe. Scores
// that are not integers in [0,100] yield the invalid-answer fallback.
func parseRelevance(output string) domain.Relevance {
	left, right, _ := strings.Cut(strings.TrimSpace(output), "|")

	score, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || score < 0 || score > 100 {
		return domain.Relevance{
			Score:       0,
			Explanation: "Invalid score received from the oracle.",
		}
	}

	explanation := strings.TrimSpace(right)
	if explanation == "" {
		explanation = "No explanation provided."
	}

	return domain.Relevance{Score: score, Explanation: explanation}
}

func (c *Client) complete(ctx context.Context, userContent string, maxTokens int) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a helpful assistant."},
			{"role": "user", "content": userContent},
		},
		"max_tokens":  maxTokens,
		"temperature": 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("oracle error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

// truncateInput bounds the text to limit bytes, backing up so the cut
// never lands inside a multi-byte rune.
func truncateInput(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

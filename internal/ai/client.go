// Package ai wraps the hosted Gemini text model for goal decomposition and per-task hints.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	DefaultModel   = "gemini-3-flash-preview"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultTimeout = 30 * time.Second

	FallbackHint = "No suggestions available right now."

	maxResponseBytes = 1 << 20
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Language    string
	Timeout     time.Duration
	Remediation string
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

// New always returns a client; without an API key every call fails with a CredentialError.
func New(cfg Config, log logrus.FieldLogger) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "English"
	}
	if strings.TrimSpace(cfg.Remediation) == "" {
		cfg.Remediation = DefaultRemediation
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "gemini",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		log: log.WithField("component", "ai"),
	}
}

func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) credentialError() error {
	return &CredentialError{Remediation: c.cfg.Remediation}
}

// DecomposeGoal asks for a list of actionable tasks. A response that is not a JSON array of
// drafts yields an empty list and no error; transport and API failures are returned.
func (c *Client) DecomposeGoal(ctx context.Context, goal string) ([]model.TaskDraft, error) {
	if !c.Enabled() {
		return nil, c.credentialError()
	}
	prompt := fmt.Sprintf("Break the following goal down into a list of technical, actionable tasks: %q. Answer in %s. Use one of Low, Medium, High or Critical for priority.", strings.TrimSpace(goal), c.cfg.Language)
	text, err := c.generate(ctx, prompt, &generationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   draftListSchema(),
	})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(text)
	if raw == "" {
		raw = "[]"
	}
	drafts := make([]model.TaskDraft, 0)
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		c.log.WithError(err).Warn("planner returned malformed JSON, ignoring it")
		return []model.TaskDraft{}, nil
	}
	return drafts, nil
}

// SuggestHint returns a short optimisation tip. Every failure except a missing credential
// is logged and turned into FallbackHint.
func (c *Client) SuggestHint(ctx context.Context, title, description string) (string, error) {
	if !c.Enabled() {
		return "", c.credentialError()
	}
	prompt := fmt.Sprintf("Give a two-sentence optimisation tip for this task: %q. Focus on efficiency or clarity. Answer in %s.", title+" - "+description, c.cfg.Language)
	text, err := c.generate(ctx, prompt, nil)
	if err != nil {
		c.log.WithError(err).Warn("hint request failed")
		return FallbackHint, nil
	}
	if strings.TrimSpace(text) == "" {
		return FallbackHint, nil
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string, gen *generationConfig) (string, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doGenerate(ctx, prompt, gen)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("ai: service temporarily unavailable: %w", err)
		}
		return "", err
	}
	return out.(string), nil
}

func (c *Client) doGenerate(ctx context.Context, prompt string, gen *generationConfig) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: gen,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode request: %w", err)
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	started := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("ai: read response: %w", err)
	}
	c.log.WithFields(logrus.Fields{"status": res.StatusCode, "elapsed": time.Since(started).String()}).Debug("model call finished")
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &APIError{StatusCode: res.StatusCode, Message: apiErrorMessage(payload)}
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	return decoded.text(), nil
}

func apiErrorMessage(payload []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(payload))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

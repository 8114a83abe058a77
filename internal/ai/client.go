package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"
)

// Diagnoser produces the diagnosis text for an evaluation.
type Diagnoser interface {
	Enabled() bool
	Diagnose(ctx context.Context, input DiagnosisInput) (string, error)
}

// Config holds OpenAI configuration parameters.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// Client implements Diagnoser against the OpenAI chat completions API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

var ErrDisabled = errors.New("ai diagnoser disabled")

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.2
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Diagnose asks the model for a short diagnosis grounded in the supplied
// metrics and knowledge.
func (c *Client) Diagnose(ctx context.Context, input DiagnosisInput) (string, error) {
	if c == nil || !c.Enabled() {
		return "", ErrDisabled
	}

	var reply chatResponse
	if err := c.post(ctx, "/chat/completions", c.chatRequest(input), &reply); err != nil {
		return "", err
	}
	if len(reply.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	object := extractJSONObject(reply.Choices[0].Message.Content)
	if object == "" {
		return "", errors.New("openai returned an empty diagnosis")
	}
	var parsed struct {
		Diagnosis string `json:"diagnosis"`
	}
	if err := json.Unmarshal([]byte(object), &parsed); err != nil {
		return "", fmt.Errorf("parse diagnosis: %w", err)
	}
	if text := strings.TrimSpace(parsed.Diagnosis); text != "" {
		return text, nil
	}
	return "", errors.New("diagnosis field missing from reply")
}

// post sends payload as JSON and decodes a 200 reply into out. Other
// statuses become a *StatusError.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&statusErr.Body)
		return statusErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError is a non-200 reply from the API.
type StatusError struct {
	Code int
	Body map[string]any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai status %d: %v", e.Code, e.Body)
}

// extractJSONObject strips markdown fences and any prose around the first
// JSON object in s.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if _, body, found := strings.Cut(rest, "\n"); found {
			rest = body
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "```"))
	}
	lo, hi := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if lo < 0 || hi < lo {
		return s
	}
	return strings.TrimSpace(s[lo : hi+1])
}

const systemPrompt = "You are a strategic finance analyst reviewing a business decision. " +
	"Reply with a strict JSON object containing the single key diagnosis. The diagnosis must be " +
	"at most three sentences, cite the figures you rely on, and name the main risk to capital " +
	"efficiency. Never invent metrics that were not supplied; call out missing data instead. " +
	"Emit nothing outside the JSON object."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chatRequest(input DiagnosisInput) chatRequest {
	return chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(input)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
}

func userPrompt(input DiagnosisInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(input.Question))
	fmt.Fprintf(&b, "Decision category: %s\n", input.Category)
	if stage := input.Context.Stage.String(); stage != "" {
		fmt.Fprintf(&b, "Company stage: %s\n", stage)
	}
	metrics := input.Context.Metrics()
	for _, name := range slices.Sorted(maps.Keys(metrics)) {
		fmt.Fprintf(&b, "%s: %g\n", name, metrics[name])
	}
	if ratio, ok := input.Context.LTVCAC(); ok {
		fmt.Fprintf(&b, "LTV/CAC: %.2f\n", ratio)
	}
	if len(input.Knowledge) > 0 {
		b.WriteString("Reference knowledge:\n")
		for _, snip := range input.Knowledge {
			fmt.Fprintf(&b, "- [%s] %s\n", snip.Namespace, snip.Content)
		}
	}
	if input.Baseline != "" {
		fmt.Fprintf(&b, "Heuristic diagnosis: %s\n", input.Baseline)
		b.WriteString("Use the heuristic as a starting point and refine it only where the evidence supports it.\n")
	}
	return b.String()
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GenerationService calls an OpenAI-compatible chat completion endpoint to
// synthesize recommendation answers. It is the dominant latency contributor
// in the pipeline, so every call is bounded by the configured timeout and
// the caller's context.
type GenerationService struct {
	client      *resty.Client
	model       string
	endpoint    string
	maxTokens   int
	temperature float64
	available   bool
}

// GenerationConfig holds configuration for the generation service.
type GenerationConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// GenerationResult carries the model output with call metadata.
type GenerationResult struct {
	Text      string
	LatencyMs int64
	Success   bool
}

// NewGenerationService creates a new generation service.
// Parameters:
//   - cfg: generation configuration including provider, model, and API key.
//
// Returns:
//   - *GenerationService: initialized client wrapper; reports unavailable
//     when no API key is configured.
func NewGenerationService(cfg *GenerationConfig) *GenerationService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	// Default to OpenAI compatible endpoint if not specified
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	endpoint := baseURL + "/chat/completions"

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}

	return &GenerationService{
		client:      client,
		model:       cfg.Model,
		endpoint:    endpoint,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		available:   cfg.APIKey != "",
	}
}

// GetModel returns the model name being used.
func (s *GenerationService) GetModel() string {
	return s.model
}

// IsAvailable reports whether the service is configured with credentials.
// Checked once per request before attempting generation; callers fall back
// to templated answers when false.
func (s *GenerationService) IsAvailable() bool {
	return s.available
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate produces an answer from the system prompt and user prompt.
// Parameters:
//   - ctx: context for cancellation; a request-scoped deadline bounds the call.
//   - systemPrompt: role instructions for the model.
//   - prompt: user prompt with assembled context.
//
// Returns:
//   - *GenerationResult: text plus latency and success metadata; Success is
//     false on any failure, with the error alongside.
//   - error: non-nil if the call failed or the model returned no choices.
func (s *GenerationService) Generate(ctx context.Context, systemPrompt, prompt string) (*GenerationResult, error) {
	start := time.Now()

	if !s.available {
		return &GenerationResult{LatencyMs: 0, Success: false}, fmt.Errorf("generation service not configured")
	}

	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	latency := time.Since(start).Milliseconds()

	if err != nil {
		return &GenerationResult{LatencyMs: latency, Success: false}, fmt.Errorf("failed to call generation API: %w", err)
	}

	if httpResp.StatusCode() != 200 {
		if resp.Error != nil {
			return &GenerationResult{LatencyMs: latency, Success: false}, fmt.Errorf("generation API error: %s", resp.Error.Message)
		}
		return &GenerationResult{LatencyMs: latency, Success: false}, fmt.Errorf("generation API error: status %d", httpResp.StatusCode())
	}

	if len(resp.Choices) == 0 {
		return &GenerationResult{LatencyMs: latency, Success: false}, fmt.Errorf("no completion returned")
	}

	return &GenerationResult{
		Text:      resp.Choices[0].Message.Content,
		LatencyMs: latency,
		Success:   true,
	}, nil
}

// Package gemini implements the generation.TextGenerator interface using
// Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/salesim/salesim-api/internal/config"
	"github.com/salesim/salesim-api/internal/generation"
)

// GeminiClient implements the generation.TextGenerator interface using
// Google's Gemini API with exponential-backoff retry for transient
// failures.
type GeminiClient struct {
	logger *slog.Logger
	client *genai.Client
	model  string

	maxRetries int
	baseDelay  time.Duration

	// rng adds jitter to retry delays.
	rng *rand.Rand
}

// NewGeminiClient creates a new GeminiClient from the LLM configuration.
// Returns an error if the configuration is invalid or the underlying client
// cannot be created.
func NewGeminiClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiClient, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiClient{
		logger:     logger.With(slog.String("component", "gemini_client")),
		client:     client,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(baseDelaySeconds) * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Ensure GeminiClient implements generation.TextGenerator
var _ generation.TextGenerator = (*GeminiClient)(nil)

// Complete implements generation.TextGenerator.Complete.
// It calls the Gemini API with up to maxRetries+1 attempts, using
// exponential backoff with jitter between attempts for transient errors.
// Permanent errors (safety block, empty response) are returned immediately.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", generation.ErrEmptyPrompt
	}

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", g.maxRetries+1,
			"prompt_length", len(prompt))

		text, err := g.generate(ctx, prompt)
		if err == nil {
			g.logger.DebugContext(ctx, "Gemini API call succeeded",
				"attempt", attempt+1,
				"response_length", len(text))
			return text, nil
		}

		// Permanent errors are never retried.
		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "permanent Gemini API error, not retrying",
				"attempt", attempt+1, "error", err)
			return "", err
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attempt+1, "error", err)

		if attempt >= g.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, g.maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(g.baseDelay) * math.Pow(2, float64(attempt))
		jitter := 0.5 + g.rng.Float64()*0.5
		delay := time.Duration(backoff * jitter)

		g.logger.InfoContext(ctx, "retrying Gemini API call after delay",
			"attempt", attempt+1, "delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// generate performs a single API call and classifies its outcome.
func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		// API and transport errors are treated as transient by default.
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text parts in response", generation.ErrInvalidResponse)
	}

	return text, nil
}

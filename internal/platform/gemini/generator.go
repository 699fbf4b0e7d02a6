package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/engram-api/internal/config"
	"github.com/phrazzld/engram-api/internal/generation"
	"github.com/phrazzld/engram-api/internal/platform/logger"
)

// baseRetryDelay is the first backoff step; each retry doubles it and
// applies jitter.
const baseRetryDelay = 2 * time.Second

// Generator implements the generation.Generator interface using Google's
// Gemini API.
type Generator struct {
	client *genai.Client
	model  string
	config config.LLMConfig
	logger *slog.Logger
}

// NewGenerator creates a Gemini-backed card generator from the LLM
// configuration. Returns a wrapped generation.ErrInvalidConfig when the
// API key or model name is missing.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		client: client,
		model:  cfg.ModelName,
		config: cfg,
		logger: log.With(slog.String("component", "gemini_generator")),
	}, nil
}

// Ensure Generator implements generation.Generator
var _ generation.Generator = (*Generator)(nil)

// GenerateCards implements generation.Generator.GenerateCards.
func (g *Generator) GenerateCards(
	ctx context.Context,
	prompt string,
) ([]generation.CardDraft, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	rendered, err := buildPrompt(prompt)
	if err != nil {
		return nil, err
	}

	if g.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(
			ctx,
			time.Duration(g.config.TimeoutSeconds)*time.Second,
		)
		defer cancel()
	}

	drafts, err := g.callWithRetry(ctx, log, rendered)
	if err != nil {
		return nil, err
	}

	log.Info("cards drafted", slog.Int("count", len(drafts)))
	return drafts, nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff and jitter. Permanent errors (safety blocks,
// unparseable responses) return immediately.
func (g *Generator) callWithRetry(
	ctx context.Context,
	log *slog.Logger,
	prompt string,
) ([]generation.CardDraft, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		drafts, err := g.callOnce(ctx, prompt)
		if err == nil {
			return drafts, nil
		}
		lastErr = err

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			log.Warn("permanent generation error, not retrying",
				slog.String("error", err.Error()))
			return nil, err
		}

		log.Error("gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1),
			slog.String("error", err.Error()))

		if attempt == maxRetries {
			break
		}

		// delay = base * 2^attempt * rand[0.5, 1.0)
		backoff := float64(baseRetryDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: exceeded %d attempts: %v",
		generation.ErrTransientFailure, maxRetries+1, lastErr)
}

// callOnce performs a single JSON-mode generation call and parses the
// result.
func (g *Generator) callOnce(ctx context.Context, prompt string) ([]generation.CardDraft, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		// API-level failures are assumed transient; the caller's retry
		// budget bounds the damage when they are not.
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	return parseDrafts(resp.Text())
}

// parseDrafts decodes the model's JSON array into card drafts.
func parseDrafts(text string) ([]generation.CardDraft, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	var drafts []generation.CardDraft
	if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: response contained no cards", generation.ErrInvalidResponse)
	}
	return drafts, nil
}

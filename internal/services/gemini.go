package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/career-planner/internal/config"
	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
)

type geminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	log         *logger.Logger
}

// NewGeminiService serves the same chat contract through the Gemini API.
func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, temperature float64, log *logger.Logger) (ChatCompletionService, error) {
	if log == nil {
		log = logger.Nop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   cfg.Model,
		temperature: float32(temperature),
		log:         log.With("provider", config.ProviderGemini, "model", cfg.Model),
	}, nil
}

func (g *geminiService) Provider() string { return config.ProviderGemini }
func (g *geminiService) Model() string    { return g.modelName }

// Complete implements ChatCompletionService.
func (g *geminiService) Complete(ctx context.Context, messages []models.ChatMessage, maxTokens int) (string, error) {
	start := time.Now()
	contents, genConfig := g.request(messages, maxTokens)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, genConfig)
	if err != nil {
		return "", g.wrapError(err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrUnexpectedResponse)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrUnexpectedResponse)
	}

	g.log.Info("gemini response received",
		"chars", len([]rune(text)),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// Stream implements ChatCompletionService.
func (g *geminiService) Stream(ctx context.Context, messages []models.ChatMessage, maxTokens int, emit func(models.StreamEvent) error) error {
	contents, genConfig := g.request(messages, maxTokens)

	var full strings.Builder
	started := false

	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, contents, genConfig) {
		if err != nil {
			if !started {
				return g.wrapError(err)
			}
			g.log.Error("gemini stream interrupted", "error", err)
			return emit(models.ErrorEvent(err.Error()))
		}
		started = true

		if resp == nil {
			continue
		}
		text := resp.Text()
		if text == "" {
			continue
		}

		full.WriteString(text)
		if err := emit(models.ContentEvent(text)); err != nil {
			return err
		}
	}

	return emit(models.DoneEvent(full.String()))
}

func (g *geminiService) request(messages []models.ChatMessage, maxTokens int) ([]*genai.Content, *genai.GenerateContentConfig) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(maxTokens),
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range messages {
		if m.Role == models.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	if len(system) > 0 {
		genConfig.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	return contents, genConfig
}

func (g *geminiService) wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		g.log.Warn("gemini rejected request", "status", apiErr.Code, "message", apiErr.Message)
		return &UpstreamError{StatusCode: apiErr.Code, Body: preview(apiErr.Message, previewLimit)}
	}
	return fmt.Errorf("failed to generate text: %w", err)
}

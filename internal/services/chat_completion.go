package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"alfredoptarigan/career-planner/internal/config"
	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
)

// ErrUnexpectedResponse means the upstream answered 2xx but not with a usable completion.
var ErrUnexpectedResponse = errors.New("unexpected chat completion response structure")

// UpstreamError is a non-2xx answer from the chat-completion API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat completion API returned %d: %s", e.StatusCode, e.Body)
}

// ChatCompletionService sends a role-tagged message list to a hosted model.
// Neither mode retries.
type ChatCompletionService interface {
	// Complete blocks until the whole answer is available and returns its text.
	Complete(ctx context.Context, messages []models.ChatMessage, maxTokens int) (string, error)
	// Stream relays the answer as content events followed by one done event.
	// Errors before the first byte (including *UpstreamError) are returned, not emitted.
	Stream(ctx context.Context, messages []models.ChatMessage, maxTokens int, emit func(models.StreamEvent) error) error
	Provider() string
	Model() string
}

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Stream      bool                 `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type deepSeekService struct {
	endpoint     string
	apiKey       string
	model        string
	temperature  float64
	httpClient   *http.Client
	streamClient *http.Client
	normalizer   *ResponseNormalizer
	log          *logger.Logger
}

// NewDeepSeekService talks to any OpenAI-compatible /chat/completions endpoint.
func NewDeepSeekService(cfg config.LLMConfig, normalizer *ResponseNormalizer, log *logger.Logger) ChatCompletionService {
	if log == nil {
		log = logger.Nop()
	}
	if normalizer == nil {
		normalizer = NewResponseNormalizer(log)
	}

	// Streams stay open for as long as the model writes, so the stream client
	// only bounds the wait for response headers.
	streamTransport := http.DefaultTransport.(*http.Transport).Clone()
	streamTransport.ResponseHeaderTimeout = cfg.Timeout
	streamTransport.DialContext = (&net.Dialer{Timeout: 10 * time.Second}).DialContext

	return &deepSeekService{
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{Transport: streamTransport},
		normalizer:   normalizer,
		log:          log.With("provider", config.ProviderDeepSeek, "model", cfg.Model),
	}
}

func (d *deepSeekService) Provider() string { return config.ProviderDeepSeek }
func (d *deepSeekService) Model() string    { return d.model }

// Complete implements ChatCompletionService.
func (d *deepSeekService) Complete(ctx context.Context, messages []models.ChatMessage, maxTokens int) (string, error) {
	start := time.Now()

	resp, err := d.post(ctx, d.httpClient, messages, maxTokens, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat completion response: %w", err)
	}

	var cc chatCompletionResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		d.log.Error("chat completion decode failed", "error", err, "raw", preview(string(raw), previewLimit))
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(cc.Choices) == 0 {
		d.log.Error("chat completion has no choices", "raw", preview(string(raw), previewLimit))
		return "", fmt.Errorf("%w: no choices in response", ErrUnexpectedResponse)
	}

	content := cc.Choices[0].Message.Content
	d.log.Info("chat completion received",
		"chars", len([]rune(content)),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// Stream implements ChatCompletionService.
func (d *deepSeekService) Stream(ctx context.Context, messages []models.ChatMessage, maxTokens int, emit func(models.StreamEvent) error) error {
	resp, err := d.post(ctx, d.streamClient, messages, maxTokens, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	d.log.Debug("chat completion stream opened")
	return d.normalizer.DecodeStream(resp.Body, emit)
}

func (d *deepSeekService) post(ctx context.Context, client *http.Client, messages []models.ChatMessage, maxTokens int, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       d.model,
		Messages:    messages,
		Temperature: d.temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, previewLimit))
		_ = resp.Body.Close()
		d.log.Warn("chat completion rejected", "status", resp.StatusCode, "stream", stream)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return resp, nil
}

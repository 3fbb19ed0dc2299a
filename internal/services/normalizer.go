package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
)

const (
	doneSentinel   = "[DONE]"
	previewLimit   = 500
	maxSSELineSize = 1 << 20
)

// ResponseNormalizer turns raw upstream output into what the browser receives.
type ResponseNormalizer struct {
	log *logger.Logger
}

func NewResponseNormalizer(log *logger.Logger) *ResponseNormalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &ResponseNormalizer{log: log}
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// DecodeStream reads an OpenAI-style SSE body and emits one content event per
// non-empty delta, in order, then a single done event carrying the full text.
// Malformed data lines are logged and skipped. An error from emit stops decoding.
func (n *ResponseNormalizer) DecodeStream(r io.Reader, emit func(models.StreamEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)

	var full strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimPrefix(line, "data:")
		data = strings.TrimPrefix(data, " ")

		if strings.TrimSpace(data) == doneSentinel {
			return emit(models.DoneEvent(full.String()))
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			n.log.Warn("skipping malformed stream line", "error", err, "line", preview(data, 200))
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		full.WriteString(content)
		if err := emit(models.ContentEvent(content)); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read upstream stream: %w", err)
	}

	n.log.Warn("upstream stream ended without done sentinel", "chars", full.Len())
	return emit(models.DoneEvent(full.String()))
}

// ExtractJSONCandidate is a best-effort extractor, not a parser. It strips a
// surrounding ``` fence and returns the text between the first '{' and the
// last '}'. It does not cope with several top-level objects or with unbalanced
// braces inside string values; such input reaches the JSON decoder as is.
func ExtractJSONCandidate(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		text = strings.Trim(text, "`")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// ParseModelJSON decodes the model's answer into a JSON object. On failure it
// returns a ParseFailure carrying the decoder error and a preview of the
// cleaned text.
func (n *ResponseNormalizer) ParseModelJSON(text string) (map[string]any, *models.ParseFailure) {
	cleaned := ExtractJSONCandidate(text)

	var out map[string]any
	err := json.Unmarshal([]byte(cleaned), &out)
	if err == nil && out == nil {
		err = errors.New("model output is not a JSON object")
	}
	if err != nil {
		details := fmt.Sprintf("JSON解析错误: %v. AI原始返回 (已清理): %s", err, preview(cleaned, previewLimit))
		n.log.Warn("model output is not valid JSON", "error", err, "chars", len(cleaned))
		return nil, &models.ParseFailure{
			Error:             "AI响应格式错误，无法解析为JSON",
			Details:           details,
			RawContentPreview: preview(cleaned, previewLimit),
		}
	}

	return out, nil
}

func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

package models

import (
	"bytes"
	"encoding/json"
)

type StreamEventKind int

const (
	StreamContent StreamEventKind = iota
	StreamDone
	StreamError
)

// StreamEvent is one SSE frame relayed to the browser.
type StreamEvent struct {
	Kind        StreamEventKind
	Content     string
	FullContent string
	Error       string
}

func ContentEvent(content string) StreamEvent {
	return StreamEvent{Kind: StreamContent, Content: content}
}

func DoneEvent(fullContent string) StreamEvent {
	return StreamEvent{Kind: StreamDone, FullContent: fullContent}
}

func ErrorEvent(msg string) StreamEvent {
	return StreamEvent{Kind: StreamError, Error: msg}
}

func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case StreamDone:
		return marshalNoEscape(struct {
			Done        bool   `json:"done"`
			FullContent string `json:"full_content"`
		}{true, e.FullContent})
	case StreamError:
		return marshalNoEscape(struct {
			Error string `json:"error"`
		}{e.Error})
	default:
		return marshalNoEscape(struct {
			Content string `json:"content"`
			Done    bool   `json:"done"`
		}{e.Content, false})
	}
}

// Frame renders the event as a complete "data: {...}\n\n" SSE frame.
func (e StreamEvent) Frame() ([]byte, error) {
	payload, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

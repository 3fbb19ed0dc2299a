package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-planner/internal/models"
)

func collect(events *[]models.StreamEvent) func(models.StreamEvent) error {
	return func(ev models.StreamEvent) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestDecodeStream(t *testing.T) {
	body := strings.Join([]string{
		`: keep-alive`,
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"职业"}}]}`,
		``,
		`data: {not json`,
		``,
		`data: {"choices":[{"delta":{"content":"规划"}}]}`,
		``,
		`data: [DONE]`,
		``,
		`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
	}, "\n")

	var events []models.StreamEvent
	err := NewResponseNormalizer(nil).DecodeStream(strings.NewReader(body), collect(&events))
	require.NoError(t, err)

	assert.Equal(t, []models.StreamEvent{
		models.ContentEvent("职业"),
		models.ContentEvent("规划"),
		models.DoneEvent("职业规划"),
	}, events)
}

func TestDecodeStreamWithoutSentinel(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\r\n\r\ndata:{\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\r\n"

	var events []models.StreamEvent
	err := NewResponseNormalizer(nil).DecodeStream(strings.NewReader(body), collect(&events))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, models.DoneEvent("ab"), events[2])
}

func TestDecodeStreamStopsOnEmitError(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\ndata: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n"
	gone := errors.New("client gone")

	calls := 0
	err := NewResponseNormalizer(nil).DecodeStream(strings.NewReader(body), func(models.StreamEvent) error {
		calls++
		return gone
	})

	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 1, calls)
}

func TestExtractJSONCandidate(t *testing.T) {
	tt := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", "好的，结果如下：{\"a\":{\"b\":2}} 希望有帮助", `{"a":{"b":2}}`},
		{"no braces", "  抱歉，无法回答  ", "抱歉，无法回答"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSONCandidate(tc.in))
		})
	}
}

func TestParseModelJSON(t *testing.T) {
	n := NewResponseNormalizer(nil)

	out, failure := n.ParseModelJSON("```json\n{\"insight\":\"ok\",\"recommendations\":[]}\n```")
	require.Nil(t, failure)
	assert.Equal(t, "ok", out["insight"])

	out, failure = n.ParseModelJSON("这不是JSON")
	assert.Nil(t, out)
	require.NotNil(t, failure)
	assert.Equal(t, "AI响应格式错误，无法解析为JSON", failure.Error)
	assert.Contains(t, failure.Details, "JSON解析错误")
	assert.Equal(t, "这不是JSON", failure.RawContentPreview)

	_, failure = n.ParseModelJSON("null")
	assert.NotNil(t, failure)

	long := "{" + strings.Repeat("坏", 800)
	_, failure = n.ParseModelJSON(long)
	require.NotNil(t, failure)
	assert.Len(t, []rune(failure.RawContentPreview), 500)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamEventJSON(t *testing.T) {
	tt := []struct {
		name string
		ev   StreamEvent
		want string
	}{
		{"content", ContentEvent("<b>职业</b>"), `{"content":"<b>职业</b>","done":false}`},
		{"done", DoneEvent("全文"), `{"done":true,"full_content":"全文"}`},
		{"error", ErrorEvent("API错误: 500"), `{"error":"API错误: 500"}`},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.ev)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(b))

			frame, err := tc.ev.Frame()
			require.NoError(t, err)
			assert.Equal(t, "data: "+tc.want+"\n\n", string(frame))
		})
	}
}

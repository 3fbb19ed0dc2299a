package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResultSchema(t *testing.T) {
	v, err := NewSchemaValidator(AnalysisResultSchema())
	require.NoError(t, err)

	tt := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "complete",
			doc:  `{"insight":"...","recommendations":[{"id":"1","name":"数据分析师","short_description":"...","reason":"...","percentage":85}]}`,
		},
		{
			name:    "missing recommendations",
			doc:     `{"insight":"..."}`,
			wantErr: true,
		},
		{
			name:    "recommendations not an array",
			doc:     `{"insight":"...","recommendations":{}}`,
			wantErr: true,
		},
		{
			name:    "incomplete recommendation",
			doc:     `{"insight":"...","recommendations":[{"id":"1","name":"数据分析师"}]}`,
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(tc.doc), &doc))

			err := v.Validate(doc)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

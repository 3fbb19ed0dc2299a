package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCareerContracts(t *testing.T) {
	assert.Equal(t,
		"name、salary_info、development_plan、learning_resources、core_competencies和daily_workflow",
		CareerContractV1.FieldList(),
	)
	assert.NotContains(t, CareerContractV2.Fields, "core_competencies")
	assert.Contains(t, CareerContractV2.Fields, "mbti_advantage")

	doc := map[string]any{"name": "x", "salary_info": "y", "hard_skills": "z"}
	assert.Equal(t,
		[]string{"development_plan", "learning_resources", "soft_skills", "mbti_advantage", "daily_workflow"},
		CareerContractV2.Missing(doc),
	)
}

func TestFallbackDetailsCarryEveryV2Field(t *testing.T) {
	for _, details := range []CareerDetailsV2{
		ParseFallbackDetails("护士"),
		CallFallbackDetails("护士", errors.New("timeout")),
	} {
		b, err := json.Marshal(details)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(b, &doc))

		assert.Empty(t, CareerContractV2.Missing(doc))
		assert.Equal(t, "护士", doc["name"])
		assert.NotEmpty(t, doc["error"])
	}
}

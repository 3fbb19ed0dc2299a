package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-planner/internal/models"
)

func TestTruncateResume(t *testing.T) {
	tt := []struct {
		name   string
		text   string
		limit  int
		marker string
		want   string
	}{
		{"shorter than limit", "abc", 5, "...", "abc"},
		{"exactly at limit", "abcde", 5, "...", "abcde"},
		{"over limit", "abcdef", 5, "...(已截断)", "abcde...(已截断)"},
		{"counts runes not bytes", "简历内容很长", 4, "...", "简历内容..."},
		{"no limit", strings.Repeat("x", 5000), 0, "...", strings.Repeat("x", 5000)},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TruncateResume(tc.text, tc.limit, tc.marker))
		})
	}
}

func TestResumeForPrompt(t *testing.T) {
	full := promptTemplates[TemplateAnalysisFull]
	preliminary := promptTemplates[TemplateAnalysisPreliminary]

	assert.Equal(t, "用户未上传简历。", ResumeForPrompt(full, "", false))
	assert.Equal(t, "用户未上传简历。", ResumeForPrompt(full, "  \n", true))
	assert.Equal(t, "我的简历", ResumeForPrompt(full, "我的简历", true))
	assert.Equal(t, preliminary.NoResumeText, ResumeForPrompt(preliminary, "我的简历", true))

	long := strings.Repeat("经", 3001)
	got := ResumeForPrompt(full, long, true)
	assert.Equal(t, strings.Repeat("经", 3000)+"...(简历内容过长，已截断)", got)
}

func TestEveryTemplateBuilds(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	in := PromptInput{
		MBTI:       "INTJ",
		City:       "上海",
		Tally:      TallyHolland(map[string]string{"1": "R", "2": "R", "3": "I"}),
		ResumeText: "五年后端开发经验",
		HasResume:  true,
		CareerID:   "3",
		CareerName: "数据工程师",
	}

	for name, tpl := range promptTemplates {
		t.Run(name, func(t *testing.T) {
			msgs, err := pb.Build(name, in)
			require.NoError(t, err)
			require.Len(t, msgs, 2)

			assert.Equal(t, models.RoleSystem, msgs[0].Role)
			assert.Equal(t, models.RoleUser, msgs[1].Role)
			assert.NotEmpty(t, msgs[0].Content)
			assert.Contains(t, msgs[1].Content, "INTJ")
			assert.NotContains(t, msgs[1].Content, "<no value>")

			if tpl.IgnoreResume {
				assert.NotContains(t, msgs[1].Content, "五年后端开发经验")
			} else {
				assert.Contains(t, msgs[1].Content, "五年后端开发经验")
			}

			if tpl.Summary == SummaryTop3 {
				assert.Contains(t, msgs[1].Content, "R型(2分), I型(1分)")
			} else {
				assert.Contains(t, msgs[1].Content, "R:2, I:1")
			}

			if tpl.Contract != nil {
				assert.Contains(t, msgs[1].Content, "数据工程师")
			}
		})
	}
}

func TestCareerStreamPromptNamesContractFields(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	msgs, err := pb.Build(TemplateCareerV1Stream, PromptInput{MBTI: "ENFP", City: "北京", CareerName: "产品经理", CareerID: "7"})
	require.NoError(t, err)

	assert.Contains(t, msgs[1].Content, models.CareerContractV1.FieldList())
	assert.Contains(t, msgs[1].Content, "产品经理 (ID: 7)")
	assert.Contains(t, msgs[1].Content, "未提供简历")
}

func TestUnknownTemplate(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	_, err = pb.Build("analysis.unknown", PromptInput{})
	assert.Error(t, err)
}

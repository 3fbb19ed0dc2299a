package services

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"alfredoptarigan/career-planner/internal/models"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

const (
	TemplateAnalysisStream      = "analysis.stream"
	TemplateAnalysisPreliminary = "analysis.preliminary"
	TemplateAnalysisFull        = "analysis.full"
	TemplateAnalysisLegacy      = "analysis.legacy"
	TemplateCareerV1Stream      = "career.v1.stream"
	TemplateCareerV2            = "career.v2"
)

type HollandSummaryStyle int

const (
	// SummaryCounts lists every category with its raw count.
	SummaryCounts HollandSummaryStyle = iota
	// SummaryTop3 lists the three strongest RIASEC categories.
	SummaryTop3
)

// PromptTemplate is one endpoint's fixed prompt recipe. The only behavioural
// differences between endpoints live in these fields.
type PromptTemplate struct {
	Name             string
	File             string
	Summary          HollandSummaryStyle
	ResumeLimit      int
	TruncationMarker string
	NoResumeText     string
	// IgnoreResume replaces any uploaded résumé with NoResumeText.
	IgnoreResume bool
	MaxTokens    int
	Contract     *models.CareerContract
}

var promptTemplates = map[string]PromptTemplate{
	TemplateAnalysisStream: {
		Name:             TemplateAnalysisStream,
		File:             "analysis_stream.tmpl",
		Summary:          SummaryCounts,
		ResumeLimit:      2000,
		TruncationMarker: "...(已截断)",
		NoResumeText:     "未上传简历",
		MaxTokens:        2500,
	},
	TemplateAnalysisPreliminary: {
		Name:         TemplateAnalysisPreliminary,
		File:         "analysis_preliminary.tmpl",
		Summary:      SummaryCounts,
		NoResumeText: "用户未提供简历，请仅基于MBTI和霍兰德信息进行分析。",
		IgnoreResume: true,
		MaxTokens:    4000,
	},
	TemplateAnalysisFull: {
		Name:             TemplateAnalysisFull,
		File:             "analysis_full.tmpl",
		Summary:          SummaryCounts,
		ResumeLimit:      3000,
		TruncationMarker: "...(简历内容过长，已截断)",
		NoResumeText:     "用户未上传简历。",
		MaxTokens:        4000,
	},
	TemplateAnalysisLegacy: {
		Name:             TemplateAnalysisLegacy,
		File:             "analysis_legacy.tmpl",
		Summary:          SummaryTop3,
		ResumeLimit:      1000,
		TruncationMarker: "...",
		NoResumeText:     "未上传简历。",
		MaxTokens:        3000,
	},
	TemplateCareerV1Stream: {
		Name:             TemplateCareerV1Stream,
		File:             "career_v1_stream.tmpl",
		Summary:          SummaryCounts,
		ResumeLimit:      1000,
		TruncationMarker: "...(已截断)",
		NoResumeText:     "未提供简历",
		MaxTokens:        2500,
		Contract:         &models.CareerContractV1,
	},
	TemplateCareerV2: {
		Name:         TemplateCareerV2,
		File:         "career_v2.tmpl",
		Summary:      SummaryTop3,
		NoResumeText: "未上传简历",
		MaxTokens:    3000,
		Contract:     &models.CareerContractV2,
	},
}

// PromptInput is what the user supplied, after extraction and tallying.
type PromptInput struct {
	MBTI       string
	City       string
	Tally      HollandTally
	ResumeText string
	HasResume  bool
	CareerID   string
	CareerName string
}

type promptData struct {
	MBTI           string
	City           string
	HollandSummary string
	Resume         string
	CareerID       string
	CareerName     string
	ContractFields string
}

type PromptBuilder struct {
	parsed map[string]*template.Template
}

func NewPromptBuilder() (*PromptBuilder, error) {
	parsed := make(map[string]*template.Template, len(promptTemplates))
	for name, tpl := range promptTemplates {
		t, err := template.ParseFS(promptFS, "prompts/"+tpl.File)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
		}
		parsed[name] = t
	}
	return &PromptBuilder{parsed: parsed}, nil
}

// Template looks up a named recipe.
func (pb *PromptBuilder) Template(name string) (PromptTemplate, error) {
	tpl, ok := promptTemplates[name]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("unknown prompt template %q", name)
	}
	return tpl, nil
}

// Build renders the system and user messages, always in that order.
func (pb *PromptBuilder) Build(name string, in PromptInput) ([]models.ChatMessage, error) {
	tpl, err := pb.Template(name)
	if err != nil {
		return nil, err
	}

	data := promptData{
		MBTI:           in.MBTI,
		City:           in.City,
		HollandSummary: pb.hollandSummary(tpl, in.Tally),
		Resume:         ResumeForPrompt(tpl, in.ResumeText, in.HasResume),
		CareerID:       in.CareerID,
		CareerName:     in.CareerName,
	}
	if tpl.Contract != nil {
		data.ContractFields = tpl.Contract.FieldList()
	}

	system, err := pb.render(name, "system", data)
	if err != nil {
		return nil, err
	}
	user, err := pb.render(name, "user", data)
	if err != nil {
		return nil, err
	}

	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: user},
	}, nil
}

func (pb *PromptBuilder) render(name, part string, data promptData) (string, error) {
	var sb strings.Builder
	if err := pb.parsed[name].ExecuteTemplate(&sb, part, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt %s: %w", part, name, err)
	}
	return sb.String(), nil
}

func (pb *PromptBuilder) hollandSummary(tpl PromptTemplate, tally HollandTally) string {
	if tpl.Summary == SummaryTop3 {
		return tally.TopSummary(3)
	}
	return tally.CountSummary()
}

// ResumeForPrompt picks the text placed in the "简历内容" slot.
func ResumeForPrompt(tpl PromptTemplate, text string, hasResume bool) string {
	if tpl.IgnoreResume || !hasResume || strings.TrimSpace(text) == "" {
		return tpl.NoResumeText
	}
	return TruncateResume(text, tpl.ResumeLimit, tpl.TruncationMarker)
}

// TruncateResume keeps the first limit runes and appends marker when the text
// is longer than limit. A limit of zero or less disables truncation.
func TruncateResume(text string, limit int, marker string) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + marker
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
)

// OutputFormatError means the model answered but the answer is not a usable analysis.
type OutputFormatError struct {
	Title  string
	Detail string
}

func (e *OutputFormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// AnalysisOutcome holds either the parsed model object or a description of why
// it could not be parsed. Exactly one field is set.
type AnalysisOutcome struct {
	Result       map[string]any
	ParseFailure *models.ParseFailure
}

type CareerAdvisorService interface {
	// Analyze serves the preliminary and full analysis templates.
	Analyze(ctx context.Context, templateName string, in models.AssessmentInput) (*AnalysisOutcome, error)
	// AnalyzeLegacy also enforces the recommendation schema.
	AnalyzeLegacy(ctx context.Context, in models.AssessmentInput) (map[string]any, error)
	// CareerDetails returns the parsed v2 object, or a fallback CareerDetailsV2
	// when the model output or the call itself failed.
	CareerDetails(ctx context.Context, req models.CareerRequest) (any, error)
	StreamAnalysis(ctx context.Context, in models.AssessmentInput, emit func(models.StreamEvent) error) error
	StreamCareerDetails(ctx context.Context, req models.CareerRequest, emit func(models.StreamEvent) error) error
}

type careerAdvisor struct {
	prompts    *PromptBuilder
	extractor  DocumentExtractor
	chat       ChatCompletionService
	normalizer *ResponseNormalizer
	validator  *SchemaValidator
	log        *logger.Logger
}

func NewCareerAdvisorService(
	prompts *PromptBuilder,
	extractor DocumentExtractor,
	chat ChatCompletionService,
	normalizer *ResponseNormalizer,
	log *logger.Logger,
) (CareerAdvisorService, error) {
	if log == nil {
		log = logger.Nop()
	}

	validator, err := NewSchemaValidator(AnalysisResultSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis schema: %w", err)
	}

	return &careerAdvisor{
		prompts:    prompts,
		extractor:  extractor,
		chat:       chat,
		normalizer: normalizer,
		validator:  validator,
		log:        log,
	}, nil
}

// Analyze implements CareerAdvisorService.
func (a *careerAdvisor) Analyze(ctx context.Context, templateName string, in models.AssessmentInput) (*AnalysisOutcome, error) {
	if templateName != TemplateAnalysisPreliminary && templateName != TemplateAnalysisFull {
		return nil, fmt.Errorf("template %q is not a batch analysis template", templateName)
	}

	log := a.requestLog(templateName)
	content, err := a.complete(ctx, log, templateName, in, "", "")
	if err != nil {
		return nil, err
	}

	result, failure := a.normalizer.ParseModelJSON(content)
	if failure != nil {
		log.Warn("analysis output not parseable", "details", failure.Details)
		return &AnalysisOutcome{ParseFailure: failure}, nil
	}

	log.Info("analysis completed")
	return &AnalysisOutcome{Result: result}, nil
}

// AnalyzeLegacy implements CareerAdvisorService.
func (a *careerAdvisor) AnalyzeLegacy(ctx context.Context, in models.AssessmentInput) (map[string]any, error) {
	log := a.requestLog(TemplateAnalysisLegacy)
	content, err := a.complete(ctx, log, TemplateAnalysisLegacy, in, "", "")
	if err != nil {
		return nil, err
	}

	result, failure := a.normalizer.ParseModelJSON(content)
	if failure != nil {
		log.Error("legacy analysis output not parseable", "details", failure.Details)
		return nil, &OutputFormatError{Title: "AI分析响应非JSON", Detail: failure.Details}
	}

	if err := a.validator.Validate(result); err != nil {
		log.Error("legacy analysis output failed schema", "error", err)
		return nil, &OutputFormatError{Title: "AI分析结果格式错误", Detail: err.Error()}
	}

	log.Info("legacy analysis completed")
	return result, nil
}

// CareerDetails implements CareerAdvisorService.
func (a *careerAdvisor) CareerDetails(ctx context.Context, req models.CareerRequest) (any, error) {
	log := a.requestLog(TemplateCareerV2).With("career", req.CareerName)
	content, err := a.complete(ctx, log, TemplateCareerV2, req.AssessmentInput, req.CareerID, req.CareerName)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) || errors.Is(err, ErrUnexpectedResponse) {
			return nil, err
		}
		log.Error("career details call failed", "error", err)
		return models.CallFallbackDetails(req.CareerName, err), nil
	}

	result, failure := a.normalizer.ParseModelJSON(content)
	if failure != nil {
		log.Warn("career details output not parseable", "details", failure.Details)
		return models.ParseFallbackDetails(req.CareerName), nil
	}

	if _, ok := result["name"]; !ok {
		result["name"] = req.CareerName
	}
	if missing := models.CareerContractV2.Missing(result); len(missing) > 0 {
		log.Warn("career details missing fields", "contract", models.CareerContractV2.Version, "missing", missing)
	}

	log.Info("career details completed")
	return result, nil
}

// StreamAnalysis implements CareerAdvisorService.
func (a *careerAdvisor) StreamAnalysis(ctx context.Context, in models.AssessmentInput, emit func(models.StreamEvent) error) error {
	return a.stream(ctx, TemplateAnalysisStream, in, "", "", emit)
}

// StreamCareerDetails implements CareerAdvisorService.
func (a *careerAdvisor) StreamCareerDetails(ctx context.Context, req models.CareerRequest, emit func(models.StreamEvent) error) error {
	return a.stream(ctx, TemplateCareerV1Stream, req.AssessmentInput, req.CareerID, req.CareerName, emit)
}

func (a *careerAdvisor) stream(ctx context.Context, templateName string, in models.AssessmentInput, careerID, careerName string, emit func(models.StreamEvent) error) error {
	log := a.requestLog(templateName)
	start := time.Now()

	tpl, messages, err := a.prepare(templateName, in, careerID, careerName)
	if err != nil {
		log.Error("prompt build failed", "error", err)
		return emit(models.ErrorEvent(err.Error()))
	}

	var (
		emitErr error
		events  int
	)
	relay := func(ev models.StreamEvent) error {
		if err := emit(ev); err != nil {
			emitErr = err
			return err
		}
		events++
		return nil
	}

	err = a.chat.Stream(ctx, messages, tpl.MaxTokens, relay)
	if emitErr != nil {
		log.Warn("client went away mid-stream", "events", events, "error", emitErr)
		return emitErr
	}
	if err != nil {
		log.Error("stream failed", "error", err, "events", events)
		return emit(models.ErrorEvent(StreamErrorMessage(err)))
	}

	log.Info("stream completed", "events", events, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// StreamErrorMessage is the text of the single error frame sent for a failed stream.
func StreamErrorMessage(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf("API错误: %d", upstream.StatusCode)
	}
	return err.Error()
}

func (a *careerAdvisor) complete(ctx context.Context, log *logger.Logger, templateName string, in models.AssessmentInput, careerID, careerName string) (string, error) {
	tpl, messages, err := a.prepare(templateName, in, careerID, careerName)
	if err != nil {
		return "", err
	}

	log.Debug("sending prompt", "system_chars", len([]rune(messages[0].Content)), "user_chars", len([]rune(messages[1].Content)))

	content, err := a.chat.Complete(ctx, messages, tpl.MaxTokens)
	if err != nil {
		log.Error("chat completion failed", "error", err)
		return "", err
	}
	return content, nil
}

func (a *careerAdvisor) prepare(templateName string, in models.AssessmentInput, careerID, careerName string) (PromptTemplate, []models.ChatMessage, error) {
	tpl, err := a.prompts.Template(templateName)
	if err != nil {
		return PromptTemplate{}, nil, err
	}

	var resumeText string
	hasResume := in.Resume != nil && !tpl.IgnoreResume
	if hasResume {
		resumeText = a.extractor.Extract(in.Resume.Path, in.Resume.Ext)
	}

	messages, err := a.prompts.Build(templateName, PromptInput{
		MBTI:       in.MBTI,
		City:       in.City,
		Tally:      TallyHolland(in.HollandAnswers),
		ResumeText: resumeText,
		HasResume:  hasResume,
		CareerID:   careerID,
		CareerName: careerName,
	})
	if err != nil {
		return PromptTemplate{}, nil, err
	}
	return tpl, messages, nil
}

func (a *careerAdvisor) requestLog(templateName string) *logger.Logger {
	return a.log.With("req_id", uuid.New().String(), "template", templateName)
}

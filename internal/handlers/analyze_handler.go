package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
	"alfredoptarigan/career-planner/internal/services"
)

type AnalyzeHandler struct {
	advisor services.CareerAdvisorService
	form    *FormReader
	log     *logger.Logger
}

func NewAnalyzeHandler(
	advisor services.CareerAdvisorService,
	form *FormReader,
	log *logger.Logger,
) *AnalyzeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalyzeHandler{
		advisor: advisor,
		form:    form,
		log:     log,
	}
}

// HandlePreliminary handles POST /api/analyze-preliminary. The résumé is never read.
func (h *AnalyzeHandler) HandlePreliminary(c *fiber.Ctx) error {
	return h.batch(c, services.TemplateAnalysisPreliminary, false)
}

// HandleFull handles POST /api/analyze-full
func (h *AnalyzeHandler) HandleFull(c *fiber.Ctx) error {
	return h.batch(c, services.TemplateAnalysisFull, true)
}

func (h *AnalyzeHandler) batch(c *fiber.Ctx, templateName string, withResume bool) error {
	in, err := h.form.Assessment(c, withResume)
	if err != nil {
		return err
	}

	outcome, err := h.advisor.Analyze(c.UserContext(), templateName, in)
	if err != nil {
		var upstream *services.UpstreamError
		switch {
		case errors.As(err, &upstream):
			return c.Status(fiber.StatusBadGateway).JSON(models.UpstreamFailure{
				Error:      "AI服务API请求失败",
				StatusCode: upstream.StatusCode,
				Details:    fmt.Sprintf("API请求失败: %d. 响应: %s", upstream.StatusCode, upstream.Body),
			})
		case errors.Is(err, services.ErrUnexpectedResponse):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "AI响应结构意外",
				"details": err.Error(),
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "处理AI响应时发生未知错误",
				"details": err.Error(),
			})
		}
	}

	if outcome.ParseFailure != nil {
		return c.JSON(outcome.ParseFailure)
	}
	return c.JSON(outcome.Result)
}

// HandleAnalyze handles POST /api/analyze, the schema-checked analysis.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	in, err := h.form.Assessment(c, true)
	if err != nil {
		return err
	}

	result, err := h.advisor.AnalyzeLegacy(c.UserContext(), in)
	if err == nil {
		return c.JSON(result)
	}

	var (
		upstream *services.UpstreamError
		format   *services.OutputFormatError
	)
	switch {
	case errors.As(err, &upstream):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  fmt.Sprintf("API调用失败: %d", upstream.StatusCode),
			"detail": upstream.Body,
		})
	case errors.Is(err, services.ErrUnexpectedResponse):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "API返回无效响应",
			"detail": err.Error(),
		})
	case errors.As(err, &format):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":             format.Title,
			"short_description": format.Detail,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":             "调用AI分析失败",
			"short_description": err.Error(),
		})
	}
}

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/services"
)

type CareerHandler struct {
	advisor services.CareerAdvisorService
	form    *FormReader
	log     *logger.Logger
}

func NewCareerHandler(
	advisor services.CareerAdvisorService,
	form *FormReader,
	log *logger.Logger,
) *CareerHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CareerHandler{
		advisor: advisor,
		form:    form,
		log:     log,
	}
}

// HandleCareerDetails handles POST /api/career-details
func (h *CareerHandler) HandleCareerDetails(c *fiber.Ctx) error {
	req, err := h.form.Career(c)
	if err != nil {
		return err
	}

	details, err := h.advisor.CareerDetails(c.UserContext(), req)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("API调用失败: %d", upstream.StatusCode),
			})
		}
		h.log.Error("career details returned no usable response", "career", req.CareerName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "API返回无效响应",
		})
	}

	return c.JSON(details)
}

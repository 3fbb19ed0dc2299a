package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-planner/internal/models"
	"alfredoptarigan/career-planner/internal/services"
)

type HealthHandler struct {
	chat services.ChatCompletionService
}

func NewHealthHandler(chat services.ChatCompletionService) *HealthHandler {
	return &HealthHandler{chat: chat}
}

// HandleHealth handles GET /api/health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:   "healthy",
		Provider: h.chat.Provider(),
		Model:    h.chat.Model(),
	})
}

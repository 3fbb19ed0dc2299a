package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Analyze *AnalyzeHandler
	Career  *CareerHandler
	Stream  *StreamHandler
	Health  *HealthHandler
}

// RegisterRoutes mounts the API and then the static page. staticDir may be empty
// to skip static serving.
func RegisterRoutes(app *fiber.App, h Handlers, staticDir, staticIndex string) {
	api := app.Group("/api")

	api.Get("/health", h.Health.HandleHealth)

	api.Post("/analyze", h.Analyze.HandleAnalyze)
	api.Post("/analyze-preliminary", h.Analyze.HandlePreliminary)
	api.Post("/analyze-full", h.Analyze.HandleFull)
	api.Post("/analyze/stream", h.Stream.HandleAnalysisStream)

	api.Post("/career-details", h.Career.HandleCareerDetails)
	api.Post("/career-details/stream", h.Stream.HandleCareerStream)

	if staticDir == "" {
		return
	}
	app.Static("/", staticDir, fiber.Static{
		Index: staticIndex,
		// dotfiles such as .env live next to the page
		Next: func(c *fiber.Ctx) bool {
			return hasHiddenSegment(c.Path())
		},
	})
}

func hasHiddenSegment(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

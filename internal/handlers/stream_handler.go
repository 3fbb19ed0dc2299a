package handlers

import (
	"bufio"
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
	"alfredoptarigan/career-planner/internal/services"
)

type StreamHandler struct {
	advisor services.CareerAdvisorService
	form    *FormReader
	log     *logger.Logger
}

func NewStreamHandler(
	advisor services.CareerAdvisorService,
	form *FormReader,
	log *logger.Logger,
) *StreamHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StreamHandler{
		advisor: advisor,
		form:    form,
		log:     log,
	}
}

// HandleAnalysisStream handles POST /api/analyze/stream
func (h *StreamHandler) HandleAnalysisStream(c *fiber.Ctx) error {
	in, err := h.form.Assessment(c, true)
	if err != nil {
		return err
	}

	return h.relay(c, "analysis", func(ctx context.Context, emit func(models.StreamEvent) error) error {
		return h.advisor.StreamAnalysis(ctx, in, emit)
	})
}

// HandleCareerStream handles POST /api/career-details/stream
func (h *StreamHandler) HandleCareerStream(c *fiber.Ctx) error {
	req, err := h.form.Career(c)
	if err != nil {
		return err
	}

	return h.relay(c, "career", func(ctx context.Context, emit func(models.StreamEvent) error) error {
		return h.advisor.StreamCareerDetails(ctx, req, emit)
	})
}

// relay runs after the handler has returned, so it must not touch c. The
// request context is gone by then; the upstream call is not cancelled when the
// client disconnects, it just stops being written.
func (h *StreamHandler) relay(c *fiber.Ctx, kind string, run func(context.Context, func(models.StreamEvent) error) error) error {
	c.Set(fiber.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.With("stream", kind)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		emit := func(ev models.StreamEvent) error {
			frame, err := ev.Frame()
			if err != nil {
				return err
			}
			if _, err := w.Write(frame); err != nil {
				return err
			}
			return w.Flush()
		}

		if err := run(context.Background(), emit); err != nil {
			log.Warn("stream relay ended early", "error", err)
		}
	}))

	return nil
}

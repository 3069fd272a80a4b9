// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tenderdesk/parser/internal/service"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

const extractTimeout = 3 * time.Minute

type ParseResponse struct {
	Success  bool                     `json:"success"`
	Platform models.Platform          `json:"platform,omitempty"`
	Data     *models.ExtractionRecord `json:"data"`
}

type Handler struct {
	extractor *service.Extractor
}

func NewHandler(extractor *service.Extractor) *Handler {
	return &Handler{extractor: extractor}
}

func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/api/parse-tender-data", h.handleParse)
	app.Get("/health", handleHealth)
}

func handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) handleParse(c *fiber.Ctx) error {
	log := logger.Log

	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url must be absolute http(s)"})
	}

	log.Info().Str("url", rawURL).Msg("parse request received")

	ctx, cancel := context.WithTimeout(c.Context(), extractTimeout)
	defer cancel()

	start := time.Now()
	platform, record := h.extractor.ExtractTenderData(ctx, rawURL)

	log.Info().
		Str("url", rawURL).
		Str("platform", string(platform)).
		Int64("time_ms", time.Since(start).Milliseconds()).
		Msg("parse completed")

	// A page we could not extract anything from is still a successful
	// response with empty data.
	return c.JSON(ParseResponse{
		Success:  true,
		Platform: platform,
		Data:     record,
	})
}

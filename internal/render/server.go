package render

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tenderdesk/parser/internal/browser"
	"github.com/tenderdesk/parser/pkg/logger"
)

// SetupRoutes mounts the rendering endpoints on the daemon's app.
func SetupRoutes(app *fiber.App) {
	app.Post("/api/parsing/parse", handleParse)
	app.Get("/health", handleHealth)
}

func handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"browser": browser.IsInitialized(),
	})
}

func handleParse(c *fiber.Ctx) error {
	log := logger.Log

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}

	log.Info().
		Str("url", req.URL).
		Str("wait_for_selector", req.WaitForSelector).
		Bool("stealth", req.UseStealth).
		Msg("render request received")

	timeout := time.Duration(req.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	ctx, cancel := context.WithTimeout(c.Context(), timeout)
	defer cancel()

	start := time.Now()
	result, err := browser.Get().RenderPage(ctx, req.URL, browser.RenderOptions{
		WaitForSelector: req.WaitForSelector,
		UseStealth:      req.UseStealth,
		Timeout:         timeout,
	})
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("render failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"url":   req.URL,
		})
	}

	log.Info().
		Str("url", req.URL).
		Int("status", result.StatusCode).
		Int("html_len", len(result.HTML)).
		Bool("blocked", result.Blocked).
		Int64("time_ms", elapsed.Milliseconds()).
		Msg("render completed")

	return c.JSON(Response{
		Content:    result.HTML,
		StatusCode: result.StatusCode,
	})
}

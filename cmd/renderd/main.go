package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/tenderdesk/parser/internal/browser"
	"github.com/tenderdesk/parser/internal/config"
	"github.com/tenderdesk/parser/internal/render"
	"github.com/tenderdesk/parser/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.IsDev())
	log := logger.Log

	if err := browser.Init(context.Background(), cfg.PageLoadDelay, cfg.MaxBrowserTabs, cfg.TabsPerSecond); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize browser")
	}
	defer browser.Close()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Rendered pages can be large.
		BodyLimit: 32 * 1024 * 1024,
	})
	render.SetupRoutes(app)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
		browser.Close()
	}()

	addr := ":" + cfg.RenderdPort
	log.Info().
		Str("addr", addr).
		Int("max_tabs", cfg.MaxBrowserTabs).
		Msg("render daemon started")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("HTTP server error")
	}
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/tenderdesk/parser/internal/api"
	"github.com/tenderdesk/parser/internal/config"
	"github.com/tenderdesk/parser/internal/connector"
	"github.com/tenderdesk/parser/internal/enrich"
	"github.com/tenderdesk/parser/internal/fetch"
	"github.com/tenderdesk/parser/internal/render"
	"github.com/tenderdesk/parser/internal/resolver"
	"github.com/tenderdesk/parser/internal/service"
	"github.com/tenderdesk/parser/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.IsDev())
	log := logger.Log

	renderClient := render.New(cfg.RenderURL, cfg.RenderTimeout)
	fetcher := fetch.New(renderClient)
	res := resolver.New(fetcher)
	registry := connector.NewRegistry(fetcher, res, cfg.Credentials)
	enricher := enrich.New(enrich.NewDaData(cfg.DaDataToken))
	extractor := service.NewExtractor(registry, enricher)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             10 * 1024 * 1024,
	})
	api.NewHandler(extractor).SetupRoutes(app)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	addr := ":" + cfg.HTTPPort
	log.Info().
		Str("addr", addr).
		Str("render_url", cfg.RenderURL).
		Bool("dadata", cfg.DaDataToken != "").
		Msg("parser started")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("HTTP server error")
	}
}

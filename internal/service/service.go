// Package service ties connector selection and post-extraction
// enrichment into the single operation the API exposes.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tenderdesk/parser/internal/connector"
	"github.com/tenderdesk/parser/internal/enrich"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

// Extractor runs the full pipeline for one tender URL.
type Extractor struct {
	registry *connector.Registry
	enricher *enrich.Enricher
	log      zerolog.Logger
}

func NewExtractor(registry *connector.Registry, enricher *enrich.Enricher) *Extractor {
	return &Extractor{
		registry: registry,
		enricher: enricher,
		log:      logger.For("service"),
	}
}

// ExtractTenderData parses the page behind tenderURL and enriches the
// result. The record is never nil; unparseable pages come back as an
// empty record with the detected platform.
func (e *Extractor) ExtractTenderData(ctx context.Context, tenderURL string) (models.Platform, *models.ExtractionRecord) {
	conn := e.registry.Select(tenderURL)
	platform := conn.Platform()

	e.log.Info().
		Str("url", tenderURL).
		Str("platform", string(platform)).
		Msg("extracting tender data")

	record := conn.Parse(ctx, tenderURL)
	if record == nil {
		record = &models.ExtractionRecord{}
	}
	e.enricher.Apply(ctx, record)

	e.log.Info().
		Str("url", tenderURL).
		Str("tender_number", record.TenderNumber).
		Int("items", len(record.Items)).
		Bool("has_inn", record.RecipientINN != "").
		Msg("extraction finished")

	return platform, record
}

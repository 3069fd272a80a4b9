package connector

import (
	"context"
	"regexp"

	"github.com/tenderdesk/parser/internal/fetch"
	"github.com/tenderdesk/parser/internal/items"
	"github.com/tenderdesk/parser/internal/resolver"
	"github.com/tenderdesk/parser/pkg/dom"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

var genericTenderNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{6,})`),
}

var genericINNPattern = regexp.MustCompile(`ИНН[:\s]*(\d{10}|\d{12})`)

// GenericConnector is the best-effort strategy for platforms without a
// specialized connector. No page variants, no platform row classes:
// items come from the header-scan table heuristic only.
type GenericConnector struct {
	platform models.Platform
	fetcher  *fetch.Fetcher
	resolver *resolver.Resolver
}

func (c *GenericConnector) Platform() models.Platform {
	return c.platform
}

func (c *GenericConnector) Parse(ctx context.Context, tenderURL string) *models.ExtractionRecord {
	log := logger.For("generic")
	record := &models.ExtractionRecord{}

	result := c.fetcher.Fetch(ctx, tenderURL, "")
	if result == nil || result.HTML == "" {
		return record
	}

	record.TenderNumber = tenderNumberFrom(tenderURL, genericTenderNumberPatterns)

	doc := dom.Parse(result.HTML)
	if doc == nil {
		return record
	}

	record.SetItems(items.FromHeaderTables(doc))
	log.Debug().Int("items", len(record.Items)).Str("url", tenderURL).Msg("items extracted")

	org := c.resolver.Resolve(ctx, doc, tenderURL)
	record.Recipient = org.Name
	record.RecipientINN = org.INN

	// Last resort: an INN anywhere in the raw page.
	if record.RecipientINN == "" {
		if m := genericINNPattern.FindStringSubmatch(result.HTML); m != nil {
			record.RecipientINN = m[1]
		}
	}

	return record
}

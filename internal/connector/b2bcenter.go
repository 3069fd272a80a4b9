package connector

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tenderdesk/parser/internal/config"
	"github.com/tenderdesk/parser/internal/fetch"
	"github.com/tenderdesk/parser/internal/items"
	"github.com/tenderdesk/parser/internal/resolver"
	"github.com/tenderdesk/parser/pkg/dom"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

// Tender-number patterns for B2B-Center URLs, first match wins:
// /tender-4242870/ or ?id=4250788.
var b2bTenderNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tender-(\d+)`),
	regexp.MustCompile(`(?i)id=(\d+)`),
}

// Selector the rendering service waits for: the organizer card loads
// late on JS-heavy tender pages.
const b2bWaitSelector = ".organizer-information, .customer-information, a[href*=\"/firms/\"], .tender-description"

// B2BCenterConnector knows the b2b-center.ru page structure: the
// positions page variant, the class-c2 item rows and their column
// layout.
type B2BCenterConnector struct {
	fetcher     *fetch.Fetcher
	resolver    *resolver.Resolver
	credentials config.Credentials
}

func (c *B2BCenterConnector) Platform() models.Platform {
	return models.PlatformB2BCenter
}

func (c *B2BCenterConnector) Parse(ctx context.Context, tenderURL string) *models.ExtractionRecord {
	log := logger.For("b2b-center")
	record := &models.ExtractionRecord{}

	// The positions view carries the item table, so it is requested
	// first.
	positionsURL := withPositionsAction(tenderURL)

	result := c.fetcher.Fetch(ctx, positionsURL, b2bWaitSelector)
	if result == nil || result.HTML == "" {
		return record
	}

	record.TenderNumber = tenderNumberFrom(tenderURL, b2bTenderNumberPatterns)

	doc := dom.Parse(result.HTML)
	if doc == nil {
		return record
	}

	record.SetItems(c.extractItems(doc))
	log.Debug().Int("items", len(record.Items)).Str("url", positionsURL).Msg("items extracted")

	org := c.resolver.Resolve(ctx, doc, positionsURL)

	// The positions view often omits the organizer card; retry once
	// against the page's default variant.
	mainURL := withoutPositionsAction(positionsURL)
	if org.Name == "" && mainURL != positionsURL {
		log.Debug().Str("url", mainURL).Msg("organizer not found on positions page, fetching main page")
		mainResult := c.fetcher.Fetch(ctx, mainURL, b2bWaitSelector)
		if mainResult != nil && mainResult.HTML != "" {
			if mainDoc := dom.Parse(mainResult.HTML); mainDoc != nil {
				org = c.resolver.Resolve(ctx, mainDoc, mainURL)
				extractDelivery(mainDoc, record)
			}
		}
	} else {
		extractDelivery(doc, record)
	}

	record.Recipient = org.Name
	record.RecipientINN = org.INN
	if org.INN != "" {
		log.Info().Str("inn", org.INN).Str("name", org.Name).Msg("organizer resolved")
	}

	return record
}

// extractItems tries the platform row class first, then any table row
// with more than one cell.
func (c *B2BCenterConnector) extractItems(doc *dom.Document) []models.ProcurementItem {
	cols := items.Columns{Name: 3, NameFallback: 1, Quantity: 4}

	rows := doc.Find(`tr[class*="c2"]`)
	if found := items.FromRows(rows, cols); len(found) > 0 {
		return found
	}

	multiCell := doc.Find("table tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Find("td").Length() > 1
	})
	return items.FromRows(multiCell, cols)
}

// extractDelivery pulls the delivery address and conditions from the
// tender description table (td.fname label cells).
func extractDelivery(doc *dom.Document, record *models.ExtractionRecord) {
	doc.Find("td.fname").Each(func(_ int, cell *goquery.Selection) {
		label := dom.CleanText(cell.Text())
		value := dom.CleanText(cell.Next().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "Адрес места поставки"):
			if record.DeliveryAddress == "" {
				record.DeliveryAddress = value
			}
		case strings.Contains(label, "Условия поставки"):
			if record.DeliveryConditions == "" {
				record.DeliveryConditions = value
			}
		}
	})
}

// withPositionsAction switches a tender URL to its items view.
func withPositionsAction(tenderURL string) string {
	if strings.Contains(tenderURL, "action=positions") {
		return tenderURL
	}
	clean := strings.TrimRight(tenderURL, "/")
	sep := "?"
	if strings.Contains(clean, "?") {
		sep = "&"
	}
	return clean + sep + "action=positions"
}

// withoutPositionsAction derives the default page variant back from the
// items view.
func withoutPositionsAction(positionsURL string) string {
	clean := strings.ReplaceAll(positionsURL, "?action=positions", "")
	return strings.ReplaceAll(clean, "&action=positions", "")
}

// tenderNumberFrom runs the ordered pattern list over the URL; the
// first match wins.
func tenderNumberFrom(tenderURL string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(tenderURL); m != nil {
			return m[1]
		}
	}
	return ""
}

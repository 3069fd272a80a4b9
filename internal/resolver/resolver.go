// Package resolver finds the buying organization on a tender page: its
// name, an optional company-profile link and an optional INN. Every stage
// is a cascade of heuristics tried in a fixed order; the first success
// wins and absence at every stage is a valid outcome, never an error.
package resolver

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/tenderdesk/parser/pkg/dom"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

// PageFetcher loads the firm-profile page when the tender page links to
// one. *fetch.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, url, waitForSelector string) *models.FetchResult
}

// Buyer-role labels, in the order they are tried. Russian platforms
// first, then the English labels international platforms use. The order
// is deliberate: an early weaker label shadows a later stronger one, and
// that behavior is kept as-is.
var buyerLabels = []string{
	"Организатор",
	"Заказчик",
	"Покупатель",
	"Продавец",
	"Organizer",
	"Customer",
	"Buyer",
	"Seller",
}

// Administrative-noise vocabulary. A candidate name containing any of
// these is status/date chrome, not an organization.
var noiseWords = []string{
	"Опубликована",
	"Завершена",
	"Архив",
	"Отменена",
	"Прием заявок",
	"Дата окончания",
	"Дата публикации",
	"Статус",
	"Published",
	"Completed",
	"Archived",
	"Cancelled",
	"Status",
}

// Path markers identifying a company-profile link.
var firmLinkMarkers = []string{
	"/firms/",
	"/company/",
	"/org/",
	"action=company",
	"action=view",
	"view_org",
	"/app/next/firms/",
}

// Text nodes longer than this are descriptive prose, not labels.
const maxLabelNodeLen = 100

type Resolver struct {
	fetcher PageFetcher
	log     zerolog.Logger
}

func New(fetcher PageFetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		log:     logger.For("resolver"),
	}
}

// Resolve runs the full cascade over a parsed tender page. pageURL is
// used to absolutize a relative firm link. A nil document resolves to an
// empty organizer.
func (r *Resolver) Resolve(ctx context.Context, doc *dom.Document, pageURL string) models.Organizer {
	if doc == nil {
		return models.Organizer{}
	}

	org := r.findNameAndLink(doc)
	if org.Name == "" && org.Link == "" {
		return org
	}

	if org.Name != "" {
		org.INN = r.findINNOnPage(doc, org.Name)
		if org.INN != "" {
			r.log.Debug().Str("inn", org.INN).Msg("INN found on tender page")
		}
	}

	if org.INN == "" && org.Link != "" {
		org.INN = r.findINNOnFirmPage(ctx, org.Link, pageURL)
	}

	return org
}

// findNameAndLink scans the label list. A firm-link match wins
// immediately; a plain-text match only fills the name and scanning
// continues, since a link is stronger evidence.
func (r *Resolver) findNameAndLink(doc *dom.Document) models.Organizer {
	var org models.Organizer

	for _, label := range buyerLabels {
		for _, textNode := range doc.TextNodesContaining(label) {
			if utf8.RuneCountInString(textNode.Data) > maxLabelNodeLen {
				continue
			}

			for _, candidate := range generateCandidates(textNode) {
				if name, href, ok := firmLinkIn(candidate); ok {
					org.Name = name
					org.Link = href
					r.log.Debug().Str("label", label).Str("name", name).Str("link", href).
						Msg("organizer found via firm link")
					return org
				}

				if org.Name == "" && org.Link == "" {
					if name, ok := plainTextName(candidate, label); ok {
						org.Name = name
						r.log.Debug().Str("label", label).Str("name", name).
							Msg("potential organizer text")
					}
				}
			}
		}
	}

	return org
}

// generateCandidates lists the nodes that may contain the organizer for
// one label occurrence, in the fixed order: parent's next element
// sibling, grandparent's next element sibling, the parent itself.
func generateCandidates(textNode *html.Node) []*html.Node {
	parent := textNode.Parent
	if parent == nil {
		return nil
	}

	var candidates []*html.Node
	if next := dom.NextElementSibling(parent); next != nil {
		candidates = append(candidates, next)
	}
	if parent.Parent != nil {
		if next := dom.NextElementSibling(parent.Parent); next != nil {
			candidates = append(candidates, next)
		}
	}
	candidates = append(candidates, parent)
	return candidates
}

// firmLinkIn searches candidate for an anchor whose href matches a
// firm-link marker and whose visible text (or title attribute, when the
// anchor wraps only markup) passes name validation.
func firmLinkIn(candidate *html.Node) (name, href string, ok bool) {
	for _, a := range dom.Anchors(candidate) {
		ref := dom.Attr(a, "href")
		if !IsFirmLink(ref) {
			continue
		}

		text := dom.CleanText(dom.TextContent(a))
		if text == "" {
			text = dom.Attr(a, "title")
		}

		if isValidName(text) {
			return text, ref, true
		}
	}
	return "", "", false
}

// plainTextName validates a candidate's own text as an organizer name,
// with the label substring and surrounding punctuation removed.
func plainTextName(candidate *html.Node, label string) (string, bool) {
	text := dom.CleanText(dom.TextContent(candidate))
	text = strings.ReplaceAll(text, label, "")
	text = strings.Trim(text, " :-\t\n\r\x00\x0B")

	if !isValidName(text) {
		return "", false
	}
	if utf8.RuneCountInString(text) >= 200 {
		return "", false
	}
	return text, true
}

func isValidName(name string) bool {
	if utf8.RuneCountInString(name) <= 2 {
		return false
	}
	lower := strings.ToLower(name)
	for _, noise := range noiseWords {
		if strings.Contains(lower, strings.ToLower(noise)) {
			return false
		}
	}
	return true
}

// IsFirmLink reports whether href points at a company profile.
func IsFirmLink(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	for _, marker := range firmLinkMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

package resolver

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/tenderdesk/parser/pkg/dom"
)

var (
	innRun      = regexp.MustCompile(`(\d{10}|\d{12})`)
	innAnchored = regexp.MustCompile(`(?:ИНН|INN)[:\s]*(\d{10}|\d{12})`)
	innJSON     = regexp.MustCompile(`(?i)"inn"\s*:\s*"?(\d{10}|\d{12})"?`)
	nonDigit    = regexp.MustCompile(`\D`)
	scriptBody  = regexp.MustCompile(`(?s)<script[^>]*>(.*?)</script>`)
	nextData    = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)
)

// The tax-id label as it appears on Russian platforms and in latinized
// markup.
var innLabels = []string{"ИНН", "INN"}

// Fallback base for relative firm links when the tender page URL itself
// cannot be parsed.
const defaultFirmBase = "https://www.b2b-center.ru"

// onPageStrategy looks for the INN on the tender page itself.
type onPageStrategy func(doc *dom.Document, orgName string) string

// firmPageStrategy looks for the INN on a fetched firm-profile page.
type firmPageStrategy func(doc *dom.Document, rawHTML string) string

// findINNOnPage tries the on-page patterns in order; the first one
// yielding a 10- or 12-digit run wins.
func (r *Resolver) findINNOnPage(doc *dom.Document, orgName string) string {
	strategies := []onPageStrategy{
		innNearNameInOrganizerBlock,
		innAfterLabelTextSibling,
		innAfterLabelElementSibling,
	}
	for _, try := range strategies {
		if inn := try(doc, orgName); inn != "" {
			return inn
		}
	}
	return ""
}

// Pattern (a): a text node containing the resolved name, inside an
// ancestor whose class marks the organizer/customer block, with a
// descendant text node mentioning ИНН.
func innNearNameInOrganizerBlock(doc *dom.Document, orgName string) string {
	for _, node := range doc.TextNodesContaining(orgName) {
		block := dom.AncestorWithClass(node, "organizer", "customer")
		if block == nil {
			continue
		}
		var inn string
		dom.Walk(block, func(n *html.Node) {
			if inn != "" || n.Type != html.TextNode || !containsINNLabel(n.Data) {
				return
			}
			if m := innRun.FindString(dom.CleanText(n.Data)); m != "" {
				inn = m
			}
		})
		if inn != "" {
			return inn
		}
	}
	return ""
}

// Pattern (b): a text node containing ИНН followed immediately by a
// sibling text node holding the digits.
func innAfterLabelTextSibling(doc *dom.Document, _ string) string {
	for _, label := range innLabels {
		for _, node := range doc.TextNodesContaining(label) {
			sibling := dom.NextTextSibling(node)
			if sibling == nil {
				continue
			}
			if m := innRun.FindString(dom.CleanText(sibling.Data)); m != "" {
				return m
			}
		}
	}
	return ""
}

// Pattern (c): any element containing ИНН followed by its next element
// sibling.
func innAfterLabelElementSibling(doc *dom.Document, _ string) string {
	for _, el := range innLabelElements(doc) {
		next := dom.NextElementSibling(el)
		if next == nil {
			continue
		}
		if m := innRun.FindString(dom.CleanText(dom.TextContent(next))); m != "" {
			return m
		}
	}
	return ""
}

// findINNOnFirmPage fetches the company profile and runs the off-page
// cascade over it. Absence of every pattern is not an error.
func (r *Resolver) findINNOnFirmPage(ctx context.Context, link, pageURL string) string {
	firmURL := absolutizeFirmLink(link, pageURL)
	r.log.Debug().Str("url", firmURL).Msg("loading firm page")

	result := r.fetcher.Fetch(ctx, firmURL, "")
	if result == nil || result.HTML == "" {
		return ""
	}
	r.log.Debug().Int("size", len(result.HTML)).Msg("firm page loaded")

	doc := dom.Parse(result.HTML)

	strategies := []firmPageStrategy{
		innFromTableCell,
		innFromSiblingElement,
		innFromSameElement,
		innFromDataIsland,
		innFromScripts,
		innFromGlobalRegex,
	}
	for _, try := range strategies {
		if inn := try(doc, result.HTML); inn != "" {
			return inn
		}
	}
	return ""
}

// Table lookup: an element mentioning ИНН whose next element sibling is
// a table cell holding the digits.
func innFromTableCell(doc *dom.Document, _ string) string {
	if doc == nil {
		return ""
	}
	for _, el := range innLabelElements(doc) {
		next := dom.NextElementSibling(el)
		if next == nil || next.Data != "td" {
			continue
		}
		digits := nonDigit.ReplaceAllString(dom.TextContent(next), "")
		if len(digits) == 10 || len(digits) == 12 {
			return digits
		}
	}
	return ""
}

func innFromSiblingElement(doc *dom.Document, _ string) string {
	if doc == nil {
		return ""
	}
	for _, el := range innLabelElements(doc) {
		next := dom.NextElementSibling(el)
		if next == nil {
			continue
		}
		if m := innRun.FindString(dom.CleanText(dom.TextContent(next))); m != "" {
			return m
		}
	}
	return ""
}

func innFromSameElement(doc *dom.Document, _ string) string {
	if doc == nil {
		return ""
	}
	for _, el := range innLabelElements(doc) {
		text := dom.CleanText(dom.TextContent(el))
		if m := innAnchored.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// innLabelElements returns elements whose own text mentions the tax-id
// label, in document order, without duplicates across label spellings.
func innLabelElements(doc *dom.Document) []*html.Node {
	var out []*html.Node
	seen := make(map[*html.Node]bool)
	for _, label := range innLabels {
		for _, el := range doc.ElementsWithOwnText(label) {
			if !seen[el] {
				seen[el] = true
				out = append(out, el)
			}
		}
	}
	return out
}

func containsINNLabel(s string) bool {
	for _, label := range innLabels {
		if strings.Contains(s, label) {
			return true
		}
	}
	return false
}

// Structured-data search: a JSON island embedded by the platform's
// frontend, searched for an "inn" key at any depth.
func innFromDataIsland(_ *dom.Document, rawHTML string) string {
	m := nextData.FindStringSubmatch(rawHTML)
	if m == nil {
		return ""
	}
	return searchJSONForINN(m[1])
}

// Script scan: any inline script carrying an "inn" property, for pages
// where the island's id differs or the data lives in another JS object.
func innFromScripts(_ *dom.Document, rawHTML string) string {
	for _, m := range scriptBody.FindAllStringSubmatch(rawHTML, -1) {
		if sub := innJSON.FindStringSubmatch(m[1]); sub != nil {
			return sub[1]
		}
	}
	return ""
}

func innFromGlobalRegex(_ *dom.Document, rawHTML string) string {
	if m := innJSON.FindStringSubmatch(rawHTML); m != nil {
		return m[1]
	}
	return ""
}

func absolutizeFirmLink(link, pageURL string) string {
	if strings.HasPrefix(link, "http") {
		return link
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return defaultFirmBase + link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return defaultFirmBase + link
	}
	return base.ResolveReference(ref).String()
}

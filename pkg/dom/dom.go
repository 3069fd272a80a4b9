// Package dom wraps goquery/x-net-html into the small set of tree queries
// the tender heuristics need: tolerant parsing, text-node search, sibling
// walks and scoped sub-queries. Malformed markup never fails the parse;
// only empty input yields a nil document.
package dom

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse builds a document from raw HTML. Returns nil for empty input or
// the rare case the tolerant parser gives up entirely. Parse warnings are
// discarded.
func Parse(rawHTML string) *Document {
	if strings.TrimSpace(rawHTML) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	return &Document{doc: doc}
}

// Find runs a CSS selector query over the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Root returns the document root node.
func (d *Document) Root() *html.Node {
	nodes := d.doc.Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Selection wraps raw nodes back into a goquery selection scoped to this
// document, for CSS sub-queries rooted at a candidate node.
func (d *Document) Selection(nodes ...*html.Node) *goquery.Selection {
	return d.doc.FindNodes(nodes...)
}

// TextNodesContaining returns every text node whose content contains
// substr (case-sensitive), in document order.
func (d *Document) TextNodesContaining(substr string) []*html.Node {
	root := d.Root()
	if root == nil {
		return nil
	}
	var out []*html.Node
	Walk(root, func(n *html.Node) {
		if n.Type == html.TextNode && strings.Contains(n.Data, substr) {
			out = append(out, n)
		}
	})
	return out
}

// ElementsWithOwnText returns elements that have a direct text child
// containing substr. This mirrors an XPath contains(text(), ...) check:
// descendant text does not count.
func (d *Document) ElementsWithOwnText(substr string) []*html.Node {
	root := d.Root()
	if root == nil {
		return nil
	}
	var out []*html.Node
	Walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.Contains(c.Data, substr) {
				out = append(out, n)
				return
			}
		}
	})
	return out
}

// Walk visits n and all its descendants in document order.
func Walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// NextElementSibling returns the next sibling that is an element,
// skipping text and comment nodes.
func NextElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for next := n.NextSibling; next != nil; next = next.NextSibling {
		if next.Type == html.ElementNode {
			return next
		}
	}
	return nil
}

// NextTextSibling returns the immediately following text sibling, if the
// very next sibling node is text.
func NextTextSibling(n *html.Node) *html.Node {
	if n == nil || n.NextSibling == nil {
		return nil
	}
	if n.NextSibling.Type == html.TextNode {
		return n.NextSibling
	}
	return nil
}

// AncestorWithClass walks up from n and returns the first ancestor whose
// class attribute contains any of the given substrings.
func AncestorWithClass(n *html.Node, substrs ...string) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		class := Attr(p, "class")
		for _, s := range substrs {
			if strings.Contains(class, s) {
				return p
			}
		}
	}
	return nil
}

// Anchors returns all descendant <a> elements of n, including n itself.
func Anchors(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == "a" {
			out = append(out, c)
		}
	})
	return out
}

// Elements returns all descendant elements of n with the given tag name,
// including n itself.
func Elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	})
	return out
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	Walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Package items extracts procurement line items (name + quantity) from
// whatever table layout a connector locates. Rows that fail validation
// are dropped, never stored empty.
package items

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tenderdesk/parser/pkg/dom"
	"github.com/tenderdesk/parser/pkg/models"
)

var quantityJunk = regexp.MustCompile(`[^\d.,]`)

// Column positions for a platform with a known fixed layout. The name
// column falls back to an earlier column when the preferred one is empty.
type Columns struct {
	Name         int
	NameFallback int
	Quantity     int
}

// FromRows parses fixed-layout rows into items. Each row must have
// enough cells to reach the quantity column.
func FromRows(rows *goquery.Selection, cols Columns) []models.ProcurementItem {
	var out []models.ProcurementItem

	rows.Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, dom.CleanText(cell.Text()))
		})

		if len(cells) <= cols.Quantity {
			return
		}

		name := cells[cols.Name]
		if name == "" && cols.NameFallback >= 0 && cols.NameFallback < len(cells) {
			name = cells[cols.NameFallback]
		}

		qty := CleanQuantity(cells[cols.Quantity])
		if name != "" && qty > 0 {
			out = append(out, models.ProcurementItem{Name: name, Quantity: qty})
		}
	})

	return out
}

// FromHeaderTables is the generic heuristic: scan every table for a
// header row naming the description and quantity columns, then parse the
// rows below it. The first table that yields any valid item wins.
func FromHeaderTables(doc *dom.Document) []models.ProcurementItem {
	if doc == nil {
		return nil
	}

	var out []models.ProcurementItem

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")

		// A header whose data rows all fail validation does not finish
		// the table: later rows may carry another header.
		for after := -1; ; {
			nameIdx, qtyIdx, headerRow := findHeader(rows, after)
			if nameIdx < 0 || qtyIdx < 0 {
				return true
			}

			rows.Each(func(i int, row *goquery.Selection) {
				if i <= headerRow {
					return
				}
				var cells []string
				row.Find("td").Each(func(_ int, cell *goquery.Selection) {
					cells = append(cells, dom.CleanText(cell.Text()))
				})
				if len(cells) <= nameIdx || len(cells) <= qtyIdx {
					return
				}
				name := cells[nameIdx]
				qty := CleanQuantity(cells[qtyIdx])
				if name != "" && qty > 0 {
					out = append(out, models.ProcurementItem{Name: name, Quantity: qty})
				}
			})

			// Stop at the first header with results.
			if len(out) > 0 {
				return false
			}
			after = headerRow
		}
	})

	return out
}

// findHeader locates the first header row past index `after` and the
// description/quantity column indices. "Наименование позиции" is
// preferred for the description; plain "наименование"/"название" is the
// fallback.
func findHeader(rows *goquery.Selection, after int) (nameIdx, qtyIdx, headerRow int) {
	nameIdx, qtyIdx, headerRow = -1, -1, -1

	rows.EachWithBreak(func(rowIdx int, row *goquery.Selection) bool {
		if rowIdx <= after {
			return true
		}
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.ToLower(dom.CleanText(cell.Text())))
		})

		plainName := -1
		for i, txt := range cells {
			if strings.Contains(txt, "наименование позиции") {
				nameIdx = i
			}
			if strings.Contains(txt, "наименование") || strings.Contains(txt, "название") {
				if plainName < 0 {
					plainName = i
				}
			}
			if strings.Contains(txt, "количество") || strings.Contains(txt, "кол-во") || strings.Contains(txt, "кол во") {
				qtyIdx = i
			}
		}
		if nameIdx < 0 {
			nameIdx = plainName
		}

		if nameIdx >= 0 && qtyIdx >= 0 {
			headerRow = rowIdx
			return false
		}
		nameIdx, qtyIdx = -1, -1
		return true
	})

	return nameIdx, qtyIdx, headerRow
}

// CleanQuantity strips everything but digits, comma and dot, treats the
// comma as a decimal separator and parses the result. Returns 0 when
// nothing numeric survives.
func CleanQuantity(raw string) float64 {
	cleaned := quantityJunk.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0
	}
	qty, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return qty
}

package fetch

import "strings"

// A real tender page is rarely under 20KB.
const minPlausibleSize = 20000

// Above this size the keyword check applies; smaller bodies are already
// suspicious on size alone.
const keywordCheckSize = 5000

// Words expected somewhere on a valid tender page. Generic table markup
// tokens cover pages whose labels we do not know.
var expectedKeywords = []string{
	"Организатор",
	"Заказчик",
	"Покупатель",
	"Продавец",
	"Organizer",
	"Customer",
	"tender_description",
	"table",
	"tr",
	"td",
}

// IsSuspicious reports whether a direct-fetch body looks like a stub,
// block page or unrendered shell rather than a real tender page.
func IsSuspicious(html string) bool {
	if len(html) < minPlausibleSize {
		return true
	}

	if len(html) > keywordCheckSize {
		lower := strings.ToLower(html)
		for _, kw := range expectedKeywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return false
			}
		}
		return true
	}

	return false
}

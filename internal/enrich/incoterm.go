// Package enrich post-processes an extraction record: incoterm
// classification of the delivery conditions text and company-name
// disambiguation against the DaData suggestion service.
package enrich

import (
	"regexp"
	"strings"
)

// Mapping from international incoterm designations to the delivery codes
// used by the proposal form.
var incotermCodes = map[string]string{
	"DDP": "С ОПЛАТОЙ ДОСТАВКИ И СТРАХОВАНИЯ",
	"DAP": "ДО АДРЕСА ПОКУПАТЕЛЯ БЕЗ РАЗГРУЗКИ",
	"FCA": "ФРАНКО-СКЛАД ПРОДАВЦА",
	"EXW": "САМОВЫВОЗ",
	"CPT": "ФРАНКО-ТЕРМИНАЛ ТК",
}

type incotermRule struct {
	incoterm string
	patterns []*regexp.Regexp
	reason   string
}

// The rules run over lowercased text, in order; the first matching
// pattern wins.
var incotermRules = []incotermRule{
	{
		incoterm: "DDP",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)DDP`),
			regexp.MustCompile(`включая\s+все\s+налоги`),
			regexp.MustCompile(`с\s+уплатой\s+всех\s+пошлин`),
			regexp.MustCompile(`с\s+растаможк`),
		},
		reason: "Указано условие DDP",
	},
	{
		incoterm: "DAP",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`поставка\s+на\s+место\s+назначения`),
			regexp.MustCompile(`доставка\s+должна\s+быть\s+включена`),
			regexp.MustCompile(`доставка\s+до\s+.*заказчика`),
			regexp.MustCompile(`поставка\s+до\s+.*заказчика`),
		},
		reason: "Есть формулировка о доставке до места назначения покупателя (DAP)",
	},
	{
		incoterm: "FCA",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`франко[-\s]+склад\s+продавца`),
			regexp.MustCompile(`франко[-\s]+завод`),
			regexp.MustCompile(`франко[-\s]+.*поставщика`),
		},
		reason: "Указан франко-склад или франко-завод (FCA)",
	},
	{
		incoterm: "EXW",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`самовывоз`),
			regexp.MustCompile(`со\s+склада\s+(?:продавца|поставщика)`),
			regexp.MustCompile(`забор\s+со\s+склада`),
		},
		reason: "Указан самовывоз или отгрузка со склада продавца (EXW)",
	},
	{
		incoterm: "CPT",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`доставка\s+до\s+терминала`),
			regexp.MustCompile(`доставка\s+до\s+станции`),
		},
		reason: "Указана доставка до терминала или станции (CPT)",
	},
}

// DetectIncoterm classifies delivery-conditions text into a delivery
// code. Returns ok=false when no rule matches.
func DetectIncoterm(text string) (code, reason string, ok bool) {
	if text == "" {
		return "", "", false
	}
	lower := strings.ToLower(text)

	for _, rule := range incotermRules {
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				mapped, found := incotermCodes[rule.incoterm]
				if !found {
					mapped = rule.incoterm
				}
				return mapped, rule.reason, true
			}
		}
	}
	return "", "", false
}

package enrich

import "regexp"

var (
	regionRe = regexp.MustCompile(`(?i)([\p{L}\-]+(?:ая|ий|ой|ский|ская)\s+(?:область|край|республика)|г\.\s*\p{L}+|Москва|Санкт-Петербург)`)
	cityRe   = regexp.MustCompile(`(?i)г\.\s*(\p{L}+)`)
)

// RegionFromAddress pulls a region designation (oblast, krai, republic
// or a city marker) out of a free-form delivery address.
func RegionFromAddress(address string) string {
	m := regionRe.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return m[1]
}

// cityFromAddress pulls the city name after a "г." marker.
func cityFromAddress(address string) string {
	m := cityRe.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return m[1]
}

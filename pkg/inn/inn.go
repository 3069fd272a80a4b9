// Package inn validates Russian taxpayer numbers.
package inn

import "strings"

// Valid reports whether s is a well-formed 10- or 12-digit INN with a
// correct checksum. Spaces and dashes are ignored.
func Valid(s string) bool {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "-", "")
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	switch len(cleaned) {
	case 10:
		return valid10(cleaned)
	case 12:
		return valid12(cleaned)
	}
	return false
}

func checkDigit(inn string, coefficients []int) int {
	sum := 0
	for i, c := range coefficients {
		sum += int(inn[i]-'0') * c
	}
	d := sum % 11
	if d == 10 {
		d = 0
	}
	return d
}

func valid10(inn string) bool {
	return checkDigit(inn, []int{2, 4, 10, 3, 5, 9, 4, 6, 8}) == int(inn[9]-'0')
}

func valid12(inn string) bool {
	if checkDigit(inn, []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}) != int(inn[10]-'0') {
		return false
	}
	return checkDigit(inn, []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}) == int(inn[11]-'0')
}

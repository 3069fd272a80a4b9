package resolver

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var innValue = regexp.MustCompile(`^(\d{10}|\d{12})$`)

// searchJSONForINN decodes a JSON document and looks for a key named
// "inn" (case-insensitive) whose value is exactly 10 or 12 digits.
// Traversal is an explicit worklist with sorted map keys, so the result
// is deterministic and deep nesting cannot exhaust the stack.
func searchJSONForINN(raw string) string {
	var root any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return ""
	}

	worklist := []any{root}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]

		switch v := cur.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if strings.EqualFold(k, "inn") {
					if inn := digitString(v[k]); inn != "" {
						return inn
					}
				}
				worklist = append(worklist, v[k])
			}
		case []any:
			worklist = append(worklist, v...)
		}
	}
	return ""
}

func digitString(v any) string {
	switch t := v.(type) {
	case string:
		if innValue.MatchString(t) {
			return t
		}
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if innValue.MatchString(s) {
			return s
		}
	case json.Number:
		if innValue.MatchString(t.String()) {
			return t.String()
		}
	}
	return ""
}

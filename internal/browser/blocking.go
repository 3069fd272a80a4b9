package browser

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockResult says whether a rendered page is an anti-bot wall rather
// than real content.
type BlockResult struct {
	Blocked   bool
	IsCaptcha bool
	Reason    string
}

var ipInTitleRegex = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
var titleRegex = regexp.MustCompile(`(?i)<title[^>]*>([^<]*)</title>`)

// DetectBlocking checks if HTML indicates a blocked page or captcha.
// Priority order:
// 1. Captcha markup (captcha pages often come with a 403 status)
// 2. HTTP status code (403, 429, 503)
// 3. Exact blocking phrases
// 4. IP address in title
// 5. Error title in short HTML
// 6. noindex + empty title + short HTML
func DetectBlocking(html string, statusCode int) BlockResult {
	if IsCaptchaPage(html) {
		return BlockResult{Blocked: true, IsCaptcha: true, Reason: "captcha page"}
	}

	if statusCode == 403 || statusCode == 429 || statusCode == 503 {
		return BlockResult{Blocked: true, Reason: fmt.Sprintf("HTTP %d", statusCode)}
	}

	blockingPhrases := []string{
		"Sorry, your request has been denied",
		"Sorry, you have been blocked",
		"Attention Required! | Cloudflare",
		"Ваш IP заблокирован",
		"Your IP is blocked",
		"Your IP has been blocked",
		"ERR_NAME_NOT_RESOLVED",
		"ERR_CONNECTION_REFUSED",
		"ERR_CONNECTION_TIMED_OUT",
		"Access Denied",
		"403 Forbidden",
	}
	for _, phrase := range blockingPhrases {
		if containsIgnoreCase(html, phrase) {
			return BlockResult{Blocked: true, Reason: phrase}
		}
	}

	title := extractTitle(html)
	if ipInTitleRegex.MatchString(title) {
		return BlockResult{Blocked: true, Reason: "IP in title"}
	}

	if len(html) < 10000 {
		lowerTitle := strings.ToLower(strings.TrimSpace(title))
		if lowerTitle == "error" || lowerTitle == "ошибка" {
			return BlockResult{Blocked: true, Reason: "error title"}
		}
		if strings.Contains(lowerTitle, "не удается получить доступ") {
			return BlockResult{Blocked: true, Reason: "access denied title"}
		}
	}

	if len(html) < 3000 {
		if containsIgnoreCase(html, "noindex") && strings.TrimSpace(title) == "" {
			return BlockResult{Blocked: true, Reason: "noindex + empty title"}
		}
	}

	return BlockResult{Blocked: false}
}

// IsCaptchaPage detects interactive human-check pages.
func IsCaptchaPage(html string) bool {
	if len(html) == 0 {
		return false
	}

	hasButton := strings.Contains(html, "Я не робот") && strings.Contains(html, "onclick=")

	hasConfirmText := strings.Contains(html, "Подтвердите") &&
		(strings.Contains(html, "человек") || strings.Contains(html, "робот"))

	hasChallenge := (containsIgnoreCase(html, "antibot") || containsIgnoreCase(html, "checking your browser")) &&
		(strings.Contains(html, "Идёт загрузка") || containsIgnoreCase(html, "please wait"))

	return hasButton || hasConfirmText || hasChallenge
}

func extractTitle(html string) string {
	match := titleRegex.FindStringSubmatch(html)
	if len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return ""
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

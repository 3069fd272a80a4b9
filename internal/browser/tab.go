package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	cdpopts "github.com/tenderdesk/parser/pkg/chromedp"
	"github.com/tenderdesk/parser/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 YaBrowser/25.10.0.0 Safari/537.36"

const (
	defaultTabTimeout   = 60 * time.Second
	waitSelectorTimeout = 10 * time.Second
)

// RenderOptions control one page render.
type RenderOptions struct {
	// WaitForSelector, when set, delays HTML capture until the selector
	// appears. Best effort: a selector that never shows up does not fail
	// the render.
	WaitForSelector string
	UseStealth      bool
	Timeout         time.Duration
}

// RenderResult is the rendered page plus blocking diagnostics.
type RenderResult struct {
	HTML        string
	FinalURL    string
	StatusCode  int
	Blocked     bool
	BlockReason string
}

// RenderPage loads url in a fresh tab and returns the post-JS HTML.
func (b *Browser) RenderPage(ctx context.Context, url string, opts RenderOptions) (*RenderResult, error) {
	log := logger.Log

	if err := b.acquireTab(ctx); err != nil {
		return nil, fmt.Errorf("acquire browser tab: %w", err)
	}
	defer b.releaseTab()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTabTimeout
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	prep := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(userAgent).
				WithAcceptLanguage("ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7").
				WithPlatform("macOS").
				Do(ctx)
		}),
		// Images, media and fonts never matter for extraction.
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetBlockedURLs([]string{
				"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
				"*.mp4", "*.webm", "*.avi", "*.mov",
				"*.woff", "*.woff2", "*.ttf", "*.eot", "*.otf",
				"*google-analytics*", "*googletagmanager*", "*yandex*metrika*",
			}).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetExtraHTTPHeaders(network.Headers{
				"Accept-Language":           "ru-RU,ru;q=0.9,en;q=0.8",
				"sec-ch-ua":                 `"Chromium";v="140", "Not=A?Brand";v="24", "YaBrowser";v="25.10", "Yowser";v="2.5"`,
				"sec-ch-ua-mobile":          "?0",
				"sec-ch-ua-platform":        `"macOS"`,
				"Upgrade-Insecure-Requests": "1",
				"DNT":                       "1",
			}).Do(ctx)
		}),
	}
	if opts.UseStealth {
		prep = append(prep, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(cdpopts.StealthScript()).Do(ctx)
			return err
		}))
	}

	if err := chromedp.Run(timeoutCtx, prep); err != nil {
		return nil, fmt.Errorf("prepare tab: %w", err)
	}

	resp, err := chromedp.RunResponse(timeoutCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	statusCode := 0
	if resp != nil {
		statusCode = int(resp.Status)
	}

	capture := chromedp.Tasks{
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if opts.WaitForSelector != "" {
		capture = append(capture, waitSelectorBestEffort(opts.WaitForSelector))
	}
	var html, finalURL string
	capture = append(capture,
		chromedp.Sleep(b.pageLoadDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err := chromedp.Run(timeoutCtx, capture); err != nil {
		return nil, fmt.Errorf("capture page: %w", err)
	}

	result := &RenderResult{
		HTML:       html,
		FinalURL:   finalURL,
		StatusCode: statusCode,
	}
	if block := DetectBlocking(html, statusCode); block.Blocked {
		result.Blocked = true
		result.BlockReason = block.Reason
		log.Warn().Str("url", url).Str("reason", block.Reason).Msg("rendered page looks blocked")
	}

	log.Debug().
		Str("url", url).
		Str("final_url", finalURL).
		Int("status", statusCode).
		Int("html_len", len(html)).
		Msg("page rendered")
	return result, nil
}

// waitSelectorBestEffort waits for the selector under its own short
// deadline so a missing selector only costs the sub-timeout.
func waitSelectorBestEffort(selector string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, waitSelectorTimeout)
		defer cancel()
		if err := chromedp.WaitVisible(selector, chromedp.ByQuery).Do(waitCtx); err != nil {
			logger.Log.Debug().Str("selector", selector).Msg("wait selector timed out, capturing anyway")
		}
		return nil
	})
}

// Package fetch implements the hybrid page fetch: a plain HTTP request
// judged for plausibility, falling back to the headless rendering service
// when the direct result looks wrong. All failures degrade to empty
// content; callers treat an empty body as "no data".
package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"

	"github.com/tenderdesk/parser/internal/render"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	directTimeout  = 30 * time.Second
	connectTimeout = 10 * time.Second
)

// directDialer bounds the TCP dial itself; the client timeout only caps
// the request end to end.
var directDialer = &net.Dialer{Timeout: connectTimeout}

// Renderer is the rendering-service fallback. *render.Client satisfies it.
type Renderer interface {
	Render(ctx context.Context, url, waitForSelector string) (*render.Response, error)
}

type Fetcher struct {
	renderer Renderer
	log      zerolog.Logger
}

func New(renderer Renderer) *Fetcher {
	return &Fetcher{
		renderer: renderer,
		log:      logger.For("fetch"),
	}
}

// Fetch loads url, preferring the direct HTTP result and falling back to
// browser rendering when the direct body is suspicious or the status was
// not 200. The larger body wins. Never returns an error: exhausted
// fallbacks yield an empty FetchResult.
func (f *Fetcher) Fetch(ctx context.Context, url, waitForSelector string) *models.FetchResult {
	result := f.direct(ctx, url)

	suspicious := IsSuspicious(result.HTML)
	if suspicious {
		f.log.Debug().Str("url", url).Int("size", len(result.HTML)).Msg("direct result suspicious")
	}

	if !suspicious && result.StatusCode == http.StatusOK {
		f.log.Info().Str("url", url).Int("size", len(result.HTML)).Str("source", "direct").Msg("page fetched")
		return result
	}

	if f.renderer == nil {
		return result
	}

	rendered, err := f.renderer.Render(ctx, url, waitForSelector)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("render fallback failed, keeping direct result")
		return result
	}

	if len(rendered.Content) > len(result.HTML) {
		f.log.Info().Str("url", url).
			Int("direct_size", len(result.HTML)).
			Int("rendered_size", len(rendered.Content)).
			Str("source", "rendered").
			Msg("page fetched")
		return &models.FetchResult{
			HTML:       rendered.Content,
			StatusCode: rendered.StatusCode,
			Source:     models.SourceRendered,
		}
	}

	f.log.Info().Str("url", url).Int("size", len(result.HTML)).
		Str("source", "direct").Msg("render fallback smaller, keeping direct result")
	return result
}

// direct issues a plain GET with browser-like headers and a cookie jar
// scoped to this call. Target platforms routinely run self-signed or
// misconfigured TLS, so verification is off.
func (f *Fetcher) direct(ctx context.Context, url string) *models.FetchResult {
	empty := &models.FetchResult{Source: models.SourceDirect}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Timeout: directTimeout,
		Jar:     jar,
		Transport: &http.Transport{
			DialContext: directDialer.DialContext,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: connectTimeout,
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("create request failed")
		return empty
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("direct fetch failed")
		return empty
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("read body failed")
		return &models.FetchResult{StatusCode: resp.StatusCode, Source: models.SourceDirect}
	}

	return &models.FetchResult{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		Source:     models.SourceDirect,
	}
}
